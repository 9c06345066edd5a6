package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/saddagada1/bella-server-web/modules/account"
	"github.com/saddagada1/bella-server-web/pkg/config"
	"github.com/saddagada1/bella-server-web/pkg/cookie"
	"github.com/saddagada1/bella-server-web/pkg/email"
	"github.com/saddagada1/bella-server-web/pkg/httpserver"
	"github.com/saddagada1/bella-server-web/pkg/logger"
	"github.com/saddagada1/bella-server-web/pkg/pg"
	"github.com/saddagada1/bella-server-web/pkg/redis"
	"github.com/saddagada1/bella-server-web/pkg/requestid"
	"github.com/saddagada1/bella-server-web/svc/auth"
	"github.com/saddagada1/bella-server-web/svc/auth/storage"
)

type appConfig struct {
	Env           string        `env:"APP_ENV" envDefault:"development"`
	Name          string        `env:"APP_NAME" envDefault:"bella-server"`
	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
	DrainTimeout  time.Duration `env:"EMAIL_DRAIN_TIMEOUT" envDefault:"15s"`
}

func main() {
	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LogExtractor, auth.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(context.Background(), app, log); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app appConfig, log *slog.Logger) error {
	var (
		pgCfg     pg.Config
		redisCfg  redis.Config
		cookieCfg cookie.Config
		emailCfg  email.Config
		httpCfg   httpserver.Config
		tokenCfg  auth.TokenConfig
		otpCfg    auth.OTPConfig
		googleCfg auth.GoogleConfig
		acctCfg   auth.AccountConfig
	)
	if err := errors.Join(
		config.Load(&pgCfg),
		config.Load(&redisCfg),
		config.Load(&cookieCfg),
		config.Load(&emailCfg),
		config.Load(&httpCfg),
		config.Load(&tokenCfg),
		config.Load(&otpCfg),
		config.Load(&googleCfg),
		config.Load(&acctCfg),
	); err != nil {
		return err
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	pgCfg.MigrationsDir = storage.MigrationsDir
	if err := pg.Migrate(ctx, pool, pgCfg, storage.Migrations, log); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	sender, err := email.NewSender(emailCfg)
	if err != nil {
		return err
	}
	dispatcher := email.NewDispatcher(sender,
		email.WithDispatchLogger(log),
		email.WithSendTimeout(emailCfg.SendTimeout),
	)

	google := auth.NewGoogleProvider(ctx, googleCfg)
	tokens, err := auth.NewTokenService(tokenCfg)
	if err != nil {
		return err
	}
	otp := auth.NewOTPService(redis.NewStorage(rdb, redis.WithKeyPrefix(redisCfg.KeyPrefix)), otpCfg,
		auth.WithOTPLogger(log),
	)
	accounts := auth.NewAccountService(storage.NewUserRepository(db), tokens, otp, email.NewOTPMailer(dispatcher),
		auth.WithAccountLogger(log),
		auth.WithHasher(auth.NewBcryptHasher(acctCfg.BcryptCost)),
		auth.WithOperationTimeout(acctCfg.OperationTimeout),
	)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		httpserver.RequestLogger(log),
		middleware.Recoverer,
	)
	r.Get("/healthz", httpserver.HealthHandler(log, app.HealthTimeout,
		httpserver.HealthCheck{Name: "postgres", Check: pg.Healthcheck(pool)},
		httpserver.HealthCheck{Name: "redis", Check: redis.Healthcheck(rdb)},
	))
	r.Mount("/", account.New(accounts,
		account.WithCookies(cookie.NewFromConfig(cookieCfg)),
		account.WithIdentityProvider(google),
		account.WithLogger(log),
	).Handle())

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	runErr := srv.Run(ctx, r)

	drainCtx, cancel := context.WithTimeout(context.Background(), app.DrainTimeout)
	defer cancel()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Warn("pending emails dropped", logger.Error(err))
	}

	return runErr
}

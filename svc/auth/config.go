package auth

import "time"

// TokenConfig configures access and refresh token issuance.
type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	Issuer        string        `env:"TOKEN_ISSUER" envDefault:"bella"`
	// Leeway tolerates clock skew between instances when checking exp and iat.
	Leeway time.Duration `env:"TOKEN_LEEWAY" envDefault:"0s"`
}

// OTPConfig configures one-time codes.
type OTPConfig struct {
	TTL        time.Duration `env:"OTP_TTL" envDefault:"1h"`
	CodeLength int           `env:"OTP_CODE_LENGTH" envDefault:"6"`
}

// GoogleConfig configures the Google identity provider.
type GoogleConfig struct {
	ClientID     string        `env:"GOOGLE_CLIENT_ID,required"`
	ClientSecret string        `env:"GOOGLE_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GOOGLE_REDIRECT_URL" envDefault:"postmessage"`
	Timeout      time.Duration `env:"GOOGLE_TIMEOUT" envDefault:"10s"`
	VerifiedOnly bool          `env:"GOOGLE_VERIFIED_ONLY" envDefault:"true"`
}

// AccountConfig configures the account service.
type AccountConfig struct {
	OperationTimeout time.Duration `env:"AUTH_OPERATION_TIMEOUT" envDefault:"5s"`
	BcryptCost       int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

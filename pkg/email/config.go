package email

import "time"

// Config holds email service configuration.
// Postmark tokens are optional; without them NewSender falls back to the
// development sender that writes messages to DevDir.
type Config struct {
	PostmarkServerToken  string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string        `env:"SENDER_EMAIL" envDefault:"no-reply@bella.local"`
	SupportEmail         string        `env:"SUPPORT_EMAIL" envDefault:"support@bella.local"`
	DevDir               string        `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`
	SendTimeout          time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"10s"`
}

// NewSender returns a Postmark sender when both tokens are configured and a
// DevSender otherwise.
func NewSender(cfg Config) (EmailSender, error) {
	if cfg.PostmarkServerToken == "" && cfg.PostmarkAccountToken == "" {
		return NewDevSender(cfg.DevDir), nil
	}
	return NewPostmarkClient(cfg)
}

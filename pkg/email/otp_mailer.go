package email

import (
	"context"
	"fmt"

	"github.com/saddagada1/bella-server-web/pkg/email/templates"
)

const (
	SubjectVerifyEmail    = "REMASTER - VERIFY EMAIL"
	SubjectForgotPassword = "REMASTER - FORGOT PASSWORD"

	TagVerifyEmail    = "verify-email"
	TagForgotPassword = "forgot-password"
)

// OTPMailer renders one-time-code emails and hands them to a Dispatcher.
// Only rendering errors are returned; delivery happens in the background.
type OTPMailer struct {
	dispatcher *Dispatcher
}

func NewOTPMailer(d *Dispatcher) *OTPMailer {
	return &OTPMailer{dispatcher: d}
}

func (m *OTPMailer) SendVerifyEmail(ctx context.Context, to, code string) error {
	body, err := templates.Render(ctx, templates.VerifyEmail(code))
	if err != nil {
		return fmt.Errorf("failed to render verify email: %w", err)
	}
	m.dispatcher.Dispatch(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  SubjectVerifyEmail,
		BodyHTML: body,
		Tag:      TagVerifyEmail,
	})
	return nil
}

func (m *OTPMailer) SendForgotPassword(ctx context.Context, to, code string) error {
	body, err := templates.Render(ctx, templates.ForgotPassword(code))
	if err != nil {
		return fmt.Errorf("failed to render forgot password email: %w", err)
	}
	m.dispatcher.Dispatch(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  SubjectForgotPassword,
		BodyHTML: body,
		Tag:      TagForgotPassword,
	})
	return nil
}

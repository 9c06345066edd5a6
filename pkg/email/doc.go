// Package email sends transactional messages.
//
// EmailSender is implemented by a Postmark client for production and by
// DevSender, which writes each message as an .html body plus a .json sidecar
// into a directory. NewSender picks between them based on whether Postmark
// tokens are configured.
//
// Sending is fire-and-forget: Dispatcher runs each send on its own goroutine
// under a bounded timeout, recovers panics and logs failures. OTPMailer renders
// the one-time-code templates from the templates subpackage and dispatches
// them:
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//		return err
//	}
//	dispatcher := email.NewDispatcher(sender, email.WithDispatchLogger(log), email.WithSendTimeout(cfg.SendTimeout))
//	mailer := email.NewOTPMailer(dispatcher)
//	_ = mailer.SendVerifyEmail(ctx, "user@example.com", "K3Q9ZB")
//
// On shutdown call dispatcher.Wait to let in-flight sends finish.
package email

// Package email sends transactional mail for the platform: password resets
// and the welcome message after registration.
package email

import "context"

// Sender delivers transactional emails.
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
}

// NoopSender is used when SMTP is not configured; sends succeed silently so
// flows like password reset stay testable in local environments.
type NoopSender struct{}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	return nil
}

var _ Sender = NoopSender{}

// Package notify delivers the outbound messages the engine produces:
// verification links after registration and reset links after a
// forgot-password request. Delivery is fire-and-forget; a failed send
// never fails the flow that triggered it.
package notify

import (
	"context"
	"log/slog"
)

// Kind is the message category.
type Kind string

const (
	// KindVerifyEmail carries an email verification token.
	KindVerifyEmail Kind = "verify_email"
	// KindResetPassword carries a password reset token.
	KindResetPassword Kind = "reset_password"
)

// Message is one outbound notification. Token is the signed JWT the
// recipient presents back to the engine.
type Message struct {
	Kind      Kind
	AccountID string
	Email     string
	Token     string
}

// Notifier sends messages. Implementations must tolerate concurrent
// calls.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// NoOp discards every message.
type NoOp struct{}

func (NoOp) Send(context.Context, Message) error { return nil }

// LogNotifier writes messages to a structured logger instead of sending
// them anywhere. Default wiring for development; the token is logged so
// flows can be exercised without a mail backend.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier wraps logger; nil uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", string(msg.Kind)),
		slog.String("account_id", msg.AccountID),
		slog.String("email", msg.Email),
		slog.String("token", msg.Token),
	)
	return nil
}

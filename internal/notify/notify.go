// Package notify delivers reminders, receipts and login codes to households
// and staff. The default notifier only logs; the AMQP notifier hands messages
// to a broker for an SMS gateway to pick up.
package notify

import (
	"context"
	"log/slog"
)

// Kind identifies the message template.
type Kind string

const (
	KindReminder  Kind = "reminder"
	KindReceipt   Kind = "receipt"
	KindLoginCode Kind = "login-code"
)

// Message is one outbound notification.
type Message struct {
	Kind        Kind    `json:"kind"`
	Phone       string  `json:"phone"`
	Name        string  `json:"name,omitempty"`
	HouseholdID int64   `json:"household_id,omitempty"`
	Period      string  `json:"period,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Body        string  `json:"body"`
}

// Notifier sends a single message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier stands in for a real gateway by logging each message.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier writing to logger (slog.Default when nil).
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs msg and never fails.
func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "Notification sent",
		"kind", msg.Kind,
		"phone", msg.Phone,
		"household_id", msg.HouseholdID,
		"body", msg.Body,
	)
	return nil
}

// Batch sends every message and returns how many were delivered.
// A failed recipient is logged and skipped; the batch is never aborted,
// except that a cancelled ctx stops further sends.
func Batch(ctx context.Context, n Notifier, msgs []Message) int {
	sent := 0
	for _, msg := range msgs {
		if ctx.Err() != nil {
			slog.Warn("Notification batch cancelled", "sent", sent, "remaining", len(msgs)-sent)
			break
		}
		if err := n.Notify(ctx, msg); err != nil {
			slog.Warn("Notification failed", "kind", msg.Kind, "phone", msg.Phone, "error", err)
			continue
		}
		sent++
	}
	return sent
}

package email

import (
	"context"
	"log/slog"
)

// LogSender writes outbound mail to the application log instead of sending
// it. Meant for development and tests.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "outbound email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("tag", msg.Tag),
		slog.String("body", msg.BodyHTML),
	)
	return nil
}

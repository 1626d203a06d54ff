package notify

import (
	"context"
	"log/slog"
)

// Sender delivers one notification to a transport.
type Sender interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the structured log. It is the default
// sink for local runs.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, n Notification) error {
	recipients := make([]string, len(n.Recipients))
	for i, r := range n.Recipients {
		recipients[i] = r.String()
	}
	s.logger.InfoContext(ctx, "interview notification",
		"notification_id", n.ID.String(),
		"event_id", n.EventID.String(),
		"kind", string(n.Kind),
		"recipients", recipients,
		"attendees", n.Attendees,
		"start_time", n.StartTime,
	)
	return nil
}

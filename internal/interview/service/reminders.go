package service

import (
	"context"
	"errors"
	"time"

	"jobboard/internal/audit"
	"jobboard/internal/interview/models"
	"jobboard/internal/notify"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/sentinel"
)

// SendDueReminders marks every event starting within the reminder lead as
// reminded and queues a reminder for it. Events reminded or cancelled by a
// concurrent request are skipped. Returns the number of reminders queued.
func (s *Service) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	defer s.metrics.ObserveOperation(operationRemindBatch, time.Now())

	due, err := s.events.ListDueForReminder(ctx, now, s.reminderLead, reminderBatchSize)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list due reminders")
	}

	sent := 0
	for _, candidate := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		event, err := s.events.Execute(ctx, candidate.ID,
			func(e *models.Event) error {
				if !e.DueForReminder(now, s.reminderLead) {
					return sentinel.ErrInvalidState
				}
				return nil
			},
			func(e *models.Event) {
				e.MarkReminded(now)
			},
		)
		if err != nil {
			if !isSkippable(err) {
				s.logger.WarnContext(ctx, "failed to mark reminder",
					"event_id", candidate.ID.String(),
					"error", err,
				)
			}
			continue
		}

		s.notifier.Dispatch(ctx, notificationFor(event, notify.KindReminder, now))
		s.emitAudit(ctx, audit.Event{
			Action:  audit.ActionEventReminded,
			Subject: eventSubject(event.ID),
		})
		sent++
	}

	s.metrics.AddRemindersSent(sent)
	if sent > 0 {
		s.logger.InfoContext(ctx, "interview reminders queued", "count", sent)
	}
	return sent, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound)
}

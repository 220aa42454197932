package reminder

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	domain "github.com/prescripto/prescripto-api/internal/domain/reminder"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/notification"
)

const KindDayBefore = "day_before"

type SendReminders struct {
	repo     domain.Repository
	notifier notification.Enqueuer
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewSendReminders(
	repo domain.Repository,
	notifier notification.Enqueuer,
	log *logger.Logger,
	loc *time.Location,
) *SendReminders {
	return &SendReminders{repo: repo, notifier: notifier, log: log, loc: loc, now: time.Now}
}

// Tomorrow is the default target date of a reminder run.
func (uc *SendReminders) Tomorrow() calendar.Date {
	return calendar.Today(uc.now(), uc.loc).AddDays(1)
}

// Execute queues one reminder per scheduled appointment on date. Appointments
// already reminded are skipped so the job can be re-run; a reminder the queue
// refused is not marked and goes out on the next run.
func (uc *SendReminders) Execute(ctx context.Context, date calendar.Date) (int, error) {
	apps, err := uc.repo.ListScheduledOn(ctx, date)
	if err != nil {
		return 0, err
	}

	entry := uc.log.WithComponent("reminders").WithField("date", date.String())

	sent, dropped := 0, 0
	for _, ap := range apps {
		if ap.Patient == nil {
			continue
		}

		done, err := uc.repo.WasSent(ctx, ap.ID, KindDayBefore)
		if err != nil {
			return sent, err
		}
		if done {
			continue
		}

		payload := map[string]any{
			"date": ap.Date.String(),
			"time": ap.Time.String(),
		}
		if ap.Doctor != nil {
			payload["doctor_name"] = ap.Doctor.Name
		}

		queued := uc.notifier.Enqueue(notification.Message{
			To:      ap.Patient.Email,
			Phone:   ap.Patient.Phone,
			Name:    ap.Patient.Name,
			Kind:    notification.KindReminder,
			Payload: payload,
		})
		if !queued {
			dropped++
			continue
		}

		if err := uc.repo.MarkSent(ctx, ap.ID, KindDayBefore, uc.now()); err != nil {
			entry.WithError(err).WithField("appointment_id", ap.ID).Error("mark reminder failed")
			continue
		}
		sent++
	}

	entry.WithField("sent", sent).WithField("dropped", dropped).Info("reminders queued")
	return sent, nil
}

type Cleanup struct {
	repo domain.Repository
	now  func() time.Time
}

func NewCleanup(repo domain.Repository) *Cleanup {
	return &Cleanup{repo: repo, now: time.Now}
}

// Execute removes reminder and notification logs older than days.
func (uc *Cleanup) Execute(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, httperr.ErrValidation("invalid_days")
	}
	return uc.repo.PurgeBefore(ctx, uc.now().AddDate(0, 0, -days))
}

package appointment

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

// UpdateStatus lets a doctor mark an appointment completed or no_show.
// Cancellation goes through the cancellation workflow instead.
type UpdateStatus struct {
	repo  domain.Repository
	cache domain.SlotCache
	audit audit.Recorder
	now   func() time.Time
}

func NewUpdateStatus(
	repo domain.Repository,
	cache domain.SlotCache,
	audit audit.Recorder,
) *UpdateStatus {
	return &UpdateStatus{repo: repo, cache: cache, audit: audit, now: time.Now}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	doctorID uint,
	appointmentID uint,
	next status.Appointment,
) (*models.Appointment, error) {

	if next != status.Completed && next != status.NoShow {
		return nil, httperr.ErrValidation("invalid_status")
	}

	var ap *models.Appointment
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if ap.DoctorID != doctorID {
			return httperr.ErrForbidden("not_owner")
		}

		switch next {
		case status.Completed:
			err = domain.Complete(ap, uc.now())
		case status.NoShow:
			err = domain.MarkNoShow(ap)
		}
		if err != nil {
			return err
		}

		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	if !ap.Status.Occupies() {
		uc.cache.Invalidate(ctx, ap.DoctorID, ap.Date)
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   doctorID,
		ActorRole: string(status.RoleDoctor),
		Action:    "appointment_" + string(next),
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	return ap, nil
}

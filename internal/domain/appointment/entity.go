package appointment

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(ap.Status); err != nil {
		return err
	}

	ap.Status = status.Cancelled
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(ap.Status); err != nil {
		return err
	}

	ap.Status = status.Completed
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment) error {
	if err := ap.Status.CanTransitionTo(status.NoShow); err != nil {
		return err
	}

	ap.Status = status.NoShow
	return nil
}

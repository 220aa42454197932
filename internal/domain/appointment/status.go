package appointment

import (
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
)

// ===============================
// Validations
// ===============================

func CanCancel(current status.Appointment) error {
	if current == status.Cancelled {
		return httperr.ErrBusiness("already_cancelled")
	}
	return current.CanTransitionTo(status.Cancelled)
}

func CanComplete(current status.Appointment) error {
	return current.CanTransitionTo(status.Completed)
}

func InitialStatus() status.Appointment {
	return status.Scheduled
}

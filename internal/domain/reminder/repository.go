package reminder

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/models"
)

type Repository interface {
	// ListScheduledOn returns the scheduled appointments of a civil date with
	// Doctor and Patient preloaded.
	ListScheduledOn(
		ctx context.Context,
		date calendar.Date,
	) ([]models.Appointment, error)

	WasSent(
		ctx context.Context,
		appointmentID uint,
		kind string,
	) (bool, error)

	MarkSent(
		ctx context.Context,
		appointmentID uint,
		kind string,
		at time.Time,
	) error

	// PurgeBefore deletes reminder and notification logs older than before.
	PurgeBefore(
		ctx context.Context,
		before time.Time,
	) (int64, error)
}

package cancellation

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type Repository interface {
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Rows locked FOR UPDATE --------
	// GetAppointmentForUpdate preloads Doctor and Patient.
	GetAppointmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// GetPaymentForUpdate returns a not-found business error when the
	// appointment has no payment row.
	GetPaymentForUpdate(
		ctx context.Context,
		appointmentID uint,
	) (*models.Payment, error)

	GetRequestForUpdate(
		ctx context.Context,
		id uint,
	) (*models.CancellationRequest, error)

	// GetPendingRequestForUpdate returns nil, nil when the appointment has
	// no pending request.
	GetPendingRequestForUpdate(
		ctx context.Context,
		appointmentID uint,
	) (*models.CancellationRequest, error)

	HasPendingRequest(
		ctx context.Context,
		appointmentID uint,
	) (bool, error)

	// -------- Writes --------
	CreateRequest(
		ctx context.Context,
		req *models.CancellationRequest,
	) error

	UpdateRequest(
		ctx context.Context,
		req *models.CancellationRequest,
	) error

	UpdatePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Reads --------
	ListPendingForDoctor(
		ctx context.Context,
		doctorID uint,
	) ([]models.CancellationRequest, error)

	ListResolved(
		ctx context.Context,
		role status.Role,
		userID uint,
	) ([]models.CancellationRequest, error)
}

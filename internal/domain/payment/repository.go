package payment

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/models"
)

type Repository interface {
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// GetAppointmentForUpdate preloads Doctor and Patient.
	GetAppointmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	FindPaymentForUpdate(
		ctx context.Context,
		appointmentID uint,
	) (*models.Payment, error)

	FindPaymentByTransaction(
		ctx context.Context,
		transactionID string,
	) (*models.Payment, error)

	SavePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	ListForPatient(
		ctx context.Context,
		patientID uint,
	) ([]models.Payment, error)
}

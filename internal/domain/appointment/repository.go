package appointment

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ListFilter struct {
	DoctorID  uint
	PatientID uint
	Status    status.Appointment
	Date      *calendar.Date
}

type Repository interface {
	// -------- Transactions --------
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Doctor / Patient --------
	GetDoctor(
		ctx context.Context,
		id uint,
	) (*models.Doctor, error)

	GetPatient(
		ctx context.Context,
		id uint,
	) (*models.Patient, error)

	// -------- Availability --------
	// GetTiming returns the lowest-id timing row for the weekday.
	GetTiming(
		ctx context.Context,
		doctorID uint,
		dayOfWeek string,
	) (*models.DoctorTiming, error)

	ListBookedTimes(
		ctx context.Context,
		doctorID uint,
		date calendar.Date,
	) ([]calendar.Clock, error)

	// -------- Appointment (create / conflict) --------
	LockActiveAtSlot(
		ctx context.Context,
		doctorID uint,
		date calendar.Date,
		at calendar.Clock,
	) ([]models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	SaveConsultation(
		ctx context.Context,
		detail *models.ConsultationDetail,
	) error

	// -------- Listing --------
	ListAppointments(
		ctx context.Context,
		f ListFilter,
	) ([]models.Appointment, error)
}

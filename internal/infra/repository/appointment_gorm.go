package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prescripto/prescripto-api/internal/db"
	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Doctor / Patient
// --------------------------------------------------

func (r *AppointmentGormRepository) GetDoctor(
	ctx context.Context,
	id uint,
) (*models.Doctor, error) {

	var doc models.Doctor
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, notFound(err, "doctor_not_found")
	}
	return &doc, nil
}

func (r *AppointmentGormRepository) GetPatient(
	ctx context.Context,
	id uint,
) (*models.Patient, error) {

	var p models.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "patient_not_found")
	}
	return &p, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetTiming(
	ctx context.Context,
	doctorID uint,
	dayOfWeek string,
) (*models.DoctorTiming, error) {

	var t models.DoctorTiming
	if err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, dayOfWeek).
		Order("id ASC").
		First(&t).Error; err != nil {
		return nil, notFound(err, "timing_not_found")
	}
	return &t, nil
}

func (r *AppointmentGormRepository) ListBookedTimes(
	ctx context.Context,
	doctorID uint,
	date calendar.Date,
) ([]calendar.Clock, error) {

	var times []calendar.Clock
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"doctor_id = ? AND appointment_date = ? AND status IN ?",
			doctorID, date, status.OccupyingAppointmentStatuses(),
		).
		Order("appointment_time ASC").
		Pluck("appointment_time", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

func (r *AppointmentGormRepository) LockActiveAtSlot(
	ctx context.Context,
	doctorID uint,
	date calendar.Date,
	at calendar.Clock,
) ([]models.Appointment, error) {

	var rows []models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		Where(
			"doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
			doctorID, date, at, status.OccupyingAppointmentStatuses(),
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Create(ap).Error
	if httperr.IsUniqueViolation(err, db.ActiveSlotIndex) {
		return httperr.ErrBusiness("slot_unavailable")
	}
	return err
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Preload("Payment").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentForUpdate(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		Preload("Doctor").
		Preload("Patient").
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Model(ap).
		Select("status", "cancelled_at", "completed_at", "updated_at").
		Updates(ap).Error
}

func (r *AppointmentGormRepository) SaveConsultation(
	ctx context.Context,
	detail *models.ConsultationDetail,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "appointment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"medicines", "notes", "follow_up_days", "follow_up_date",
				"follow_up_reason", "document_key", "updated_at",
			}),
		}).
		Create(detail).Error
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Preload("Payment")

	if f.DoctorID != 0 {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.PatientID != 0 {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != nil {
		q = q.Where("appointment_date = ?", *f.Date)
	}

	var apps []models.Appointment
	if err := q.
		Order("appointment_date DESC, appointment_time DESC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)

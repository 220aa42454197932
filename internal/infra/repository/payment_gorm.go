package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx})
	})
}

func (r *PaymentGormRepository) GetAppointmentForUpdate(
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

func (r *PaymentGormRepository) FindPaymentForUpdate(
	ctx context.Context,
	appointmentID uint,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		Where("appointment_id = ?", appointmentID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (r *PaymentGormRepository) FindPaymentByTransaction(
	ctx context.Context,
	transactionID string,
) (*models.Payment, error) {

	var p models.Payment
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment_not_found")
	}
	return &p, nil
}

func (r *PaymentGormRepository) SavePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PaymentGormRepository) ListForPatient(
	ctx context.Context,
	patientID uint,
) ([]models.Payment, error) {

	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = payments.appointment_id").
		Where("appointments.patient_id = ?", patientID).
		Order("payments.created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

var _ domain.Repository = (*PaymentGormRepository)(nil)

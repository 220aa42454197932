package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type CancellationGormRepository struct {
	db *gorm.DB
}

func NewCancellationGormRepository(db *gorm.DB) *CancellationGormRepository {
	return &CancellationGormRepository{db: db}
}

func (r *CancellationGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CancellationGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Locked reads
// --------------------------------------------------

func (r *CancellationGormRepository) GetAppointmentForUpdate(
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

func (r *CancellationGormRepository) GetPaymentForUpdate(
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

func (r *CancellationGormRepository) GetRequestForUpdate(
	ctx context.Context,
	id uint,
) (*models.CancellationRequest, error) {

	var req models.CancellationRequest
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		First(&req, id).Error; err != nil {
		return nil, notFound(err, "request_not_found")
	}
	return &req, nil
}

func (r *CancellationGormRepository) GetPendingRequestForUpdate(
	ctx context.Context,
	appointmentID uint,
) (*models.CancellationRequest, error) {

	var reqs []models.CancellationRequest
	if err := r.db.WithContext(ctx).
		Clauses(lockForUpdate).
		Where("appointment_id = ? AND status = ?", appointmentID, status.RequestPending).
		Order("id ASC").
		Limit(1).
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func (r *CancellationGormRepository) HasPendingRequest(
	ctx context.Context,
	appointmentID uint,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CancellationRequest{}).
		Where("appointment_id = ? AND status = ?", appointmentID, status.RequestPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *CancellationGormRepository) CreateRequest(
	ctx context.Context,
	req *models.CancellationRequest,
) error {
	return r.db.WithContext(ctx).Omit("Appointment").Create(req).Error
}

func (r *CancellationGormRepository) UpdateRequest(
	ctx context.Context,
	req *models.CancellationRequest,
) error {
	return r.db.WithContext(ctx).
		Model(req).
		Select("status", "notes", "refund_transaction_id", "approved_at", "updated_at").
		Updates(req).Error
}

func (r *CancellationGormRepository) UpdatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("status", "refunded_at", "updated_at").
		Updates(p).Error
}

func (r *CancellationGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).
		Model(ap).
		Select("status", "cancelled_at", "updated_at").
		Updates(ap).Error
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *CancellationGormRepository) ListPendingForDoctor(
	ctx context.Context,
	doctorID uint,
) ([]models.CancellationRequest, error) {

	var reqs []models.CancellationRequest
	if err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = cancellation_requests.appointment_id").
		Where("appointments.doctor_id = ? AND cancellation_requests.status = ?", doctorID, status.RequestPending).
		Preload("Appointment.Patient").
		Preload("Appointment.Payment").
		Order("cancellation_requests.requested_at ASC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *CancellationGormRepository) ListResolved(
	ctx context.Context,
	role status.Role,
	userID uint,
) ([]models.CancellationRequest, error) {

	owner := "appointments.patient_id = ?"
	if role == status.RoleDoctor {
		owner = "appointments.doctor_id = ?"
	}

	var reqs []models.CancellationRequest
	if err := r.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = cancellation_requests.appointment_id").
		Where(owner, userID).
		Where("cancellation_requests.status IN ?", []status.Request{status.RequestApproved, status.RequestRejected}).
		Preload("Appointment.Doctor").
		Preload("Appointment.Patient").
		Preload("Appointment.Payment").
		Order("cancellation_requests.requested_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

var _ domain.Repository = (*CancellationGormRepository)(nil)

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	domain "github.com/prescripto/prescripto-api/internal/domain/reminder"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ReminderGormRepository struct {
	db *gorm.DB
}

func NewReminderGormRepository(db *gorm.DB) *ReminderGormRepository {
	return &ReminderGormRepository{db: db}
}

func (r *ReminderGormRepository) ListScheduledOn(
	ctx context.Context,
	date calendar.Date,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Patient").
		Where("appointment_date = ? AND status = ?", date, status.Scheduled).
		Order("appointment_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *ReminderGormRepository) WasSent(
	ctx context.Context,
	appointmentID uint,
	kind string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AppointmentReminder{}).
		Where("appointment_id = ? AND kind = ?", appointmentID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ReminderGormRepository) MarkSent(
	ctx context.Context,
	appointmentID uint,
	kind string,
	at time.Time,
) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.AppointmentReminder{
			AppointmentID: appointmentID,
			Kind:          kind,
			SentAt:        at,
		}).Error
}

func (r *ReminderGormRepository) PurgeBefore(
	ctx context.Context,
	before time.Time,
) (int64, error) {

	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("sent_at < ?", before).Delete(&models.AppointmentReminder{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Where("sent_at < ?", before).Delete(&models.EmailNotification{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	return total, err
}

var _ domain.Repository = (*ReminderGormRepository)(nil)

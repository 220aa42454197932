package repository

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/prescripto/prescripto-api/internal/domain/report"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

func (r *ReportGormRepository) ListDoctorRows(
	ctx context.Context,
	doctorID uint,
) ([]domain.Row, error) {

	var rows []domain.Row
	if err := r.db.WithContext(ctx).Raw(`
        SELECT a.id AS appointment_id,
               a.appointment_date AS date,
               a.status AS appointment_status,
               p.status AS payment_status,
               COALESCE(p.amount, 0) AS amount
        FROM appointments a
        LEFT JOIN payments p ON p.appointment_id = a.id
        WHERE a.doctor_id = ?
    `, doctorID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportGormRepository) RatingStats(
	ctx context.Context,
	doctorID uint,
) (domain.Rating, error) {

	var out domain.Rating
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("doctor_id = ?", doctorID).
		Scan(&out).Error
	return out, err
}

var _ domain.Repository = (*ReportGormRepository)(nil)

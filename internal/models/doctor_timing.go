package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

// DoctorTiming is a weekly recurring availability window.
type DoctorTiming struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	DoctorID uint `gorm:"not null;index:idx_timings_doctor_day" json:"doctor_id"`

	// Sunday..Saturday
	DayOfWeek string `gorm:"size:10;not null;index:idx_timings_doctor_day" json:"day_of_week"`

	StartTime    calendar.Clock `gorm:"type:time;not null" json:"start_time"`
	EndTime      calendar.Clock `gorm:"type:time;not null" json:"end_time"`
	SlotDuration int            `gorm:"column:slot_duration;default:30" json:"slot_duration"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

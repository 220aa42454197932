package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

type ConsultationDetail struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"not null;uniqueIndex" json:"appointment_id"`
	DoctorID      uint `gorm:"not null;index" json:"doctor_id"`
	PatientID     uint `gorm:"not null;index" json:"patient_id"`

	Medicines      string        `gorm:"type:text" json:"medicines"`
	Notes          string        `gorm:"type:text" json:"notes"`
	FollowUpDays   int           `json:"follow_up_days"`
	FollowUpDate   calendar.Date `gorm:"type:date" json:"follow_up_date"`
	FollowUpReason string        `gorm:"type:text" json:"follow_up_reason"`

	// object key of the generated PDF summary
	DocumentKey string `gorm:"size:255" json:"document_key"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

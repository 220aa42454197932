package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint    `gorm:"not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	Doctor   *Doctor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"doctor,omitempty"`

	PatientID uint     `gorm:"not null;index" json:"patient_id"`
	Patient   *Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"patient,omitempty"`

	Date calendar.Date  `gorm:"column:appointment_date;type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	Time calendar.Clock `gorm:"column:appointment_time;type:time;not null" json:"appointment_time"`

	ConsultationType status.ConsultationType `gorm:"size:20;default:'in_person'" json:"consultation_type"`
	Symptoms         string                  `gorm:"type:text" json:"symptoms"`

	Status status.Appointment `gorm:"size:20;default:'scheduled';index" json:"status"`

	Payment *Payment `gorm:"foreignKey:AppointmentID" json:"payment,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

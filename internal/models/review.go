package models

import "time"

type Review struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"not null;uniqueIndex" json:"appointment_id"`
	DoctorID      uint `gorm:"not null;index" json:"doctor_id"`

	PatientID uint     `gorm:"not null;index" json:"patient_id"`
	Patient   *Patient `json:"patient,omitempty"`

	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}

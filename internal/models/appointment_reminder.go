package models

import "time"

type AppointmentReminder struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"not null;uniqueIndex:ux_reminder_appointment_kind" json:"appointment_id"`
	Kind          string `gorm:"size:20;not null;uniqueIndex:ux_reminder_appointment_kind" json:"kind"`

	SentAt time.Time `gorm:"index" json:"sent_at"`
}

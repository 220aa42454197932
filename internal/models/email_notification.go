package models

import "time"

// EmailNotification is the delivery log of outgoing emails and SMS.
type EmailNotification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RecipientEmail string `gorm:"size:100;index" json:"recipient_email"`
	Channel        string `gorm:"size:10;default:'email'" json:"channel"`
	Kind           string `gorm:"size:50;not null" json:"kind"`
	Subject        string `gorm:"size:255" json:"subject"`
	Status         string `gorm:"size:10;not null" json:"status"`
	Error          string `gorm:"type:text" json:"error,omitempty"`

	SentAt time.Time `gorm:"index" json:"sent_at"`
}

package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

type Patient struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`

	Gender      string        `gorm:"size:20" json:"gender"`
	DateOfBirth calendar.Date `gorm:"type:date" json:"date_of_birth"`
	Address     string        `gorm:"size:255" json:"address"`
	ImageURL    string        `gorm:"size:255" json:"image_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

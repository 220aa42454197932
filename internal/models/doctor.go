package models

import "time"

type Doctor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`

	Specialization  string  `gorm:"size:100;index" json:"specialization"`
	Degree          string  `gorm:"size:100" json:"degree"`
	ExperienceYears int     `json:"experience_years"`
	About           string  `gorm:"type:text" json:"about"`
	Fees            float64 `gorm:"type:numeric(10,2);default:0" json:"fees"`
	Address         string  `gorm:"size:255" json:"address"`
	City            string  `gorm:"size:100;index" json:"city"`
	ImageURL        string  `gorm:"size:255" json:"image_url"`
	Available       bool    `gorm:"default:true" json:"available"`

	Timings []DoctorTiming `gorm:"constraint:OnDelete:CASCADE;" json:"timings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

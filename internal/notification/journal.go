package notification

import (
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/models"
)

type GormLog struct {
	db *gorm.DB
}

func NewGormLog(db *gorm.DB) *GormLog {
	return &GormLog{db: db}
}

func (l *GormLog) Record(entry models.EmailNotification) error {
	return l.db.Create(&entry).Error
}

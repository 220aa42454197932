package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/prescripto/prescripto-api/internal/config"
	"github.com/prescripto/prescripto-api/internal/models"
)

// ActiveSlotIndex enforces one scheduled/completed appointment per doctor slot.
const ActiveSlotIndex = "ux_appointments_active_slot"

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate creates the tables and the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Doctor{},
		&models.Patient{},
		&models.DoctorTiming{},
		&models.Appointment{},
		&models.Payment{},
		&models.CancellationRequest{},
		&models.ConsultationDetail{},
		&models.Review{},
		&models.AuditLog{},
		&models.EmailNotification{},
		&models.AppointmentReminder{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS ` + ActiveSlotIndex + `
        ON appointments (doctor_id, appointment_date, appointment_time)
        WHERE status IN ('scheduled', 'completed')
    `).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}

	return nil
}

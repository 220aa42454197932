package report

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
)

// Row is one appointment of a doctor with its payment, if any.
type Row struct {
	AppointmentID     uint
	Date              calendar.Date
	AppointmentStatus status.Appointment
	PaymentStatus     *status.Payment
	Amount            float64
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type Repository interface {
	ListDoctorRows(
		ctx context.Context,
		doctorID uint,
	) ([]Row, error)

	RatingStats(
		ctx context.Context,
		doctorID uint,
	) (Rating, error)
}

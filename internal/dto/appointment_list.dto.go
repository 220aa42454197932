package dto

import (
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/models"
)

type AppointmentListDTO struct {
	ID               uint                    `json:"id"`
	Date             calendar.Date           `json:"appointment_date"`
	Time             calendar.Clock          `json:"appointment_time"`
	Status           status.Appointment      `json:"status"`
	ConsultationType status.ConsultationType `json:"consultation_type"`
	Symptoms         string                  `json:"symptoms,omitempty"`
	DoctorID         uint                    `json:"doctor_id"`
	DoctorName       string                  `json:"doctor_name"`
	Specialization   string                  `json:"specialization,omitempty"`
	PatientID        uint                    `json:"patient_id"`
	PatientName      string                  `json:"patient_name"`
	PaymentStatus    status.Payment          `json:"payment_status,omitempty"`
	Amount           float64                 `json:"amount"`
}

func FromAppointment(ap models.Appointment) AppointmentListDTO {
	out := AppointmentListDTO{
		ID:               ap.ID,
		Date:             ap.Date,
		Time:             ap.Time,
		Status:           ap.Status,
		ConsultationType: ap.ConsultationType,
		Symptoms:         ap.Symptoms,
		DoctorID:         ap.DoctorID,
		PatientID:        ap.PatientID,
	}
	if ap.Doctor != nil {
		out.DoctorName = ap.Doctor.Name
		out.Specialization = ap.Doctor.Specialization
	}
	if ap.Patient != nil {
		out.PatientName = ap.Patient.Name
	}
	if ap.Payment != nil {
		out.PaymentStatus = ap.Payment.Status
		out.Amount = ap.Payment.Amount
	}
	return out
}

func FromAppointments(apps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		out = append(out, FromAppointment(ap))
	}
	return out
}

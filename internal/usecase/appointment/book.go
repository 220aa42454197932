package appointment

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

// ======================================================
// INPUT
// ======================================================

type BookInput struct {
	DoctorID         uint
	PatientID        uint
	Date             calendar.Date
	Time             calendar.Clock
	ConsultationType status.ConsultationType
	Symptoms         string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo     domain.Repository
	cache    domain.SlotCache
	notifier notification.Publisher
	audit    audit.Recorder
	metrics  *metrics.Collector
	loc      *time.Location
	now      func() time.Time
}

func NewBookAppointment(
	repo domain.Repository,
	cache domain.SlotCache,
	notifier notification.Publisher,
	audit audit.Recorder,
	metrics *metrics.Collector,
	loc *time.Location,
) *BookAppointment {
	return &BookAppointment{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	if in.DoctorID == 0 || in.PatientID == 0 || in.Date.IsZero() {
		return nil, httperr.ErrValidation("invalid_request")
	}
	if in.ConsultationType == "" {
		in.ConsultationType = status.InPerson
	}
	if !in.ConsultationType.Valid() {
		return nil, httperr.ErrValidation("invalid_consultation_type")
	}

	start := calendar.At(in.Date, in.Time, uc.loc)
	if !start.After(uc.now()) {
		return nil, httperr.ErrValidation("in_the_past")
	}

	// --------------------------------------------------
	// 2. Doctor / patient
	// --------------------------------------------------
	doctor, err := uc.repo.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	patient, err := uc.repo.GetPatient(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Working hours
	// --------------------------------------------------
	timing, err := uc.repo.GetTiming(ctx, in.DoctorID, in.Date.Weekday().String())
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, httperr.ErrBusiness("outside_working_hours")
		}
		return nil, err
	}
	if !domain.IsBookable(domain.WindowOf(timing), in.Time) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	// --------------------------------------------------
	// 4. Conflict check + insert under row lock
	// --------------------------------------------------
	ap := &models.Appointment{
		DoctorID:         in.DoctorID,
		PatientID:        in.PatientID,
		Date:             in.Date,
		Time:             in.Time,
		ConsultationType: in.ConsultationType,
		Symptoms:         in.Symptoms,
		Status:           domain.InitialStatus(),
	}

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		active, err := tx.LockActiveAtSlot(ctx, in.DoctorID, in.Date, in.Time)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return httperr.ErrBusiness("slot_unavailable")
		}

		// the partial unique index catches a concurrent insert
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsBusiness(err, "slot_unavailable") {
			uc.metrics.RecordBooking("slot_unavailable")
		}
		return nil, err
	}

	uc.metrics.RecordBooking("created")
	uc.cache.Invalidate(ctx, in.DoctorID, in.Date)

	// --------------------------------------------------
	// 5. Side effects
	// --------------------------------------------------
	uc.notifier.Publish(notification.Message{
		To:    patient.Email,
		Phone: patient.Phone,
		Name:  patient.Name,
		Kind:  notification.KindAppointmentConfirmation,
		Payload: map[string]any{
			"doctor_name":       doctor.Name,
			"date":              ap.Date.String(),
			"time":              ap.Time.String(),
			"consultation_type": string(ap.ConsultationType),
		},
	})

	uc.audit.Dispatch(audit.Event{
		ActorID:   in.PatientID,
		ActorRole: string(status.RolePatient),
		Action:    "appointment_booked",
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	ap.Doctor = doctor
	return ap, nil
}

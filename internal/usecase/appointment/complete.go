package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/infra/document"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

type CompleteInput struct {
	DoctorID       uint
	AppointmentID  uint
	Medicines      string
	Notes          string
	FollowUpDays   int
	FollowUpReason string
}

// CompleteAppointment closes a scheduled appointment and stores the
// consultation details.
type CompleteAppointment struct {
	repo     domain.Repository
	store    storage.Store
	notifier notification.Publisher
	audit    audit.Recorder
	log      *logger.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewCompleteAppointment(
	repo domain.Repository,
	store storage.Store,
	notifier notification.Publisher,
	audit audit.Recorder,
	log *logger.Logger,
	loc *time.Location,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:     repo,
		store:    store,
		notifier: notifier,
		audit:    audit,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	in CompleteInput,
) (*models.ConsultationDetail, error) {

	if in.FollowUpDays < 0 {
		return nil, httperr.ErrValidation("invalid_follow_up_days")
	}

	now := uc.now()

	detail := &models.ConsultationDetail{
		AppointmentID:  in.AppointmentID,
		DoctorID:       in.DoctorID,
		Medicines:      in.Medicines,
		Notes:          in.Notes,
		FollowUpDays:   in.FollowUpDays,
		FollowUpReason: in.FollowUpReason,
	}
	if in.FollowUpDays > 0 {
		detail.FollowUpDate = calendar.Today(now, uc.loc).AddDays(in.FollowUpDays)
	}

	var ap *models.Appointment

	// --------------------------------------------------
	// 1. Transition + details, atomically
	// --------------------------------------------------
	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if ap.DoctorID != in.DoctorID {
			return httperr.ErrForbidden("not_owner")
		}

		if err := domain.Complete(ap, now); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		detail.PatientID = ap.PatientID
		return tx.SaveConsultation(ctx, detail)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   in.DoctorID,
		ActorRole: string(status.RoleDoctor),
		Action:    "appointment_completed",
		Entity:    "appointment",
		EntityID:  &ap.ID,
	})

	// --------------------------------------------------
	// 2. Summary document (best effort)
	// --------------------------------------------------
	att := uc.publishSummary(ctx, ap, detail)

	if ap.Patient != nil {
		payload := map[string]any{
			"doctor_name":    doctorName(ap),
			"follow_up_date": detail.FollowUpDate.String(),
		}
		uc.notifier.Publish(notification.Message{
			To:         ap.Patient.Email,
			Name:       ap.Patient.Name,
			Kind:       notification.KindConsultation,
			Payload:    payload,
			Attachment: att,
		})
	}

	return detail, nil
}

func (uc *CompleteAppointment) publishSummary(
	ctx context.Context,
	ap *models.Appointment,
	detail *models.ConsultationDetail,
) *notification.Attachment {

	entry := uc.log.WithComponent("consultation").WithField("appointment_id", ap.ID)

	pdf, err := document.ConsultationSummary(ap, detail)
	if err != nil {
		entry.WithError(err).Error("consultation summary render failed")
		return nil
	}

	key := fmt.Sprintf("consultations/%d/summary-%d.pdf", ap.ID, uc.now().Unix())
	if _, err := uc.store.Put(ctx, key, "application/pdf", pdf); err != nil {
		entry.WithError(err).Error("consultation summary upload failed")
	} else {
		detail.DocumentKey = key
		if err := uc.repo.SaveConsultation(ctx, detail); err != nil {
			entry.WithError(err).Error("consultation document key update failed")
		}
	}

	return &notification.Attachment{
		Name:        fmt.Sprintf("consultation-%d.pdf", ap.ID),
		ContentType: "application/pdf",
		Data:        pdf,
	}
}

func doctorName(ap *models.Appointment) string {
	if ap.Doctor == nil {
		return ""
	}
	return ap.Doctor.Name
}

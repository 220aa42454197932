package cancellation

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

const DefaultNotice = 2 * time.Hour

type RequestCancellation struct {
	repo     domain.Repository
	notifier notification.Publisher
	audit    audit.Recorder
	metrics  *metrics.Collector
	loc      *time.Location
	notice   time.Duration
	now      func() time.Time
}

func NewRequestCancellation(
	repo domain.Repository,
	notifier notification.Publisher,
	audit audit.Recorder,
	metrics *metrics.Collector,
	loc *time.Location,
	notice time.Duration,
) *RequestCancellation {
	if notice <= 0 {
		notice = DefaultNotice
	}
	return &RequestCancellation{
		repo:     repo,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		loc:      loc,
		notice:   notice,
		now:      time.Now,
	}
}

// Execute records a patient's wish to cancel. The appointment keeps its slot
// until the doctor decides.
func (uc *RequestCancellation) Execute(
	ctx context.Context,
	patientID uint,
	appointmentID uint,
	reason string,
) (*models.CancellationRequest, error) {

	now := uc.now()

	var (
		ap  *models.Appointment
		req *models.CancellationRequest
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 1. Appointment
		// --------------------------------------------------
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if ap.PatientID != patientID {
			return httperr.ErrForbidden("not_owner")
		}
		if ap.Status != status.Scheduled {
			return httperr.ErrBusiness("invalid_state")
		}

		start := calendar.At(ap.Date, ap.Time, uc.loc)
		if start.Sub(now) < uc.notice {
			return httperr.ErrBusiness("too_late")
		}

		// --------------------------------------------------
		// 2. One open request at a time
		// --------------------------------------------------
		pending, err := tx.HasPendingRequest(ctx, ap.ID)
		if err != nil {
			return err
		}
		if pending {
			return httperr.ErrBusiness("cancellation_already_pending")
		}

		// --------------------------------------------------
		// 3. Payment
		// --------------------------------------------------
		p, err := optionalPayment(ctx, tx, ap.ID)
		if err != nil {
			return err
		}
		if p == nil || !domain.Refundable(p) {
			return httperr.ErrBusiness("no_valid_payment")
		}

		req = &models.CancellationRequest{
			AppointmentID: ap.ID,
			RequestedBy:   status.RolePatient,
			Reason:        reason,
			RefundAmount:  p.Amount,
			Status:        status.RequestPending,
			RequestedAt:   now,
		}
		if err := tx.CreateRequest(ctx, req); err != nil {
			return err
		}

		if p.Status == status.PaymentCompleted {
			if err := domain.HoldRefund(p); err != nil {
				return err
			}
			return tx.UpdatePayment(ctx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordCancellation("requested")

	if ap.Doctor != nil {
		payload := appointmentPayload(ap)
		payload["reason"] = reason
		uc.notifier.Publish(notification.Message{
			To:      ap.Doctor.Email,
			Name:    ap.Doctor.Name,
			Kind:    notification.KindCancellationRequested,
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   patientID,
		ActorRole: string(status.RolePatient),
		Action:    "cancellation_requested",
		Entity:    "cancellation_request",
		EntityID:  &req.ID,
		Metadata:  map[string]any{"appointment_id": ap.ID},
	})

	req.Appointment = ap
	return req, nil
}

package cancellation

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/audit"
	appointment "github.com/prescripto/prescripto-api/internal/domain/appointment"
	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

type ApproveCancellation struct {
	repo     domain.Repository
	refunder *Refunder
	cache    appointment.SlotCache
	notifier notification.Publisher
	audit    audit.Recorder
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewApproveCancellation(
	repo domain.Repository,
	refunder *Refunder,
	cache appointment.SlotCache,
	notifier notification.Publisher,
	audit audit.Recorder,
	metrics *metrics.Collector,
) *ApproveCancellation {
	return &ApproveCancellation{
		repo:     repo,
		refunder: refunder,
		cache:    cache,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (uc *ApproveCancellation) Execute(
	ctx context.Context,
	doctorID uint,
	requestID uint,
	notes string,
) (*models.CancellationRequest, error) {

	now := uc.now()

	var (
		req *models.CancellationRequest
		ap  *models.Appointment
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 1. Locks: request, appointment, payment
		// --------------------------------------------------
		var err error
		req, err = tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		ap, err = tx.GetAppointmentForUpdate(ctx, req.AppointmentID)
		if err != nil {
			return err
		}
		if ap.DoctorID != doctorID {
			return httperr.ErrForbidden("not_owner")
		}
		if err := domain.EnsurePending(req); err != nil {
			return err
		}

		p, err := optionalPayment(ctx, tx, ap.ID)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 2. Refund, then settle rows
		// --------------------------------------------------
		ref, err := uc.refunder.Settle(ctx, tx, ap, p, now)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 3. Close the request
		// --------------------------------------------------
		if err := domain.Approve(req, notes, ref, now); err != nil {
			return err
		}
		return tx.UpdateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordCancellation("approved")
	uc.cache.Invalidate(ctx, ap.DoctorID, ap.Date)

	if ap.Patient != nil {
		payload := appointmentPayload(ap)
		payload["refund_amount"] = req.RefundAmount
		payload["refund_reference"] = req.RefundTransactionID
		payload["notes"] = notes
		uc.notifier.Publish(notification.Message{
			To:      ap.Patient.Email,
			Phone:   ap.Patient.Phone,
			Name:    ap.Patient.Name,
			Kind:    notification.KindCancellationApproved,
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   doctorID,
		ActorRole: string(status.RoleDoctor),
		Action:    "cancellation_approved",
		Entity:    "cancellation_request",
		EntityID:  &req.ID,
		Metadata: map[string]any{
			"appointment_id":   ap.ID,
			"refund_reference": req.RefundTransactionID,
		},
	})

	req.Appointment = ap
	return req, nil
}

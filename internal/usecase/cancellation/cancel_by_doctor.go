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

type CancelByDoctor struct {
	repo     domain.Repository
	refunder *Refunder
	cache    appointment.SlotCache
	notifier notification.Publisher
	audit    audit.Recorder
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewCancelByDoctor(
	repo domain.Repository,
	refunder *Refunder,
	cache appointment.SlotCache,
	notifier notification.Publisher,
	audit audit.Recorder,
	metrics *metrics.Collector,
) *CancelByDoctor {
	return &CancelByDoctor{
		repo:     repo,
		refunder: refunder,
		cache:    cache,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Execute cancels immediately. The request row it leaves behind is already
// approved and only serves as the refund record: a pending patient request
// is resolved in place, otherwise a new row is written.
func (uc *CancelByDoctor) Execute(
	ctx context.Context,
	doctorID uint,
	appointmentID uint,
	reason string,
) (*models.CancellationRequest, error) {

	now := uc.now()

	var (
		ap  *models.Appointment
		req *models.CancellationRequest
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if ap.DoctorID != doctorID {
			return httperr.ErrForbidden("not_owner")
		}
		if err := appointment.CanCancel(ap.Status); err != nil {
			return err
		}

		p, err := optionalPayment(ctx, tx, ap.ID)
		if err != nil {
			return err
		}

		pending, err := tx.GetPendingRequestForUpdate(ctx, ap.ID)
		if err != nil {
			return err
		}

		ref, err := uc.refunder.Settle(ctx, tx, ap, p, now)
		if err != nil {
			return err
		}

		// a patient request still waiting on this appointment becomes the
		// refund record
		if pending != nil {
			if err := domain.Approve(pending, reason, ref, now); err != nil {
				return err
			}
			req = pending
			return tx.UpdateRequest(ctx, req)
		}

		req = &models.CancellationRequest{
			AppointmentID:       ap.ID,
			RequestedBy:         status.RoleDoctor,
			Reason:              reason,
			RefundAmount:        paymentAmount(p),
			Status:              status.RequestApproved,
			RefundTransactionID: ref,
			RequestedAt:         now,
			ApprovedAt:          &now,
		}
		return tx.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordCancellation("cancelled_by_doctor")
	uc.cache.Invalidate(ctx, ap.DoctorID, ap.Date)

	if ap.Patient != nil {
		payload := appointmentPayload(ap)
		payload["reason"] = reason
		payload["refund_amount"] = req.RefundAmount
		payload["refund_reference"] = req.RefundTransactionID
		uc.notifier.Publish(notification.Message{
			To:      ap.Patient.Email,
			Phone:   ap.Patient.Phone,
			Name:    ap.Patient.Name,
			Kind:    notification.KindCancelledByDoctor,
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   doctorID,
		ActorRole: string(status.RoleDoctor),
		Action:    "appointment_cancelled_by_doctor",
		Entity:    "appointment",
		EntityID:  &ap.ID,
		Metadata: map[string]any{
			"refund_reference": req.RefundTransactionID,
			"request_id":       req.ID,
		},
	})

	req.Appointment = ap
	return req, nil
}

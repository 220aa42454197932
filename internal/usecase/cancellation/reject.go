package cancellation

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/audit"
	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
)

type RejectCancellation struct {
	repo     domain.Repository
	notifier notification.Publisher
	audit    audit.Recorder
	metrics  *metrics.Collector
}

func NewRejectCancellation(
	repo domain.Repository,
	notifier notification.Publisher,
	audit audit.Recorder,
	metrics *metrics.Collector,
) *RejectCancellation {
	return &RejectCancellation{
		repo:     repo,
		notifier: notifier,
		audit:    audit,
		metrics:  metrics,
	}
}

// Execute keeps the appointment and releases any refund hold on its payment.
func (uc *RejectCancellation) Execute(
	ctx context.Context,
	doctorID uint,
	requestID uint,
	notes string,
) (*models.CancellationRequest, error) {

	var (
		req *models.CancellationRequest
		ap  *models.Appointment
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
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
		if p != nil && p.Status == status.PaymentRefundPending {
			domain.ReleaseHold(p)
			if err := tx.UpdatePayment(ctx, p); err != nil {
				return err
			}
		}

		if err := domain.Reject(req, notes); err != nil {
			return err
		}
		return tx.UpdateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordCancellation("rejected")

	if ap.Patient != nil {
		payload := appointmentPayload(ap)
		payload["notes"] = notes
		uc.notifier.Publish(notification.Message{
			To:      ap.Patient.Email,
			Name:    ap.Patient.Name,
			Kind:    notification.KindCancellationRejected,
			Payload: payload,
		})
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   doctorID,
		ActorRole: string(status.RoleDoctor),
		Action:    "cancellation_rejected",
		Entity:    "cancellation_request",
		EntityID:  &req.ID,
		Metadata:  map[string]any{"appointment_id": ap.ID},
	})

	req.Appointment = ap
	return req, nil
}

package cancellation

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

// EnsurePending guards every resolution of a request.
func EnsurePending(req *models.CancellationRequest) error {
	if req.Status != status.RequestPending {
		return httperr.ErrBusiness("already_processed")
	}
	return nil
}

func Approve(req *models.CancellationRequest, notes, refundRef string, now time.Time) error {
	if err := EnsurePending(req); err != nil {
		return err
	}
	if err := req.Status.CanTransitionTo(status.RequestApproved); err != nil {
		return err
	}

	req.Status = status.RequestApproved
	req.Notes = notes
	req.RefundTransactionID = refundRef
	req.ApprovedAt = &now
	return nil
}

func Reject(req *models.CancellationRequest, notes string) error {
	if err := EnsurePending(req); err != nil {
		return err
	}
	if err := req.Status.CanTransitionTo(status.RequestRejected); err != nil {
		return err
	}

	req.Status = status.RequestRejected
	req.Notes = notes
	return nil
}

// HoldRefund marks a captured payment as awaiting the doctor's decision.
// Calling it twice is a no-op.
func HoldRefund(p *models.Payment) error {
	if p.Status == status.PaymentRefundPending {
		return nil
	}
	if p.Status != status.PaymentCompleted {
		return nil
	}
	p.Status = status.PaymentRefundPending
	return nil
}

// ReleaseHold undoes HoldRefund after a rejection.
func ReleaseHold(p *models.Payment) {
	if p.Status == status.PaymentRefundPending {
		p.Status = status.PaymentCompleted
	}
}

// MarkRefunded forces the payment to refunded whatever its prior state.
func MarkRefunded(p *models.Payment, now time.Time) {
	p.Status = status.PaymentRefunded
	p.RefundedAt = &now
}

// Refundable reports whether a patient may ask to cancel against this payment.
func Refundable(p *models.Payment) bool {
	return p.Status == status.PaymentCompleted || p.Status == status.PaymentPending
}

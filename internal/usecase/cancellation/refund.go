package cancellation

import (
	"context"
	"fmt"
	"math"
	"time"

	appointment "github.com/prescripto/prescripto-api/internal/domain/appointment"
	domain "github.com/prescripto/prescripto-api/internal/domain/cancellation"
	"github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
)

// Refunder returns captured money and settles the rows that depend on it.
type Refunder struct {
	gateways payment.Resolver
	metrics  *metrics.Collector
}

func NewRefunder(gateways payment.Resolver, m *metrics.Collector) *Refunder {
	return &Refunder{gateways: gateways, metrics: m}
}

// Issue calls the card gateway for card payments that carry a transaction
// id and returns the gateway's refund id. Every other payment gets a local
// reference. Nothing is written here.
func (r *Refunder) Issue(
	ctx context.Context,
	ap *models.Appointment,
	p *models.Payment,
	now time.Time,
) (string, error) {

	if p.Method != status.MethodCard || p.TransactionID == "" {
		r.metrics.RecordRefund("local", "ok")
		return fmt.Sprintf("refund-%d-%d", ap.ID, now.UnixMilli()), nil
	}

	gw, err := r.gateways.For(p.Provider)
	if err != nil {
		r.metrics.RecordRefund(p.Provider, "failed")
		return "", httperr.ErrExternal("refund_failed", err)
	}

	amountMinor := int64(math.Round(p.Amount * 100))
	res, err := gw.Refund(ctx, p.TransactionID, amountMinor)
	if err != nil {
		r.metrics.RecordRefund(gw.Name(), "failed")
		return "", httperr.ErrExternal("refund_failed", err)
	}

	r.metrics.RecordRefund(gw.Name(), "ok")
	return res.RefundID, nil
}

// Settle runs the refund, when the payment holds captured money, and then
// marks the payment refunded and the appointment cancelled. The gateway is
// called before any row changes so a failure leaves the transaction clean.
func (r *Refunder) Settle(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	p *models.Payment,
	now time.Time,
) (string, error) {

	var ref string
	if p != nil && p.Status.Captured() {
		var err error
		if ref, err = r.Issue(ctx, ap, p, now); err != nil {
			return "", err
		}
	}

	if p != nil {
		domain.MarkRefunded(p, now)
		if err := tx.UpdatePayment(ctx, p); err != nil {
			return "", err
		}
	}

	if err := appointment.Cancel(ap, now); err != nil {
		return "", err
	}
	if err := tx.UpdateAppointment(ctx, ap); err != nil {
		return "", err
	}

	return ref, nil
}

// optionalPayment treats a missing payment row as nil.
func optionalPayment(
	ctx context.Context,
	tx domain.Repository,
	appointmentID uint,
) (*models.Payment, error) {

	p, err := tx.GetPaymentForUpdate(ctx, appointmentID)
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func paymentAmount(p *models.Payment) float64 {
	if p == nil {
		return 0
	}
	return p.Amount
}

func appointmentPayload(ap *models.Appointment) map[string]any {
	payload := map[string]any{
		"date": ap.Date.String(),
		"time": ap.Time.String(),
	}
	if ap.Doctor != nil {
		payload["doctor_name"] = ap.Doctor.Name
	}
	if ap.Patient != nil {
		payload["patient_name"] = ap.Patient.Name
	}
	return payload
}

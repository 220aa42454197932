package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prescripto/prescripto-api/internal/audit"
	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

type ConfirmInput struct {
	PatientID     uint
	AppointmentID uint
	Method        status.PaymentMethod
	Provider      string
	TransactionID string
}

// ConfirmPayment records the payment of an appointment. Card payments are
// checked against the gateway they were made through; UPI and cash are
// settled immediately.
type ConfirmPayment struct {
	repo     domain.Repository
	gateways domain.Resolver
	receipts *Receipts
	audit    audit.Recorder
	currency string
	now      func() time.Time
}

func NewConfirmPayment(
	repo domain.Repository,
	gateways domain.Resolver,
	receipts *Receipts,
	audit audit.Recorder,
	currency string,
) *ConfirmPayment {
	return &ConfirmPayment{
		repo:     repo,
		gateways: gateways,
		receipts: receipts,
		audit:    audit,
		currency: currency,
		now:      time.Now,
	}
}

func (uc *ConfirmPayment) Execute(
	ctx context.Context,
	in ConfirmInput,
) (*models.Payment, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	switch in.Method {
	case status.MethodCard:
		if in.TransactionID == "" {
			return nil, httperr.ErrValidation("transaction_id_required")
		}
	case status.MethodUPI, status.MethodCash:
		if in.TransactionID == "" {
			in.TransactionID = string(in.Method) + "-" + uuid.NewString()
		}
	default:
		return nil, httperr.ErrValidation("invalid_payment_method")
	}

	var (
		ap *models.Appointment
		p  *models.Payment
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 2. Appointment + existing payment
		// --------------------------------------------------
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if ap.PatientID != in.PatientID {
			return httperr.ErrForbidden("not_owner")
		}
		if ap.Status != status.Scheduled {
			return httperr.ErrBusiness("invalid_state")
		}

		p, err = tx.FindPaymentForUpdate(ctx, ap.ID)
		if err != nil && !httperr.IsKind(err, httperr.KindNotFound) {
			return err
		}
		if p == nil {
			p = &models.Payment{AppointmentID: ap.ID, Status: status.PaymentPending}
		} else if p.Status != status.PaymentPending && p.Status != status.PaymentFailed {
			return httperr.ErrBusiness("already_paid")
		}

		// --------------------------------------------------
		// 3. Settle
		// --------------------------------------------------
		next := status.PaymentCompleted
		provider := ""

		if in.Method == status.MethodCard {
			gw, err := uc.gateways.For(in.Provider)
			if err != nil {
				return httperr.ErrValidation("unknown_provider")
			}
			provider = gw.Name()

			captured, err := gw.Lookup(ctx, in.TransactionID)
			if err != nil {
				return httperr.ErrExternal("payment_lookup_failed", err)
			}
			next = nextStatus(captured, p.Status)
		}

		if next != p.Status {
			if err := p.Status.CanTransitionTo(next); err != nil {
				return err
			}
		}

		p.Amount = doctorFees(ap)
		p.Currency = uc.currency
		p.Method = in.Method
		p.Provider = provider
		p.TransactionID = in.TransactionID
		p.Status = next
		if next == status.PaymentCompleted {
			now := uc.now()
			p.PaidAt = &now
		}

		return tx.SavePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:   in.PatientID,
		ActorRole: string(status.RolePatient),
		Action:    "payment_" + string(p.Status),
		Entity:    "payment",
		EntityID:  &p.ID,
		Metadata:  map[string]any{"appointment_id": ap.ID, "method": p.Method},
	})

	if p.Status == status.PaymentCompleted {
		uc.receipts.Send(ctx, ap, p)
	}

	return p, nil
}

// nextStatus maps a gateway answer onto the payment. An undecided answer
// keeps the current status.
func nextStatus(c domain.Captured, current status.Payment) status.Payment {
	switch c {
	case domain.CaptureApproved:
		return status.PaymentCompleted
	case domain.CaptureRejected:
		return status.PaymentFailed
	}
	return current
}

func doctorFees(ap *models.Appointment) float64 {
	if ap.Doctor == nil {
		return 0
	}
	return ap.Doctor.Fees
}

package payment

import (
	"context"
	"time"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
)

// SyncPayment re-reads a transaction from its gateway after a provider
// notification and moves a pending or failed payment accordingly. Settled
// payments are left alone.
type SyncPayment struct {
	repo     domain.Repository
	gateways domain.Resolver
	receipts *Receipts
	now      func() time.Time
}

func NewSyncPayment(repo domain.Repository, gateways domain.Resolver, receipts *Receipts) *SyncPayment {
	return &SyncPayment{repo: repo, gateways: gateways, receipts: receipts, now: time.Now}
}

func (uc *SyncPayment) Execute(
	ctx context.Context,
	transactionID string,
) (*models.Payment, error) {

	if transactionID == "" {
		return nil, httperr.ErrValidation("transaction_id_required")
	}

	found, err := uc.repo.FindPaymentByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var (
		ap      *models.Appointment
		p       *models.Payment
		changed bool
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointmentForUpdate(ctx, found.AppointmentID)
		if err != nil {
			return err
		}
		p, err = tx.FindPaymentForUpdate(ctx, found.AppointmentID)
		if err != nil {
			return err
		}
		if p.Status != status.PaymentPending && p.Status != status.PaymentFailed {
			return nil
		}

		gw, err := uc.gateways.For(p.Provider)
		if err != nil {
			return httperr.ErrExternal("unknown_provider", err)
		}
		captured, err := gw.Lookup(ctx, p.TransactionID)
		if err != nil {
			return httperr.ErrExternal("payment_lookup_failed", err)
		}

		next := nextStatus(captured, p.Status)
		if next == p.Status {
			return nil
		}
		if err := p.Status.CanTransitionTo(next); err != nil {
			return err
		}

		p.Status = next
		if next == status.PaymentCompleted {
			now := uc.now()
			p.PaidAt = &now
		}
		changed = true
		return tx.SavePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if changed && p.Status == status.PaymentCompleted {
		uc.receipts.Send(ctx, ap, p)
	}
	return p, nil
}

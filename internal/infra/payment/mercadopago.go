package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
)

type mpRefunds interface {
	CreatePartialRefund(ctx context.Context, paymentID int, amount float64) (*refund.Response, error)
}

type mpPayments interface {
	Get(ctx context.Context, id int) (*mppayment.Response, error)
}

type MercadoPago struct {
	refunds  mpRefunds
	payments mpPayments
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		refunds:  refund.NewClient(cfg),
		payments: mppayment.NewClient(cfg),
	}, nil
}

func (g *MercadoPago) Name() string { return ProviderMercadoPago }

func (g *MercadoPago) Refund(ctx context.Context, transactionID string, amountMinor int64) (domain.RefundResult, error) {
	id, err := strconv.Atoi(transactionID)
	if err != nil {
		return domain.RefundResult{}, fmt.Errorf("mercadopago: invalid payment id %q", transactionID)
	}

	res, err := g.refunds.CreatePartialRefund(ctx, id, float64(amountMinor)/100)
	if err != nil {
		return domain.RefundResult{}, fmt.Errorf("mercadopago refund: %w", err)
	}

	return domain.RefundResult{
		RefundID: strconv.Itoa(res.ID),
		Status:   res.Status,
	}, nil
}

func (g *MercadoPago) Lookup(ctx context.Context, transactionID string) (domain.Captured, error) {
	id, err := strconv.Atoi(transactionID)
	if err != nil {
		return domain.CaptureUnknown, fmt.Errorf("mercadopago: invalid payment id %q", transactionID)
	}

	res, err := g.payments.Get(ctx, id)
	if err != nil {
		return domain.CaptureUnknown, fmt.Errorf("mercadopago get payment: %w", err)
	}

	switch res.Status {
	case "approved":
		return domain.CaptureApproved, nil
	case "pending", "in_process", "authorized":
		return domain.CapturePending, nil
	case "rejected", "cancelled":
		return domain.CaptureRejected, nil
	}
	return domain.CaptureUnknown, nil
}

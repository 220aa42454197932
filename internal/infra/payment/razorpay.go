package payment

import (
	"context"
	"fmt"

	"github.com/razorpay/razorpay-go"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
)

type rzpPayments interface {
	Refund(paymentID string, amount int, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	payments rzpPayments
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return &Razorpay{payments: client.Payment}
}

func (g *Razorpay) Name() string { return ProviderRazorpay }

func (g *Razorpay) Refund(ctx context.Context, transactionID string, amountMinor int64) (domain.RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RefundResult{}, err
	}

	body, err := g.payments.Refund(transactionID, int(amountMinor), map[string]interface{}{"speed": "normal"}, nil)
	if err != nil {
		return domain.RefundResult{}, fmt.Errorf("razorpay refund: %w", err)
	}

	id, _ := body["id"].(string)
	st, _ := body["status"].(string)
	if id == "" {
		return domain.RefundResult{}, fmt.Errorf("razorpay refund: empty refund id")
	}
	return domain.RefundResult{RefundID: id, Status: st}, nil
}

func (g *Razorpay) Lookup(ctx context.Context, transactionID string) (domain.Captured, error) {
	if err := ctx.Err(); err != nil {
		return domain.CaptureUnknown, err
	}

	body, err := g.payments.Fetch(transactionID, nil, nil)
	if err != nil {
		return domain.CaptureUnknown, fmt.Errorf("razorpay fetch: %w", err)
	}

	switch body["status"] {
	case "captured":
		return domain.CaptureApproved, nil
	case "created", "authorized":
		return domain.CapturePending, nil
	case "failed":
		return domain.CaptureRejected, nil
	}
	return domain.CaptureUnknown, nil
}

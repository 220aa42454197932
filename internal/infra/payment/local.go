package payment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/prescripto/prescripto-api/internal/domain/payment"
)

// Local approves everything. It backs development setups without gateway
// credentials.
type Local struct{}

func (Local) Name() string { return ProviderLocal }

func (Local) Refund(ctx context.Context, transactionID string, amountMinor int64) (domain.RefundResult, error) {
	return domain.RefundResult{RefundID: "local-" + uuid.NewString(), Status: "approved"}, nil
}

func (Local) Lookup(ctx context.Context, transactionID string) (domain.Captured, error) {
	return domain.CaptureApproved, nil
}

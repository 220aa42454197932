package payment

import "context"

type RefundResult struct {
	RefundID string
	Status   string
}

// Gateway is one card processor.
type Gateway interface {
	Name() string

	// Refund returns money for a captured transaction. amountMinor is in the
	// currency's minor units.
	Refund(ctx context.Context, transactionID string, amountMinor int64) (RefundResult, error)

	// Lookup reports whether the transaction was captured.
	Lookup(ctx context.Context, transactionID string) (Captured, error)
}

type Captured int

const (
	CaptureUnknown Captured = iota
	CaptureApproved
	CapturePending
	CaptureRejected
)

// Resolver picks the gateway a payment was made through.
type Resolver interface {
	For(provider string) (Gateway, error)
	Default() Gateway
}

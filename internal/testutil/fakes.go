package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/notification"
)

// Outbox records published notifications. After Accept messages it behaves
// like a full queue; zero means unbounded.
type Outbox struct {
	mu     sync.Mutex
	Msgs   []notification.Message
	Accept int
}

func (o *Outbox) Publish(msg notification.Message) {
	o.Enqueue(msg)
}

func (o *Outbox) Enqueue(msg notification.Message) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Accept > 0 && len(o.Msgs) >= o.Accept {
		return false
	}
	o.Msgs = append(o.Msgs, msg)
	return true
}

func (o *Outbox) Kinds() []notification.Kind {
	o.mu.Lock()
	defer o.mu.Unlock()
	kinds := make([]notification.Kind, 0, len(o.Msgs))
	for _, m := range o.Msgs {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

// AuditTrail records dispatched audit events.
type AuditTrail struct {
	mu     sync.Mutex
	Events []audit.Event
}

func (a *AuditTrail) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Events = append(a.Events, ev)
}

type MockGateway struct {
	mock.Mock
	Provider string
}

func (g *MockGateway) Name() string { return g.Provider }

func (g *MockGateway) Refund(ctx context.Context, transactionID string, amountMinor int64) (payment.RefundResult, error) {
	args := g.Called(transactionID, amountMinor)
	return args.Get(0).(payment.RefundResult), args.Error(1)
}

func (g *MockGateway) Lookup(ctx context.Context, transactionID string) (payment.Captured, error) {
	args := g.Called(transactionID)
	return args.Get(0).(payment.Captured), args.Error(1)
}

// SingleGateway resolves every provider to one gateway.
type SingleGateway struct {
	Gateway payment.Gateway
}

func (r SingleGateway) For(string) (payment.Gateway, error) { return r.Gateway, nil }
func (r SingleGateway) Default() payment.Gateway            { return r.Gateway }

var (
	_ notification.Enqueuer  = (*Outbox)(nil)
	_ audit.Recorder         = (*AuditTrail)(nil)
	_ payment.Gateway        = (*MockGateway)(nil)
	_ payment.Resolver       = SingleGateway{}
)

package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

// SlotCache is an in-process cache with the same generation rule as the
// Redis one.
type SlotCache struct {
	mu   sync.Mutex
	gens map[string]uint64
	vals map[string]*appointment.Availability
}

func NewSlotCache() *SlotCache {
	return &SlotCache{
		gens: map[string]uint64{},
		vals: map[string]*appointment.Availability{},
	}
}

func slotKey(doctorID uint, date calendar.Date) string {
	return fmt.Sprintf("%d:%s", doctorID, date)
}

func (c *SlotCache) Get(ctx context.Context, doctorID uint, date calendar.Date) (*appointment.Availability, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := slotKey(doctorID, date)
	av, ok := c.vals[k]
	return av, c.gens[k], ok
}

func (c *SlotCache) Set(ctx context.Context, doctorID uint, date calendar.Date, gen uint64, av *appointment.Availability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := slotKey(doctorID, date)
	if c.gens[k] != gen {
		return
	}
	c.vals[k] = av
}

func (c *SlotCache) Invalidate(ctx context.Context, doctorID uint, date calendar.Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := slotKey(doctorID, date)
	c.gens[k]++
	delete(c.vals, k)
}

// Has reports whether a value is cached for the key.
func (c *SlotCache) Has(doctorID uint, date calendar.Date) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.vals[slotKey(doctorID, date)]
	return ok
}

var _ appointment.SlotCache = (*SlotCache)(nil)

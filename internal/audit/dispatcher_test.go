package audit

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prescripto/prescripto-api/internal/logger"
)

type memWriter struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (w *memWriter) Write(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("db down")
	}
	w.events = append(w.events, ev)
	return nil
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	w := &memWriter{}
	d := NewDispatcher(w, logger.Discard())

	d.Dispatch(Event{ActorID: 1, Action: "appointment_booked"})
	d.Dispatch(Event{ActorID: 2, Action: "cancellation_requested"})
	d.Close()

	assert.Len(t, w.events, 2)
	assert.Equal(t, "appointment_booked", w.events[0].Action)
	assert.Equal(t, "cancellation_requested", w.events[1].Action)
}

func TestDispatcher_WriteFailureIsSwallowed(t *testing.T) {
	w := &memWriter{fail: true}
	d := NewDispatcher(w, logger.Discard())

	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: "x"})
		d.Close()
	})
	assert.Empty(t, w.events)
}

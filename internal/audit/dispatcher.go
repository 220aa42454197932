package audit

import (
	"github.com/prescripto/prescripto-api/internal/logger"
)

type Event struct {
	ActorID   uint
	ActorRole string
	Action    string
	Entity    string
	EntityID  *uint
	Metadata  any
}

// Recorder is what use cases depend on.
type Recorder interface {
	Dispatch(ev Event)
}

type Writer interface {
	Write(ev Event) error
}

type Dispatcher struct {
	writer Writer
	log    *logger.Logger
	queue  chan Event
	done   chan struct{}
}

func NewDispatcher(writer Writer, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		writer: writer,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.writer.Write(ev); err != nil {
			d.log.WithComponent("audit").WithError(err).
				WithField("action", ev.Action).
				Error("audit write failed")
			// keep the trail in the log stream at least
			d.log.Audit(ev.ActorID, ev.Action, ev.Entity, entityID(ev), map[string]interface{}{
				"actor_role": ev.ActorRole,
				"metadata":   ev.Metadata,
			})
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// full queue: drop, never fail the request
		d.log.WithComponent("audit").WithField("action", ev.Action).Warn("audit queue full, dropping event")
	}
}

// Close drains the queue and waits for the worker.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func entityID(ev Event) uint {
	if ev.EntityID == nil {
		return 0
	}
	return *ev.EntityID
}

package notification

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/metrics"
	"github.com/prescripto/prescripto-api/internal/models"
)

const sendTimeout = 20 * time.Second

type DeliveryLog interface {
	Record(entry models.EmailNotification) error
}

// Dispatcher delivers messages on a single worker goroutine. Failures are
// logged and counted, never returned.
type Dispatcher struct {
	email   EmailSender
	sms     SMSSender
	journal DeliveryLog
	log     *logger.Logger
	metrics *metrics.Collector

	queue chan Message
	done  chan struct{}
}

func NewDispatcher(
	email EmailSender,
	sms SMSSender,
	journal DeliveryLog,
	log *logger.Logger,
	m *metrics.Collector,
	size int,
) *Dispatcher {
	if size <= 0 {
		size = 100
	}

	d := &Dispatcher{
		email:   email,
		sms:     sms,
		journal: journal,
		log:     log,
		metrics: m,
		queue:   make(chan Message, size),
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) Publish(msg Message) {
	d.Enqueue(msg)
}

// Enqueue is Publish reporting whether the message made it into the queue.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		d.metrics.RecordNotification(string(msg.Kind), "queue", "dropped")
		d.log.WithComponent("notification").
			WithField("kind", msg.Kind).
			Warn("notification queue full, dropping message")
		return false
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	entry := d.log.WithComponent("notification").WithField("kind", msg.Kind)

	content, err := render(msg)
	if err != nil {
		entry.WithError(err).Error("notification render failed")
		d.metrics.RecordNotification(string(msg.Kind), "email", "failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if msg.To != "" {
		err := d.email.SendEmail(ctx, msg.To, content.Subject, content.HTML, msg.Attachment)
		d.record(msg, "email", content.Subject, err)
	}

	if msg.Phone != "" && content.SMS != "" {
		err := d.sms.SendSMS(ctx, msg.Phone, content.SMS)
		d.record(msg, "sms", content.Subject, err)
	}
}

func (d *Dispatcher) record(msg Message, channel, subject string, sendErr error) {
	row := models.EmailNotification{
		RecipientEmail: msg.To,
		Channel:        channel,
		Kind:           string(msg.Kind),
		Subject:        subject,
		Status:         "sent",
		SentAt:         time.Now(),
	}

	if sendErr != nil {
		row.Status = "failed"
		row.Error = sendErr.Error()
		d.log.WithComponent("notification").
			WithError(sendErr).
			WithField("kind", msg.Kind).
			WithField("channel", channel).
			Error("notification delivery failed")
	}

	d.metrics.RecordNotification(string(msg.Kind), channel, row.Status)

	if err := d.journal.Record(row); err != nil {
		d.log.WithComponent("notification").WithError(err).Warn("notification log write failed")
	}
}

var _ Enqueuer = (*Dispatcher)(nil)

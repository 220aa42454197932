package notification

import "context"

type Kind string

const (
	KindAppointmentConfirmation Kind = "appointment_confirmation"
	KindCancellationRequested   Kind = "cancellation_requested"
	KindCancellationApproved    Kind = "cancellation_approved"
	KindCancellationRejected    Kind = "cancellation_rejected"
	KindCancelledByDoctor       Kind = "cancelled_by_doctor"
	KindPaymentReceipt          Kind = "payment_receipt"
	KindConsultation            Kind = "consultation"
	KindReminder                Kind = "reminder"
)

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is addressed to one person. Phone is optional; when set and the
// kind has an SMS text, an SMS is sent as well.
type Message struct {
	To         string
	Phone      string
	Name       string
	Kind       Kind
	Payload    map[string]any
	Attachment *Attachment
}

// Publisher accepts a message for asynchronous delivery. It never fails the
// caller.
type Publisher interface {
	Publish(msg Message)
}

// Enqueuer is a Publisher that also reports whether the message was
// accepted, for callers that record delivery themselves.
type Enqueuer interface {
	Publisher
	Enqueue(msg Message) bool
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string, att *Attachment) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

package status

import "github.com/prescripto/prescripto-api/internal/httperr"

// ===============================
// Appointment
// ===============================

type Appointment string

const (
	Scheduled Appointment = "scheduled"
	Completed Appointment = "completed"
	Cancelled Appointment = "cancelled"
	NoShow    Appointment = "no_show"
)

var appointmentTransitions = map[Appointment][]Appointment{
	Scheduled: {Completed, Cancelled, NoShow},
}

// Occupies reports whether an appointment in this status holds its slot.
func (s Appointment) Occupies() bool {
	return s == Scheduled || s == Completed
}

func (s Appointment) Valid() bool {
	switch s {
	case Scheduled, Completed, Cancelled, NoShow:
		return true
	}
	return false
}

func (s Appointment) CanTransitionTo(next Appointment) error {
	return check(appointmentTransitions[s], next)
}

// OccupyingAppointmentStatuses is used in queries filtering active bookings.
func OccupyingAppointmentStatuses() []string {
	return []string{string(Scheduled), string(Completed)}
}

// ===============================
// Payment
// ===============================

type Payment string

const (
	PaymentPending       Payment = "pending"
	PaymentCompleted     Payment = "completed"
	PaymentFailed        Payment = "failed"
	PaymentRefundPending Payment = "refund_pending"
	PaymentRefunded      Payment = "refunded"
)

var paymentTransitions = map[Payment][]Payment{
	PaymentPending:       {PaymentCompleted, PaymentFailed, PaymentRefunded},
	PaymentFailed:        {PaymentCompleted, PaymentRefunded},
	PaymentCompleted:     {PaymentRefundPending, PaymentRefunded},
	PaymentRefundPending: {PaymentCompleted, PaymentRefunded},
}

func (s Payment) CanTransitionTo(next Payment) error {
	return check(paymentTransitions[s], next)
}

// Captured reports whether the gateway holds money for this payment.
func (s Payment) Captured() bool {
	return s == PaymentCompleted || s == PaymentRefundPending
}

// ===============================
// Cancellation request
// ===============================

type Request string

const (
	RequestPending  Request = "pending"
	RequestApproved Request = "approved"
	RequestRejected Request = "rejected"
)

var requestTransitions = map[Request][]Request{
	RequestPending: {RequestApproved, RequestRejected},
}

func (s Request) CanTransitionTo(next Request) error {
	return check(requestTransitions[s], next)
}

// ===============================
// Enumerations without transitions
// ===============================

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
	MethodCash PaymentMethod = "cash"
)

type ConsultationType string

const (
	InPerson ConsultationType = "in_person"
	Video    ConsultationType = "video"
)

func (c ConsultationType) Valid() bool {
	return c == InPerson || c == Video
}

func check[T comparable](allowed []T, next T) error {
	for _, a := range allowed {
		if a == next {
			return nil
		}
	}
	return httperr.ErrBusiness("invalid_state")
}

package cancellation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/infra/cache"
	"github.com/prescripto/prescripto-api/internal/models"
	booking "github.com/prescripto/prescripto-api/internal/usecase/appointment"
)

// A Monday 09:00-10:00 doctor: book, pay, request, approve, and the slot
// comes back.
func TestMondayBookCancelRefund(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	day := calendar.NewDate(2030, time.June, 3)
	require.Equal(t, time.Monday, day.Weekday())

	slots := booking.NewGetAvailability(f.store.AppointmentRepo(), cache.NoopSlotCache{})

	av, err := slots.Execute(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(9, 0), calendar.NewClock(9, 30)}, av.Slots)

	// --------------------------------------------------
	// Book 09:00
	// --------------------------------------------------
	ap, err := booking.NewBookAppointment(
		f.store.AppointmentRepo(), cache.NoopSlotCache{}, f.outbox, f.trail, nil, ist,
	).Execute(ctx, booking.BookInput{
		DoctorID:  1,
		PatientID: 2,
		Date:      day,
		Time:      calendar.NewClock(9, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, status.Scheduled, ap.Status)
	assert.Equal(t, status.InPerson, ap.ConsultationType)

	av, err = slots.Execute(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(9, 30)}, av.Slots)

	f.store.Payments[ap.ID] = models.Payment{
		ID: 900, AppointmentID: ap.ID,
		Amount: 50, Currency: "USD",
		Method: status.MethodCard, Provider: "mercadopago", TransactionID: "mp-9",
		Status: status.PaymentCompleted,
	}

	// --------------------------------------------------
	// Request three hours ahead
	// --------------------------------------------------
	appointmentStart := calendar.At(day, calendar.NewClock(9, 0), ist)

	req, err := f.request(appointmentStart.Add(-3*time.Hour)).
		Execute(ctx, 2, ap.ID, "schedule conflict")
	require.NoError(t, err)
	assert.Equal(t, status.RequestPending, req.Status)
	assert.Equal(t, 50.0, req.RefundAmount)
	assert.Equal(t, status.PaymentRefundPending, f.store.Payments[ap.ID].Status)

	// --------------------------------------------------
	// Approve
	// --------------------------------------------------
	f.gw.On("Refund", "mp-9", int64(5000)).
		Return(payment.RefundResult{RefundID: "re_9"}, nil).
		Once()

	approved, err := f.approve(appointmentStart.Add(-2*time.Hour)).Execute(ctx, 1, req.ID, "ok")
	require.NoError(t, err)

	assert.Equal(t, status.RequestApproved, approved.Status)
	assert.Equal(t, "re_9", f.store.Requests[req.ID].RefundTransactionID)
	assert.Equal(t, status.PaymentRefunded, f.store.Payments[ap.ID].Status)
	assert.Equal(t, status.Cancelled, f.store.Appointments[ap.ID].Status)
	f.gw.AssertExpectations(t)

	av, err = slots.Execute(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, []calendar.Clock{calendar.NewClock(9, 0), calendar.NewClock(9, 30)}, av.Slots)
}

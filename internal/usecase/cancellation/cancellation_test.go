package cancellation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/payment"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/infra/cache"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
	"github.com/prescripto/prescripto-api/internal/testutil"
)

var (
	ist    = time.FixedZone("IST", 5*3600+30*60)
	monday = calendar.NewDate(2024, time.June, 3)
	nine   = calendar.NewClock(9, 0)
	start  = calendar.At(monday, nine, ist)
)

type fixture struct {
	store    *testutil.Store
	outbox   *testutil.Outbox
	trail    *testutil.AuditTrail
	gw       *testutil.MockGateway
	refunder *Refunder
}

func newFixture() *fixture {
	s := testutil.NewStore()
	s.Doctors[1] = models.Doctor{ID: 1, Name: "Rao", Email: "rao@example.com"}
	s.Doctors[3] = models.Doctor{ID: 3, Name: "Iyer", Email: "iyer@example.com"}
	s.Patients[2] = models.Patient{ID: 2, Name: "Ana", Email: "ana@example.com", Phone: "+919999999999"}
	s.Timings = []models.DoctorTiming{{
		ID: 1, DoctorID: 1, DayOfWeek: "Monday",
		StartTime: calendar.NewClock(9, 0), EndTime: calendar.NewClock(10, 0), SlotDuration: 30,
	}}

	gw := &testutil.MockGateway{Provider: "mercadopago"}
	return &fixture{
		store:    s,
		outbox:   &testutil.Outbox{},
		trail:    &testutil.AuditTrail{},
		gw:       gw,
		refunder: NewRefunder(testutil.SingleGateway{Gateway: gw}, nil),
	}
}

func (f *fixture) appointment(id uint, p *models.Payment) {
	f.store.Appointments[id] = models.Appointment{
		ID: id, DoctorID: 1, PatientID: 2,
		Date: monday, Time: nine,
		ConsultationType: status.InPerson,
		Status:           status.Scheduled,
	}
	if p != nil {
		p.ID = id + 1000
		p.AppointmentID = id
		f.store.Payments[id] = *p
	}
}

func (f *fixture) pendingRequest(id, appointmentID uint, amount float64) {
	f.store.Requests[id] = models.CancellationRequest{
		ID: id, AppointmentID: appointmentID,
		RequestedBy: status.RolePatient, Reason: "schedule conflict",
		RefundAmount: amount, Status: status.RequestPending,
		RequestedAt: start.Add(-3 * time.Hour),
	}
}

func cardPayment(amount float64, st status.Payment) *models.Payment {
	return &models.Payment{
		Amount: amount, Currency: "INR",
		Method: status.MethodCard, Provider: "mercadopago", TransactionID: "mp-1",
		Status: st,
	}
}

func (f *fixture) request(now time.Time) *RequestCancellation {
	uc := NewRequestCancellation(f.store.CancellationRepo(), f.outbox, f.trail, nil, ist, 0)
	uc.now = func() time.Time { return now }
	return uc
}

func (f *fixture) approve(now time.Time) *ApproveCancellation {
	uc := NewApproveCancellation(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil)
	uc.now = func() time.Time { return now }
	return uc
}

func (f *fixture) cancelByDoctor(now time.Time) *CancelByDoctor {
	uc := NewCancelByDoctor(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil)
	uc.now = func() time.Time { return now }
	return uc
}

// ======================================================
// Request
// ======================================================

func TestRequestCancellation_NoticeBoundary(t *testing.T) {
	t.Run("1h59m before is too late", func(t *testing.T) {
		f := newFixture()
		f.appointment(7, cardPayment(500, status.PaymentCompleted))

		_, err := f.request(start.Add(-(2*time.Hour - time.Minute))).
			Execute(context.Background(), 2, 7, "schedule conflict")

		assert.True(t, httperr.IsBusiness(err, "too_late"))
		assert.Empty(t, f.store.Requests)
		assert.Equal(t, status.PaymentCompleted, f.store.Payments[7].Status)
	})

	t.Run("exactly 2h before is accepted", func(t *testing.T) {
		f := newFixture()
		f.appointment(7, cardPayment(500, status.PaymentCompleted))

		req, err := f.request(start.Add(-2*time.Hour)).
			Execute(context.Background(), 2, 7, "schedule conflict")

		require.NoError(t, err)
		assert.Equal(t, status.RequestPending, req.Status)
		assert.Equal(t, 500.0, req.RefundAmount)
		assert.Equal(t, status.PaymentRefundPending, f.store.Payments[7].Status)
		assert.Equal(t, status.Scheduled, f.store.Appointments[7].Status)
		assert.Equal(t, []notification.Kind{notification.KindCancellationRequested}, f.outbox.Kinds())
		assert.Equal(t, "rao@example.com", f.outbox.Msgs[0].To)
	})
}

func TestRequestCancellation_Guards(t *testing.T) {
	now := start.Add(-5 * time.Hour)

	cases := []struct {
		name    string
		setup   func(f *fixture)
		patient uint
		check   func(t *testing.T, err error)
	}{
		{
			name:    "unknown appointment",
			setup:   func(f *fixture) {},
			patient: 2,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
			},
		},
		{
			name:    "other patient",
			setup:   func(f *fixture) { f.appointment(7, cardPayment(500, status.PaymentCompleted)) },
			patient: 9,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsBusiness(err, "not_owner"))
				assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
			},
		},
		{
			name: "not scheduled",
			setup: func(f *fixture) {
				f.appointment(7, cardPayment(500, status.PaymentCompleted))
				ap := f.store.Appointments[7]
				ap.Status = status.Completed
				f.store.Appointments[7] = ap
			},
			patient: 2,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsBusiness(err, "invalid_state"))
			},
		},
		{
			name: "already pending",
			setup: func(f *fixture) {
				f.appointment(7, cardPayment(500, status.PaymentRefundPending))
				f.pendingRequest(50, 7, 500)
			},
			patient: 2,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsBusiness(err, "cancellation_already_pending"))
			},
		},
		{
			name:    "no payment",
			setup:   func(f *fixture) { f.appointment(7, nil) },
			patient: 2,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsBusiness(err, "no_valid_payment"))
			},
		},
		{
			name:    "failed payment",
			setup:   func(f *fixture) { f.appointment(7, cardPayment(500, status.PaymentFailed)) },
			patient: 2,
			check: func(t *testing.T, err error) {
				assert.True(t, httperr.IsBusiness(err, "no_valid_payment"))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			tc.setup(f)

			_, err := f.request(now).Execute(context.Background(), tc.patient, 7, "x")

			require.Error(t, err)
			tc.check(t, err)
			assert.Empty(t, f.outbox.Msgs)
		})
	}
}

func TestRequestCancellation_PendingPaymentKeepsStatus(t *testing.T) {
	f := newFixture()
	f.appointment(7, &models.Payment{Amount: 300, Method: status.MethodCash, Status: status.PaymentPending})

	req, err := f.request(start.Add(-3*time.Hour)).Execute(context.Background(), 2, 7, "travel")

	require.NoError(t, err)
	assert.Equal(t, 300.0, req.RefundAmount)
	assert.Equal(t, status.PaymentPending, f.store.Payments[7].Status)
}

// ======================================================
// Approve
// ======================================================

func TestApproveCancellation_RefundsExactlyOnce(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(50, 7, 500)

	f.gw.On("Refund", "mp-1", int64(50000)).
		Return(payment.RefundResult{RefundID: "re_1", Status: "approved"}, nil).
		Once()

	uc := f.approve(start.Add(-time.Hour))

	req, err := uc.Execute(context.Background(), 1, 50, "ok")
	require.NoError(t, err)
	assert.Equal(t, status.RequestApproved, req.Status)
	assert.Equal(t, "re_1", req.RefundTransactionID)
	assert.Equal(t, "ok", req.Notes)
	require.NotNil(t, req.ApprovedAt)

	assert.Equal(t, status.PaymentRefunded, f.store.Payments[7].Status)
	assert.NotNil(t, f.store.Payments[7].RefundedAt)
	assert.Equal(t, status.Cancelled, f.store.Appointments[7].Status)

	_, err = uc.Execute(context.Background(), 1, 50, "again")
	assert.True(t, httperr.IsBusiness(err, "already_processed"))

	f.gw.AssertNumberOfCalls(t, "Refund", 1)
	assert.Equal(t, "re_1", f.store.Requests[50].RefundTransactionID)
}

func TestApproveCancellation_ConcurrentApprovalsRefundOnce(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(50, 7, 500)

	f.gw.On("Refund", "mp-1", int64(50000)).
		Return(payment.RefundResult{RefundID: "re_1"}, nil)

	uc := f.approve(start.Add(-time.Hour))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), 1, 50, "ok")
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, httperr.IsBusiness(err, "already_processed"))
	}
	assert.Equal(t, 1, ok)
	f.gw.AssertNumberOfCalls(t, "Refund", 1)
}

func TestApproveCancellation_GatewayFailureLeavesRowsUnchanged(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(50, 7, 500)

	f.gw.On("Refund", "mp-1", int64(50000)).
		Return(payment.RefundResult{}, errors.New("gateway unavailable"))

	_, err := f.approve(start.Add(-time.Hour)).Execute(context.Background(), 1, 50, "ok")

	require.Error(t, err)
	assert.True(t, httperr.IsKind(err, httperr.KindExternal))
	assert.True(t, httperr.IsBusiness(err, "refund_failed"))

	assert.Equal(t, status.RequestPending, f.store.Requests[50].Status)
	assert.Equal(t, status.PaymentRefundPending, f.store.Payments[7].Status)
	assert.Equal(t, status.Scheduled, f.store.Appointments[7].Status)
	assert.Empty(t, f.outbox.Msgs)
}

func TestApproveCancellation_PendingPaymentSkipsGateway(t *testing.T) {
	f := newFixture()
	f.appointment(7, &models.Payment{Amount: 300, Method: status.MethodCard, TransactionID: "mp-2", Status: status.PaymentPending})
	f.pendingRequest(50, 7, 300)

	req, err := f.approve(start.Add(-time.Hour)).Execute(context.Background(), 1, 50, "")

	require.NoError(t, err)
	assert.Empty(t, req.RefundTransactionID)
	assert.Equal(t, status.PaymentRefunded, f.store.Payments[7].Status)
	assert.Equal(t, status.Cancelled, f.store.Appointments[7].Status)
	f.gw.AssertNumberOfCalls(t, "Refund", 0)
}

func TestApproveCancellation_OtherDoctor(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(50, 7, 500)

	_, err := f.approve(start).Execute(context.Background(), 3, 50, "")

	assert.True(t, httperr.IsKind(err, httperr.KindForbidden))
	assert.Equal(t, status.RequestPending, f.store.Requests[50].Status)
}

// ======================================================
// Reject
// ======================================================

func TestRejectCancellation_RestoresCompleted(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(50, 7, 500)

	req, err := NewRejectCancellation(f.store.CancellationRepo(), f.outbox, f.trail, nil).
		Execute(context.Background(), 1, 50, "please attend")

	require.NoError(t, err)
	assert.Equal(t, status.RequestRejected, req.Status)
	assert.Equal(t, "please attend", f.store.Requests[50].Notes)
	assert.Equal(t, status.PaymentCompleted, f.store.Payments[7].Status)
	assert.Equal(t, status.Scheduled, f.store.Appointments[7].Status)
	assert.Equal(t, []notification.Kind{notification.KindCancellationRejected}, f.outbox.Kinds())

	_, err = NewApproveCancellation(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil).
		Execute(context.Background(), 1, 50, "")
	assert.True(t, httperr.IsBusiness(err, "already_processed"))
}

// ======================================================
// Doctor-initiated
// ======================================================

func TestCancelByDoctor_CashPaymentGetsLocalReference(t *testing.T) {
	f := newFixture()
	f.appointment(7, &models.Payment{Amount: 400, Method: status.MethodCash, Status: status.PaymentCompleted})

	now := start.Add(-time.Hour)
	uc := NewCancelByDoctor(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil)
	uc.now = func() time.Time { return now }

	req, err := uc.Execute(context.Background(), 1, 7, "emergency")

	require.NoError(t, err)
	assert.Equal(t, status.RequestApproved, req.Status)
	assert.Equal(t, status.RoleDoctor, req.RequestedBy)
	assert.Equal(t, 400.0, req.RefundAmount)
	assert.Equal(t, fmt.Sprintf("refund-7-%d", now.UnixMilli()), req.RefundTransactionID)

	assert.Equal(t, status.PaymentRefunded, f.store.Payments[7].Status)
	assert.Equal(t, status.Cancelled, f.store.Appointments[7].Status)
	assert.Equal(t, []notification.Kind{notification.KindCancelledByDoctor}, f.outbox.Kinds())
	f.gw.AssertNumberOfCalls(t, "Refund", 0)

	_, err = uc.Execute(context.Background(), 1, 7, "again")
	assert.True(t, httperr.IsBusiness(err, "already_cancelled"))
}

func TestCancelByDoctor_CardPaymentRefundsThroughGateway(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(499.99, status.PaymentCompleted))

	f.gw.On("Refund", "mp-1", int64(49999)).
		Return(payment.RefundResult{RefundID: "re_7", Status: "approved"}, nil).
		Once()

	req, err := f.cancelByDoctor(start.Add(-time.Hour)).
		Execute(context.Background(), 1, 7, "emergency")

	require.NoError(t, err)
	assert.Equal(t, "re_7", req.RefundTransactionID)
	assert.Equal(t, "re_7", f.store.Requests[req.ID].RefundTransactionID)
	assert.Equal(t, status.PaymentRefunded, f.store.Payments[7].Status)
	assert.Equal(t, status.Cancelled, f.store.Appointments[7].Status)
	f.gw.AssertNumberOfCalls(t, "Refund", 1)
	f.gw.AssertExpectations(t)
}

func TestCancelByDoctor_GatewayFailureLeavesRowsUnchanged(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentCompleted))

	f.gw.On("Refund", "mp-1", int64(50000)).
		Return(payment.RefundResult{}, errors.New("gateway unavailable"))

	_, err := f.cancelByDoctor(start.Add(-time.Hour)).
		Execute(context.Background(), 1, 7, "emergency")

	assert.True(t, httperr.IsKind(err, httperr.KindExternal))
	assert.True(t, httperr.IsBusiness(err, "refund_failed"))

	assert.Empty(t, f.store.Requests)
	assert.Equal(t, status.PaymentCompleted, f.store.Payments[7].Status)
	assert.Nil(t, f.store.Payments[7].RefundedAt)
	assert.Equal(t, status.Scheduled, f.store.Appointments[7].Status)
	assert.Empty(t, f.outbox.Msgs)
}

func TestCancelByDoctor_ResolvesPendingPatientRequest(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.pendingRequest(70, 7, 500)

	f.gw.On("Refund", "mp-1", int64(50000)).
		Return(payment.RefundResult{RefundID: "re_70"}, nil).
		Once()

	now := start.Add(-time.Hour)
	req, err := f.cancelByDoctor(now).Execute(context.Background(), 1, 7, "clinic closed")

	require.NoError(t, err)
	assert.Equal(t, uint(70), req.ID)
	require.Len(t, f.store.Requests, 1)

	stored := f.store.Requests[70]
	assert.Equal(t, status.RequestApproved, stored.Status)
	assert.Equal(t, status.RolePatient, stored.RequestedBy)
	assert.Equal(t, "re_70", stored.RefundTransactionID)
	assert.Equal(t, "clinic closed", stored.Notes)
	require.NotNil(t, stored.ApprovedAt)
	assert.True(t, now.Equal(*stored.ApprovedAt))

	pending, err := NewListPendingCancellations(f.store.CancellationRepo()).Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.approve(now).Execute(context.Background(), 1, 70, "")
	assert.True(t, httperr.IsBusiness(err, "already_processed"))
	f.gw.AssertNumberOfCalls(t, "Refund", 1)
}

func TestCancelByDoctor_ForcesUncapturedPaymentRefunded(t *testing.T) {
	f := newFixture()
	f.appointment(7, &models.Payment{Amount: 400, Method: status.MethodUPI, Status: status.PaymentFailed})

	req, err := NewCancelByDoctor(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil).
		Execute(context.Background(), 1, 7, "clinic closed")

	require.NoError(t, err)
	assert.Empty(t, req.RefundTransactionID)
	assert.Equal(t, status.PaymentRefunded, f.store.Payments[7].Status)
}

func TestCancelByDoctor_WithoutPayment(t *testing.T) {
	f := newFixture()
	f.appointment(7, nil)

	req, err := NewCancelByDoctor(f.store.CancellationRepo(), f.refunder, cache.NoopSlotCache{}, f.outbox, f.trail, nil).
		Execute(context.Background(), 1, 7, "clinic closed")

	require.NoError(t, err)
	assert.Zero(t, req.RefundAmount)
	assert.Equal(t, status.Cancelled, f.store.Appointments[7].Status)
	assert.Empty(t, f.store.Payments)
}

// ======================================================
// Lists
// ======================================================

func TestListsSplitPendingAndResolved(t *testing.T) {
	f := newFixture()
	f.appointment(7, cardPayment(500, status.PaymentRefundPending))
	f.appointment(8, nil)
	f.pendingRequest(50, 7, 500)
	f.store.Requests[51] = models.CancellationRequest{ID: 51, AppointmentID: 8, Status: status.RequestRejected}

	pending, err := NewListPendingCancellations(f.store.CancellationRepo()).Execute(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(50), pending[0].ID)
	require.NotNil(t, pending[0].Appointment)
	assert.Equal(t, "Ana", pending[0].Appointment.Patient.Name)

	history, err := NewRefundHistory(f.store.CancellationRepo()).Execute(context.Background(), status.RolePatient, 2)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, uint(51), history[0].ID)

	none, err := NewRefundHistory(f.store.CancellationRepo()).Execute(context.Background(), status.RoleDoctor, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/infra/cache"
	"github.com/prescripto/prescripto-api/internal/infra/storage"
	"github.com/prescripto/prescripto-api/internal/logger"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/notification"
	"github.com/prescripto/prescripto-api/internal/testutil"
)

var (
	ist    = time.FixedZone("IST", 5*3600+30*60)
	monday = calendar.NewDate(2024, time.June, 3)
	sunday = calendar.NewDate(2024, time.June, 2)
)

func seed() *testutil.Store {
	s := testutil.NewStore()
	s.Doctors[1] = models.Doctor{ID: 1, Name: "Rao", Email: "rao@example.com", Fees: 500}
	s.Patients[2] = models.Patient{ID: 2, Name: "Ana", Email: "ana@example.com", Phone: "+919999999999"}
	s.Timings = []models.DoctorTiming{{
		ID: 1, DoctorID: 1, DayOfWeek: "Monday",
		StartTime: calendar.NewClock(9, 0), EndTime: calendar.NewClock(17, 0), SlotDuration: 30,
	}}
	return s
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, doctorID uint, date calendar.Date) (*domain.Availability, uint64, bool) {
	args := m.Called(doctorID, date)
	av, _ := args.Get(0).(*domain.Availability)
	return av, args.Get(1).(uint64), args.Bool(2)
}

func (m *mockCache) Set(ctx context.Context, doctorID uint, date calendar.Date, gen uint64, av *domain.Availability) {
	m.Called(doctorID, date, gen, av)
}

func (m *mockCache) Invalidate(ctx context.Context, doctorID uint, date calendar.Date) {
	m.Called(doctorID, date)
}

// ======================================================
// Availability
// ======================================================

func TestGetAvailability_FullDay(t *testing.T) {
	av, err := NewGetAvailability(seed().AppointmentRepo(), cache.NoopSlotCache{}).
		Execute(context.Background(), 1, monday)

	require.NoError(t, err)
	require.Len(t, av.Slots, 16)
	assert.Equal(t, "09:00", av.Slots[0].String())
	assert.Equal(t, "16:30", av.Slots[15].String())
	require.NotNil(t, av.Timing)
	assert.Equal(t, 30, av.Timing.SlotDuration)
}

func TestGetAvailability_ExcludesActiveBookings(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(10, 0), Status: status.Scheduled}
	s.Appointments[11] = models.Appointment{ID: 11, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(11, 0), Status: status.Completed}
	s.Appointments[12] = models.Appointment{ID: 12, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(12, 0), Status: status.Cancelled}

	av, err := NewGetAvailability(s.AppointmentRepo(), cache.NoopSlotCache{}).
		Execute(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Len(t, av.Slots, 14)
	assert.NotContains(t, av.Slots, calendar.NewClock(10, 0))
	assert.NotContains(t, av.Slots, calendar.NewClock(11, 0))
	assert.Contains(t, av.Slots, calendar.NewClock(12, 0))
}

func TestGetAvailability_NoTimingThatDay(t *testing.T) {
	av, err := NewGetAvailability(seed().AppointmentRepo(), cache.NoopSlotCache{}).
		Execute(context.Background(), 1, sunday)

	require.NoError(t, err)
	assert.NotNil(t, av.Slots)
	assert.Empty(t, av.Slots)
	assert.Nil(t, av.Timing)
}

func TestGetAvailability_LowestTimingIDWins(t *testing.T) {
	s := seed()
	s.Timings = append(s.Timings, models.DoctorTiming{
		ID: 9, DoctorID: 1, DayOfWeek: "Monday",
		StartTime: calendar.NewClock(14, 0), EndTime: calendar.NewClock(15, 0), SlotDuration: 15,
	})

	av, err := NewGetAvailability(s.AppointmentRepo(), cache.NoopSlotCache{}).
		Execute(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Len(t, av.Slots, 16)
}

func TestGetAvailability_UsesCache(t *testing.T) {
	cached := &domain.Availability{Slots: []calendar.Clock{calendar.NewClock(9, 0)}}

	c := &mockCache{}
	c.On("Get", uint(1), monday).Return(cached, uint64(0), true).Once()

	av, err := NewGetAvailability(seed().AppointmentRepo(), c).Execute(context.Background(), 1, monday)

	require.NoError(t, err)
	assert.Same(t, cached, av)
	c.AssertNumberOfCalls(t, "Set", 0)
}

func TestGetAvailability_FillsCacheOnMiss(t *testing.T) {
	c := &mockCache{}
	c.On("Get", uint(1), monday).Return(nil, uint64(4), false).Once()
	c.On("Set", uint(1), monday, uint64(4), mock.MatchedBy(func(av *domain.Availability) bool {
		return len(av.Slots) == 16
	})).Once()

	_, err := NewGetAvailability(seed().AppointmentRepo(), c).Execute(context.Background(), 1, monday)

	require.NoError(t, err)
	c.AssertExpectations(t)
}

// bookingDuringRead lets a booking commit between the availability read of
// booked times and the cache fill.
type bookingDuringRead struct {
	domain.Repository
	during func()
}

func (r *bookingDuringRead) ListBookedTimes(ctx context.Context, doctorID uint, date calendar.Date) ([]calendar.Clock, error) {
	times, err := r.Repository.ListBookedTimes(ctx, doctorID, date)
	if r.during != nil {
		r.during()
		r.during = nil
	}
	return times, err
}

func TestGetAvailability_ReadRacingBookingIsNotCached(t *testing.T) {
	s := seed()
	slots := testutil.NewSlotCache()
	booking := newBooking(s, &testutil.Outbox{}, slots)

	repo := &bookingDuringRead{Repository: s.AppointmentRepo(), during: func() {
		_, err := booking.Execute(context.Background(), BookInput{
			DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0),
		})
		require.NoError(t, err)
	}}
	uc := NewGetAvailability(repo, slots)

	stale, err := uc.Execute(context.Background(), 1, monday)
	require.NoError(t, err)
	assert.Len(t, stale.Slots, 16)
	assert.False(t, slots.Has(1, monday))

	fresh, err := uc.Execute(context.Background(), 1, monday)
	require.NoError(t, err)
	assert.Len(t, fresh.Slots, 15)
	assert.Equal(t, "09:30", fresh.Slots[0].String())
	assert.True(t, slots.Has(1, monday))
}

// ======================================================
// Booking
// ======================================================

func newBooking(s *testutil.Store, out *testutil.Outbox, c domain.SlotCache) *BookAppointment {
	uc := NewBookAppointment(s.AppointmentRepo(), c, out, &testutil.AuditTrail{}, nil, ist)
	uc.now = func() time.Time { return calendar.At(monday, calendar.NewClock(8, 0), ist) }
	return uc
}

func TestBookAppointment_Creates(t *testing.T) {
	s := seed()
	out := &testutil.Outbox{}
	c := &mockCache{}
	c.On("Invalidate", uint(1), monday).Once()

	ap, err := newBooking(s, out, c).Execute(context.Background(), BookInput{
		DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 30),
		ConsultationType: status.Video, Symptoms: "fever",
	})

	require.NoError(t, err)
	assert.NotZero(t, ap.ID)
	assert.Equal(t, status.Scheduled, s.Appointments[ap.ID].Status)
	assert.Equal(t, status.Video, s.Appointments[ap.ID].ConsultationType)
	c.AssertExpectations(t)

	require.Len(t, out.Msgs, 1)
	assert.Equal(t, notification.KindAppointmentConfirmation, out.Msgs[0].Kind)
	assert.Equal(t, "ana@example.com", out.Msgs[0].To)
	assert.Equal(t, "09:30", out.Msgs[0].Payload["time"])
}

func TestBookAppointment_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   BookInput
		code string
		kind httperr.Kind
	}{
		{"missing doctor", BookInput{PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0)}, "invalid_request", httperr.KindValidation},
		{"unknown consultation type", BookInput{DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), ConsultationType: "phone"}, "invalid_consultation_type", httperr.KindValidation},
		{"past", BookInput{DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(7, 30)}, "in_the_past", httperr.KindValidation},
		{"unknown doctor", BookInput{DoctorID: 5, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0)}, "doctor_not_found", httperr.KindNotFound},
		{"off the grid", BookInput{DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 15)}, "outside_working_hours", httperr.KindConflict},
		{"after hours", BookInput{DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(17, 0)}, "outside_working_hours", httperr.KindConflict},
		{"day off", BookInput{DoctorID: 1, PatientID: 2, Date: monday.AddDays(1), Time: calendar.NewClock(9, 0)}, "outside_working_hours", httperr.KindConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seed()
			out := &testutil.Outbox{}

			_, err := newBooking(s, out, cache.NoopSlotCache{}).Execute(context.Background(), tc.in)

			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
			assert.True(t, httperr.IsKind(err, tc.kind))
			assert.Empty(t, s.Appointments)
			assert.Empty(t, out.Msgs)
		})
	}
}

func TestBookAppointment_SlotTaken(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Scheduled}

	_, err := newBooking(s, &testutil.Outbox{}, cache.NoopSlotCache{}).Execute(context.Background(), BookInput{
		DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0),
	})

	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
	assert.Len(t, s.Appointments, 1)
}

func TestBookAppointment_CancelledSlotIsReusable(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Cancelled}

	_, err := newBooking(s, &testutil.Outbox{}, cache.NoopSlotCache{}).Execute(context.Background(), BookInput{
		DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0),
	})

	assert.NoError(t, err)
}

func TestBookAppointment_ConcurrentRequestsOneWinner(t *testing.T) {
	s := seed()
	uc := newBooking(s, &testutil.Outbox{}, cache.NoopSlotCache{})

	const callers = 8
	results := make(chan error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), BookInput{
				DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(11, 0),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	won := 0
	for err := range results {
		if err == nil {
			won++
			continue
		}
		assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
	}
	assert.Equal(t, 1, won)
	assert.Len(t, s.Appointments, 1)
}

// ======================================================
// Completion / status
// ======================================================

func TestCompleteAppointment_StoresDetailsAndSummary(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Scheduled}

	store := storage.NewMemoryStore()
	out := &testutil.Outbox{}

	uc := NewCompleteAppointment(s.AppointmentRepo(), store, out, &testutil.AuditTrail{}, logger.Discard(), ist)
	uc.now = func() time.Time { return calendar.At(monday, calendar.NewClock(9, 40), ist) }

	detail, err := uc.Execute(context.Background(), CompleteInput{
		DoctorID: 1, AppointmentID: 10,
		Medicines: "paracetamol 500mg", Notes: "rest", FollowUpDays: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, calendar.NewDate(2024, time.June, 10), detail.FollowUpDate)
	assert.Equal(t, status.Completed, s.Appointments[10].Status)
	assert.NotNil(t, s.Appointments[10].CompletedAt)

	saved := s.Consultations[10]
	assert.Equal(t, uint(2), saved.PatientID)
	assert.NotEmpty(t, saved.DocumentKey)
	assert.Contains(t, store.Objects, saved.DocumentKey)

	require.Len(t, out.Msgs, 1)
	assert.Equal(t, notification.KindConsultation, out.Msgs[0].Kind)
	require.NotNil(t, out.Msgs[0].Attachment)
	assert.Equal(t, "application/pdf", out.Msgs[0].Attachment.ContentType)
}

func TestCompleteAppointment_Guards(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Cancelled}

	uc := NewCompleteAppointment(s.AppointmentRepo(), storage.NewMemoryStore(), &testutil.Outbox{}, &testutil.AuditTrail{}, logger.Discard(), ist)

	_, err := uc.Execute(context.Background(), CompleteInput{DoctorID: 3, AppointmentID: 10})
	assert.True(t, httperr.IsBusiness(err, "not_owner"))

	_, err = uc.Execute(context.Background(), CompleteInput{DoctorID: 1, AppointmentID: 10})
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
	assert.Empty(t, s.Consultations)
}

func TestUpdateStatus_NoShowFreesSlot(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Scheduled}

	c := &mockCache{}
	c.On("Invalidate", uint(1), monday).Once()

	ap, err := NewUpdateStatus(s.AppointmentRepo(), c, &testutil.AuditTrail{}).
		Execute(context.Background(), 1, 10, status.NoShow)

	require.NoError(t, err)
	assert.Equal(t, status.NoShow, ap.Status)
	c.AssertExpectations(t)

	_, err = NewUpdateStatus(s.AppointmentRepo(), c, &testutil.AuditTrail{}).
		Execute(context.Background(), 1, 10, status.Cancelled)
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestListAppointments_Filters(t *testing.T) {
	s := seed()
	s.Appointments[10] = models.Appointment{ID: 10, DoctorID: 1, PatientID: 2, Date: monday, Time: calendar.NewClock(9, 0), Status: status.Scheduled}
	s.Appointments[11] = models.Appointment{ID: 11, DoctorID: 1, PatientID: 2, Date: monday.AddDays(7), Time: calendar.NewClock(9, 0), Status: status.Scheduled}

	apps, err := NewListAppointments(s.AppointmentRepo()).
		Execute(context.Background(), domain.ListFilter{DoctorID: 1, Date: &monday})

	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, uint(10), apps[0].ID)
	assert.Equal(t, "Ana", apps[0].Patient.Name)

	none, err := NewListAppointments(s.AppointmentRepo()).
		Execute(context.Background(), domain.ListFilter{PatientID: 99})
	require.NoError(t, err)
	assert.NotNil(t, none)
}

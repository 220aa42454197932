package appointment

import (
	"context"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/models"
)

type TimingWindow struct {
	StartTime    calendar.Clock `json:"startTime"`
	EndTime      calendar.Clock `json:"endTime"`
	SlotDuration int            `json:"slotDurationMinutes"`
}

// Availability is the bookable part of a doctor's day. Timing is nil when the
// doctor does not work on that weekday.
type Availability struct {
	Slots  []calendar.Clock `json:"slots"`
	Timing *TimingWindow    `json:"timing"`
}

func WindowOf(t *models.DoctorTiming) *TimingWindow {
	return &TimingWindow{
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		SlotDuration: t.SlotDuration,
	}
}

// SlotCache keeps computed availability per doctor and date. Get reports the
// key's generation even on a miss; Set stores only while that generation is
// current, so a read that raced an Invalidate never re-caches a booked slot.
type SlotCache interface {
	Get(ctx context.Context, doctorID uint, date calendar.Date) (*Availability, uint64, bool)
	Set(ctx context.Context, doctorID uint, date calendar.Date, gen uint64, av *Availability)
	Invalidate(ctx context.Context, doctorID uint, date calendar.Date)
}

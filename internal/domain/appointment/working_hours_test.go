package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

func clocks(ss ...string) []calendar.Clock {
	out := make([]calendar.Clock, 0, len(ss))
	for _, s := range ss {
		c, err := calendar.ParseClock(s)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func strs(cs []calendar.Clock) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

func TestCandidateSlots_NineToFive(t *testing.T) {
	w := &TimingWindow{
		StartTime:    calendar.NewClock(9, 0),
		EndTime:      calendar.NewClock(17, 0),
		SlotDuration: 30,
	}

	slots := CandidateSlots(w)

	assert.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "16:30", slots[len(slots)-1].String())
}

func TestCandidateSlots_EndIsExclusiveForPartialSlot(t *testing.T) {
	w := &TimingWindow{
		StartTime:    calendar.NewClock(9, 0),
		EndTime:      calendar.NewClock(10, 15),
		SlotDuration: 30,
	}

	assert.Equal(t, []string{"09:00", "09:30", "10:00"}, strs(CandidateSlots(w)))
}

func TestCandidateSlots_NilWindowAndDefaultDuration(t *testing.T) {
	assert.Empty(t, CandidateSlots(nil))

	w := &TimingWindow{StartTime: calendar.NewClock(9, 0), EndTime: calendar.NewClock(10, 0)}
	assert.Equal(t, []string{"09:00", "09:30"}, strs(CandidateSlots(w)))
}

func TestFreeSlots_RemovesExactMatchesOnly(t *testing.T) {
	candidates := clocks("09:00", "09:30", "10:00", "10:30")
	booked := clocks("09:30:45", "10:15")

	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, strs(FreeSlots(candidates, booked)))
}

func TestIsBookable(t *testing.T) {
	w := &TimingWindow{StartTime: calendar.NewClock(9, 0), EndTime: calendar.NewClock(10, 0), SlotDuration: 30}

	assert.True(t, IsBookable(w, calendar.NewClock(9, 30)))
	assert.False(t, IsBookable(w, calendar.NewClock(9, 15)))
	assert.False(t, IsBookable(w, calendar.NewClock(10, 0)))
}

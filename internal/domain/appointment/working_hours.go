package appointment

import (
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

const DefaultSlotDuration = 30

// CandidateSlots walks the window from start by the slot duration, stopping
// before end.
func CandidateSlots(w *TimingWindow) []calendar.Clock {
	if w == nil {
		return []calendar.Clock{}
	}

	step := w.SlotDuration
	if step <= 0 {
		step = DefaultSlotDuration
	}

	slots := []calendar.Clock{}
	for cur := w.StartTime; cur.Before(w.EndTime); cur = cur.Add(step) {
		slots = append(slots, cur)
	}
	return slots
}

// FreeSlots removes every candidate that exactly matches a booked time.
// Order of candidates is preserved.
func FreeSlots(candidates []calendar.Clock, booked []calendar.Clock) []calendar.Clock {
	taken := make(map[int]struct{}, len(booked))
	for _, b := range booked {
		taken[b.Minutes()] = struct{}{}
	}

	free := make([]calendar.Clock, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := taken[c.Minutes()]; ok {
			continue
		}
		free = append(free, c)
	}
	return free
}

// IsBookable reports whether t is one of the window's candidate slots.
func IsBookable(w *TimingWindow, t calendar.Clock) bool {
	for _, c := range CandidateSlots(w) {
		if c == t {
			return true
		}
	}
	return false
}

package appointment

import (
	"context"

	domain "github.com/prescripto/prescripto-api/internal/domain/appointment"
	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	"github.com/prescripto/prescripto-api/internal/httperr"
)

type GetAvailability struct {
	repo  domain.Repository
	cache domain.SlotCache
}

func NewGetAvailability(repo domain.Repository, cache domain.SlotCache) *GetAvailability {
	return &GetAvailability{repo: repo, cache: cache}
}

// Execute returns the free slots of a doctor on a civil date. A doctor
// without a timing row that weekday, or an unknown doctor, has no slots.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	doctorID uint,
	date calendar.Date,
) (*domain.Availability, error) {

	av, gen, ok := uc.cache.Get(ctx, doctorID, date)
	if ok {
		return av, nil
	}

	av, err := computeAvailability(ctx, uc.repo, doctorID, date)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(ctx, doctorID, date, gen, av)
	return av, nil
}

func computeAvailability(
	ctx context.Context,
	repo domain.Repository,
	doctorID uint,
	date calendar.Date,
) (*domain.Availability, error) {

	// --------------------------------------------------
	// 1. Timing for the weekday
	// --------------------------------------------------
	timing, err := repo.GetTiming(ctx, doctorID, date.Weekday().String())
	if err != nil {
		if httperr.IsKind(err, httperr.KindNotFound) {
			return &domain.Availability{Slots: []calendar.Clock{}}, nil
		}
		return nil, err
	}

	window := domain.WindowOf(timing)

	// --------------------------------------------------
	// 2. Candidates minus active bookings
	// --------------------------------------------------
	booked, err := repo.ListBookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		Slots:  domain.FreeSlots(domain.CandidateSlots(window), booked),
		Timing: window,
	}, nil
}

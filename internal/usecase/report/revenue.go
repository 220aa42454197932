package report

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	domain "github.com/prescripto/prescripto-api/internal/domain/report"
	"github.com/prescripto/prescripto-api/internal/domain/status"
)

type Totals struct {
	Appointments int     `json:"appointments"`
	Revenue      float64 `json:"revenue"`
	Refunds      float64 `json:"refunds"`
	NetRevenue   float64 `json:"netRevenue"`
	Completed    int     `json:"completed"`
	Cancelled    int     `json:"cancelled"`
}

type Summary struct {
	Total   Totals `json:"total"`
	Monthly Totals `json:"monthly"`
}

func (t *Totals) add(r domain.Row) {
	t.Appointments++

	switch r.AppointmentStatus {
	case status.Completed:
		t.Completed++
	case status.Cancelled:
		t.Cancelled++
	}

	if r.PaymentStatus == nil {
		return
	}
	switch *r.PaymentStatus {
	case status.PaymentCompleted:
		t.Revenue += r.Amount
	case status.PaymentRefunded:
		t.Refunds += r.Amount
	}
}

// Summarize folds a doctor's rows. The month is the calendar month of today,
// compared against the appointment date.
func Summarize(rows []domain.Row, today calendar.Date) Summary {
	var s Summary
	for _, r := range rows {
		s.Total.add(r)
		if r.Date.Year == today.Year && r.Date.Month == today.Month {
			s.Monthly.add(r)
		}
	}
	s.Total.NetRevenue = s.Total.Revenue - s.Total.Refunds
	s.Monthly.NetRevenue = s.Monthly.Revenue - s.Monthly.Refunds
	return s
}

type RevenueSummary struct {
	repo domain.Repository
	loc  *time.Location
	now  func() time.Time
}

func NewRevenueSummary(repo domain.Repository, loc *time.Location) *RevenueSummary {
	return &RevenueSummary{repo: repo, loc: loc, now: time.Now}
}

func (uc *RevenueSummary) Execute(ctx context.Context, doctorID uint) (*Summary, error) {
	rows, err := uc.repo.ListDoctorRows(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	s := Summarize(rows, calendar.Today(uc.now(), uc.loc))
	return &s, nil
}

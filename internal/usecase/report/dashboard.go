package report

import (
	"context"
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
	domain "github.com/prescripto/prescripto-api/internal/domain/report"
)

type Dashboard struct {
	TotalAppointments   int           `json:"totalAppointments"`
	TodayAppointments   int           `json:"todayAppointments"`
	MonthlyAppointments int           `json:"monthlyAppointments"`
	TotalRevenue        float64       `json:"totalRevenue"`
	RatingStats         domain.Rating `json:"ratingStats"`
}

type DashboardStats struct {
	repo domain.Repository
	loc  *time.Location
	now  func() time.Time
}

func NewDashboardStats(repo domain.Repository, loc *time.Location) *DashboardStats {
	return &DashboardStats{repo: repo, loc: loc, now: time.Now}
}

func (uc *DashboardStats) Execute(ctx context.Context, doctorID uint) (*Dashboard, error) {
	rows, err := uc.repo.ListDoctorRows(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	rating, err := uc.repo.RatingStats(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	today := calendar.Today(uc.now(), uc.loc)
	s := Summarize(rows, today)

	d := &Dashboard{
		TotalAppointments:   s.Total.Appointments,
		MonthlyAppointments: s.Monthly.Appointments,
		TotalRevenue:        s.Total.Revenue,
		RatingStats:         rating,
	}
	for _, r := range rows {
		if r.Date == today {
			d.TodayAppointments++
		}
	}
	return d, nil
}

package services

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

// DashboardWindowDays is the length of the default self-view window, today
// included.
const DashboardWindowDays = 7

// DashboardQuery is an optional inclusive range. It applies only when both
// ends are given.
type DashboardQuery struct {
	Start string `json:"inicio" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"fim" validate:"omitempty,datetime=2006-01-02"`
}

type DashboardService struct {
	store     store.Totals
	validator *ValidationHelper
	loc       *time.Location
	now       func() time.Time
}

// NewDashboardService computes "today" as a calendar date in loc.
func NewDashboardService(st store.Totals, v *ValidationHelper, loc *time.Location) *DashboardService {
	return &DashboardService{store: st, validator: v, loc: loc, now: time.Now}
}

// ForCourier returns the courier's totals in range, oldest first, each with
// the delivery counters of that day.
func (s *DashboardService) ForCourier(ctx context.Context, courierID int64, q DashboardQuery) ([]models.DashboardDay, error) {
	start, end, err := s.window(q)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.TotalsInRange(ctx, courierID, start, end)
	if err != nil {
		return nil, asPersistence("load totals", err)
	}
	metrics, err := s.store.DeliveryMetricsInRange(ctx, courierID, start, end)
	if err != nil {
		return nil, asPersistence("load delivery metrics", err)
	}

	days := make([]models.DashboardDay, 0, len(totals))
	for _, t := range totals {
		m := metrics[t.Date]
		days = append(days, models.DashboardDay{
			Date:              t.Date,
			Total:             t.Amount,
			Paid:              t.Paid,
			Deliveries:        m.Deliveries,
			HighFeeDeliveries: m.HighFeeDeliveries,
		})
	}
	return days, nil
}

func (s *DashboardService) window(q DashboardQuery) (civil.Date, civil.Date, error) {
	if err := s.validator.Validate(&q); err != nil {
		return civil.Date{}, civil.Date{}, err
	}

	if q.Start != "" && q.End != "" {
		start, err := parseDate("inicio", q.Start)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		end, err := parseDate("fim", q.End)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		if start.After(end) {
			return civil.Date{}, civil.Date{}, models.NewValidationError("inicio must not be after fim", nil)
		}
		return start, end, nil
	}

	today := civil.DateOf(s.now().In(s.loc))
	return today.AddDays(-(DashboardWindowDays - 1)), today, nil
}

package services

import (
	"context"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

type TotalQuery struct {
	CourierID *int64 `json:"motoqueiroId" validate:"omitnil,gt=0"`
	Date      string `json:"data" validate:"omitempty,datetime=2006-01-02"`
}

// TotalService is the admin view of totals. It never changes an amount.
type TotalService struct {
	store     store.Totals
	validator *ValidationHelper
	log       *logger.Logger
}

func NewTotalService(st store.Totals, v *ValidationHelper, log *logger.Logger) *TotalService {
	return &TotalService{store: st, validator: v, log: log}
}

// List returns totals newest first with the courier name attached.
func (s *TotalService) List(ctx context.Context, q TotalQuery) ([]models.Total, error) {
	if err := s.validator.Validate(&q); err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("data", q.Date)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.Totals(ctx, models.TotalFilter{CourierID: q.CourierID, Date: date})
	if err != nil {
		return nil, asPersistence("list totals", err)
	}
	return totals, nil
}

// MarkPaid sets pago on total id. Paying twice is not an error.
func (s *TotalService) MarkPaid(ctx context.Context, id int64) (*models.Total, error) {
	t, err := s.store.MarkTotalPaid(ctx, id)
	if err != nil {
		return nil, asPersistence("mark total paid", err)
	}
	s.log.Info("total marked as paid", "total_id", t.ID, "courier_id", t.CourierID, "date", t.Date.String())
	return t, nil
}

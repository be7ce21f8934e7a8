package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

// EntryInput is the payload of a new ledger entry. Amounts default to zero
// and are capped so a day's total always stays finite.
type EntryInput struct {
	CourierID         int64   `json:"MotoqueiroId" validate:"required,gt=0"`
	Date              string  `json:"data" validate:"required,datetime=2006-01-02"`
	BasePay           float64 `json:"diaria" validate:"gte=0,lte=1000000000"`
	Fee               float64 `json:"taxa" validate:"gte=0,lte=1000000000"`
	Deliveries        int     `json:"qtd_entregas" validate:"gte=0,lte=1000000"`
	HighFeeDeliveries int     `json:"qtd_taxas_acima_10" validate:"gte=0,lte=1000000"`
	Advances          float64 `json:"vales" validate:"gte=0,lte=1000000000"`
}

// EntryPatch changes the fields that are set and leaves the rest alone.
type EntryPatch struct {
	CourierID         *int64   `json:"MotoqueiroId" validate:"omitnil,gt=0"`
	Date              *string  `json:"data" validate:"omitnil,datetime=2006-01-02"`
	BasePay           *float64 `json:"diaria" validate:"omitnil,gte=0,lte=1000000000"`
	Fee               *float64 `json:"taxa" validate:"omitnil,gte=0,lte=1000000000"`
	Deliveries        *int     `json:"qtd_entregas" validate:"omitnil,gte=0,lte=1000000"`
	HighFeeDeliveries *int     `json:"qtd_taxas_acima_10" validate:"omitnil,gte=0,lte=1000000"`
	Advances          *float64 `json:"vales" validate:"omitnil,gte=0,lte=1000000000"`
}

func (p *EntryPatch) apply(e *models.Entry) error {
	if p.CourierID != nil {
		e.CourierID = *p.CourierID
	}
	if p.Date != nil {
		d, err := parseDate("data", *p.Date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	if p.BasePay != nil {
		e.BasePay = *p.BasePay
	}
	if p.Fee != nil {
		e.Fee = *p.Fee
	}
	if p.Deliveries != nil {
		e.Deliveries = *p.Deliveries
	}
	if p.HighFeeDeliveries != nil {
		e.HighFeeDeliveries = *p.HighFeeDeliveries
	}
	if p.Advances != nil {
		e.Advances = *p.Advances
	}
	return nil
}

// EntryQuery filters the entry listing. Empty fields are ignored.
type EntryQuery struct {
	CourierID *int64 `json:"motoqueiroId" validate:"omitnil,gt=0"`
	Date      string `json:"data" validate:"omitempty,datetime=2006-01-02"`
	Start     string `json:"inicio" validate:"omitempty,datetime=2006-01-02"`
	End       string `json:"fim" validate:"omitempty,datetime=2006-01-02"`
}

// LedgerService is the only writer of entries. Every mutation locks the
// affected keys, applies the change and reconciles those keys in one
// transaction.
type LedgerService struct {
	store      store.Ledger
	reconciler *Reconciler
	validator  *ValidationHelper
	log        *logger.Logger
}

func NewLedgerService(st store.Ledger, reconciler *Reconciler, v *ValidationHelper, log *logger.Logger) *LedgerService {
	return &LedgerService{
		store:      st,
		reconciler: reconciler,
		validator:  v,
		log:        log,
	}
}

func (s *LedgerService) CreateEntry(ctx context.Context, in EntryInput) (*models.Entry, error) {
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}
	date, err := parseDate("data", in.Date)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		CourierID:         in.CourierID,
		Date:              date,
		BasePay:           in.BasePay,
		Fee:               in.Fee,
		Deliveries:        in.Deliveries,
		HighFeeDeliveries: in.HighFeeDeliveries,
		Advances:          in.Advances,
	}

	err = s.store.WithTx(ctx, func(tx store.LedgerTx) error {
		if err := tx.LockKey(ctx, entry.Key()); err != nil {
			return asPersistence("lock key", err)
		}
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return asPersistence("insert entry", err)
		}
		return s.reconcile(ctx, tx, entry.Key())
	})
	if err != nil {
		return nil, asPersistence("create entry", err)
	}

	s.log.Info("entry created", "entry_id", entry.ID, "courier_id", entry.CourierID, "date", entry.Date.String())
	return entry, nil
}

// UpdateEntry applies patch to entry id. When the date or the courier changes
// both the old and the new key are reconciled.
func (s *LedgerService) UpdateEntry(ctx context.Context, id int64, patch EntryPatch) (*models.Entry, error) {
	if err := s.validator.Validate(&patch); err != nil {
		return nil, err
	}

	var updated models.Entry
	err := s.store.WithTx(ctx, func(tx store.LedgerTx) error {
		current, err := tx.EntryForUpdate(ctx, id)
		if err != nil {
			return asPersistence("load entry", err)
		}

		updated = *current
		if err := patch.apply(&updated); err != nil {
			return err
		}

		keys := affectedKeys(current.Key(), updated.Key())
		for _, key := range keys {
			if err := tx.LockKey(ctx, key); err != nil {
				return asPersistence("lock key", err)
			}
		}

		if err := tx.UpdateEntry(ctx, &updated); err != nil {
			return asPersistence("update entry", err)
		}
		return s.reconcile(ctx, tx, keys...)
	})
	if err != nil {
		return nil, asPersistence("update entry", err)
	}

	s.log.Info("entry updated", "entry_id", id, "courier_id", updated.CourierID, "date", updated.Date.String())
	return &updated, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(tx store.LedgerTx) error {
		current, err := tx.EntryForUpdate(ctx, id)
		if err != nil {
			return asPersistence("load entry", err)
		}
		if err := tx.LockKey(ctx, current.Key()); err != nil {
			return asPersistence("lock key", err)
		}
		if err := tx.DeleteEntry(ctx, id); err != nil {
			return asPersistence("delete entry", err)
		}
		return s.reconcile(ctx, tx, current.Key())
	})
	if err != nil {
		return asPersistence("delete entry", err)
	}

	s.log.Info("entry deleted", "entry_id", id)
	return nil
}

func (s *LedgerService) GetEntry(ctx context.Context, id int64) (*models.Entry, error) {
	e, err := s.store.Entry(ctx, id)
	if err != nil {
		return nil, asPersistence("get entry", err)
	}
	return e, nil
}

func (s *LedgerService) ListEntries(ctx context.Context, q EntryQuery) ([]models.Entry, error) {
	if err := s.validator.Validate(&q); err != nil {
		return nil, err
	}

	filter := models.EntryFilter{CourierID: q.CourierID}
	var err error
	if filter.Date, err = parseOptionalDate("data", q.Date); err != nil {
		return nil, err
	}
	if filter.Start, err = parseOptionalDate("inicio", q.Start); err != nil {
		return nil, err
	}
	if filter.End, err = parseOptionalDate("fim", q.End); err != nil {
		return nil, err
	}

	entries, err := s.store.Entries(ctx, filter)
	if err != nil {
		return nil, asPersistence("list entries", err)
	}
	return entries, nil
}

func (s *LedgerService) reconcile(ctx context.Context, tx store.LedgerTx, keys ...models.TotalKey) error {
	for _, key := range keys {
		action, err := s.reconciler.Reconcile(ctx, tx, key)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w: %w", key, models.ErrReconciliation, err)
		}
		s.log.Debug("total reconciled", "key", key.String(), "action", string(action))
	}
	return nil
}

// affectedKeys returns the distinct keys in lock order.
func affectedKeys(keys ...models.TotalKey) []models.TotalKey {
	out := make([]models.TotalKey, 0, len(keys))
	seen := make(map[models.TotalKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

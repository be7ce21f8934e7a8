// Package memory is an in-process implementation of the store contracts. It
// backs DATABASE_DRIVER=memory and the service tests. Transactions are
// serialized by one mutex and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

type state struct {
	lastCourierID int64
	lastAdminID   int64
	lastEntryID   int64
	lastTotalID   int64

	couriers map[int64]models.Courier
	admins   map[int64]models.Admin
	entries  map[int64]models.Entry
	totals   map[int64]models.Total
}

func newState() *state {
	return &state{
		couriers: map[int64]models.Courier{},
		admins:   map[int64]models.Admin{},
		entries:  map[int64]models.Entry{},
		totals:   map[int64]models.Total{},
	}
}

func (st *state) clone() *state {
	c := *st
	c.couriers = make(map[int64]models.Courier, len(st.couriers))
	for k, v := range st.couriers {
		c.couriers[k] = v
	}
	c.admins = make(map[int64]models.Admin, len(st.admins))
	for k, v := range st.admins {
		c.admins[k] = v
	}
	c.entries = make(map[int64]models.Entry, len(st.entries))
	for k, v := range st.entries {
		c.entries[k] = v
	}
	c.totals = make(map[int64]models.Total, len(st.totals))
	for k, v := range st.totals {
		c.totals[k] = v
	}
	return &c
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	err := fn(&tx{st: s.state, now: s.now})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) LockKey(ctx context.Context, key models.TotalKey) error {
	return ctx.Err()
}

func (t *tx) InsertEntry(ctx context.Context, e *models.Entry) error {
	if _, ok := t.st.couriers[e.CourierID]; !ok {
		return models.NewValidationError(fmt.Sprintf("Motoqueiro %d does not exist", e.CourierID), nil)
	}
	t.st.lastEntryID++
	now := t.now()
	e.ID = t.st.lastEntryID
	e.CreatedAt, e.UpdatedAt = now, now
	t.st.entries[e.ID] = *e
	return nil
}

func (t *tx) EntryForUpdate(ctx context.Context, id int64) (*models.Entry, error) {
	e, ok := t.st.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", id, models.ErrNotFound)
	}
	return &e, nil
}

func (t *tx) UpdateEntry(ctx context.Context, e *models.Entry) error {
	if _, ok := t.st.entries[e.ID]; !ok {
		return fmt.Errorf("entry %d: %w", e.ID, models.ErrNotFound)
	}
	if _, ok := t.st.couriers[e.CourierID]; !ok {
		return models.NewValidationError(fmt.Sprintf("Motoqueiro %d does not exist", e.CourierID), nil)
	}
	e.UpdatedAt = t.now()
	t.st.entries[e.ID] = *e
	return nil
}

func (t *tx) DeleteEntry(ctx context.Context, id int64) error {
	if _, ok := t.st.entries[id]; !ok {
		return fmt.Errorf("entry %d: %w", id, models.ErrNotFound)
	}
	delete(t.st.entries, id)
	return nil
}

func (t *tx) EntriesByKey(ctx context.Context, key models.TotalKey) ([]models.Entry, error) {
	var out []models.Entry
	for _, e := range t.st.entries {
		if e.Key() == key {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *tx) TotalByKey(ctx context.Context, key models.TotalKey) (*models.Total, error) {
	for _, total := range t.st.totals {
		if total.Key() == key {
			return &total, nil
		}
	}
	return nil, fmt.Errorf("total %s: %w", key, models.ErrNotFound)
}

func (t *tx) InsertTotal(ctx context.Context, total *models.Total) error {
	for _, existing := range t.st.totals {
		if existing.Key() == total.Key() {
			return fmt.Errorf("total %s: %w", total.Key(), models.ErrConflict)
		}
	}
	t.st.lastTotalID++
	now := t.now()
	total.ID = t.st.lastTotalID
	total.CreatedAt, total.UpdatedAt = now, now
	t.st.totals[total.ID] = *total
	return nil
}

func (t *tx) UpdateTotalAmount(ctx context.Context, id int64, amount float64) error {
	total, ok := t.st.totals[id]
	if !ok {
		return fmt.Errorf("total %d: %w", id, models.ErrNotFound)
	}
	total.Amount = amount
	total.UpdatedAt = t.now()
	t.st.totals[id] = total
	return nil
}

func (t *tx) DeleteTotal(ctx context.Context, id int64) error {
	if _, ok := t.st.totals[id]; !ok {
		return fmt.Errorf("total %d: %w", id, models.ErrNotFound)
	}
	delete(t.st.totals, id)
	return nil
}

func (s *Store) Entry(ctx context.Context, id int64) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.state.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", id, models.ErrNotFound)
	}
	return &e, nil
}

func (s *Store) Entries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Entry{}
	for _, e := range s.state.entries {
		if filter.CourierID != nil && e.CourierID != *filter.CourierID {
			continue
		}
		if filter.Date != nil && e.Date != *filter.Date {
			continue
		}
		if !inRange(e.Date, filter.Start, filter.End) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) Totals(ctx context.Context, filter models.TotalFilter) ([]models.Total, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Total{}
	for _, t := range s.state.totals {
		if filter.CourierID != nil && t.CourierID != *filter.CourierID {
			continue
		}
		if filter.Date != nil && t.Date != *filter.Date {
			continue
		}
		if c, ok := s.state.couriers[t.CourierID]; ok {
			t.Courier = &models.CourierRef{ID: c.ID, Name: c.Name}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MarkTotalPaid(ctx context.Context, id int64) (*models.Total, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.state.totals[id]
	if !ok {
		return nil, fmt.Errorf("total %d: %w", id, models.ErrNotFound)
	}
	t.Paid = true
	t.UpdatedAt = s.now()
	s.state.totals[id] = t
	return &t, nil
}

func (s *Store) TotalsInRange(ctx context.Context, courierID int64, start, end civil.Date) ([]models.Total, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Total{}
	for _, t := range s.state.totals {
		if t.CourierID == courierID && inRange(t.Date, &start, &end) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) DeliveryMetricsInRange(ctx context.Context, courierID int64, start, end civil.Date) (map[civil.Date]models.DeliveryMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[civil.Date]models.DeliveryMetrics{}
	for _, e := range s.state.entries {
		if e.CourierID != courierID || !inRange(e.Date, &start, &end) {
			continue
		}
		m := out[e.Date]
		m.Deliveries += e.Deliveries
		m.HighFeeDeliveries += e.HighFeeDeliveries
		out[e.Date] = m
	}
	return out, nil
}

func (s *Store) CreateCourier(ctx context.Context, c *models.Courier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.couriers {
		if existing.Login == c.Login {
			return fmt.Errorf("login %q: %w", c.Login, models.ErrConflict)
		}
	}
	s.state.lastCourierID++
	now := s.now()
	c.ID = s.state.lastCourierID
	c.CreatedAt, c.UpdatedAt = now, now
	s.state.couriers[c.ID] = *c
	return nil
}

func (s *Store) Couriers(ctx context.Context) ([]models.Courier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Courier, 0, len(s.state.couriers))
	for _, c := range s.state.couriers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CourierByLogin(ctx context.Context, login string) (*models.Courier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.state.couriers {
		if c.Login == login {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("courier %q: %w", login, models.ErrNotFound)
}

// DeleteCourier removes the courier with its entries and totals.
func (s *Store) DeleteCourier(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.couriers[id]; !ok {
		return fmt.Errorf("courier %d: %w", id, models.ErrNotFound)
	}
	delete(s.state.couriers, id)
	for entryID, e := range s.state.entries {
		if e.CourierID == id {
			delete(s.state.entries, entryID)
		}
	}
	for totalID, t := range s.state.totals {
		if t.CourierID == id {
			delete(s.state.totals, totalID)
		}
	}
	return nil
}

func (s *Store) AdminByLogin(ctx context.Context, login string) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.state.admins {
		if a.Login == login {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("admin %q: %w", login, models.ErrNotFound)
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.admins {
		if existing.Login == a.Login {
			return fmt.Errorf("admin %q: %w", a.Login, models.ErrConflict)
		}
	}
	s.state.lastAdminID++
	a.ID = s.state.lastAdminID
	a.CreatedAt = s.now()
	s.state.admins[a.ID] = *a
	return nil
}

func inRange(d civil.Date, start, end *civil.Date) bool {
	if start != nil && d.Before(*start) {
		return false
	}
	if end != nil && d.After(*end) {
		return false
	}
	return true
}

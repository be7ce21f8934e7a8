// Package store declares the persistence contracts the services depend on.
// internal/database implements them on Postgres, internal/store/memory in
// process memory.
//
// Lookups of a single row return an error wrapping models.ErrNotFound when the
// row does not exist.
package store

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/motoqueiros/backend/internal/models"
)

// LedgerTx is the unit of work used by the ledger write path. Everything done
// through one LedgerTx commits or rolls back together.
type LedgerTx interface {
	// LockKey serializes writers of one (courier, date) key until the
	// transaction ends.
	LockKey(ctx context.Context, key models.TotalKey) error

	InsertEntry(ctx context.Context, e *models.Entry) error
	EntryForUpdate(ctx context.Context, id int64) (*models.Entry, error)
	UpdateEntry(ctx context.Context, e *models.Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	EntriesByKey(ctx context.Context, key models.TotalKey) ([]models.Entry, error)

	TotalByKey(ctx context.Context, key models.TotalKey) (*models.Total, error)
	InsertTotal(ctx context.Context, t *models.Total) error
	UpdateTotalAmount(ctx context.Context, id int64, amount float64) error
	DeleteTotal(ctx context.Context, id int64) error
}

type Ledger interface {
	// WithTx runs fn in one transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx LedgerTx) error) error
	Entry(ctx context.Context, id int64) (*models.Entry, error)
	Entries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error)
}

type Totals interface {
	Totals(ctx context.Context, filter models.TotalFilter) ([]models.Total, error)
	MarkTotalPaid(ctx context.Context, id int64) (*models.Total, error)
	TotalsInRange(ctx context.Context, courierID int64, start, end civil.Date) ([]models.Total, error)
	DeliveryMetricsInRange(ctx context.Context, courierID int64, start, end civil.Date) (map[civil.Date]models.DeliveryMetrics, error)
}

type Couriers interface {
	// CreateCourier returns an error wrapping models.ErrConflict on a taken login.
	CreateCourier(ctx context.Context, c *models.Courier) error
	Couriers(ctx context.Context) ([]models.Courier, error)
	CourierByLogin(ctx context.Context, login string) (*models.Courier, error)
	DeleteCourier(ctx context.Context, id int64) error
}

type Admins interface {
	AdminByLogin(ctx context.Context, login string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, a *models.Admin) error
}

// Store is everything the service layer needs.
type Store interface {
	Ledger
	Totals
	Couriers
	Admins
}

package services

import (
	"context"

	"github.com/motoqueiros/backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) LockKey(ctx context.Context, key models.TotalKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockLedgerTx) InsertEntry(ctx context.Context, e *models.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLedgerTx) EntryForUpdate(ctx context.Context, id int64) (*models.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entry), args.Error(1)
}

func (m *MockLedgerTx) UpdateEntry(ctx context.Context, e *models.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLedgerTx) DeleteEntry(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLedgerTx) EntriesByKey(ctx context.Context, key models.TotalKey) ([]models.Entry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Entry), args.Error(1)
}

func (m *MockLedgerTx) TotalByKey(ctx context.Context, key models.TotalKey) (*models.Total, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Total), args.Error(1)
}

func (m *MockLedgerTx) InsertTotal(ctx context.Context, t *models.Total) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockLedgerTx) UpdateTotalAmount(ctx context.Context, id int64, amount float64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockLedgerTx) DeleteTotal(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

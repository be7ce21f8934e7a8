package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

// ReconcileAction reports what Reconcile did to the stored total.
type ReconcileAction string

const (
	ActionCreated   ReconcileAction = "created"
	ActionUpdated   ReconcileAction = "updated"
	ActionDeleted   ReconcileAction = "deleted"
	ActionUnchanged ReconcileAction = "unchanged"
	ActionAbsent    ReconcileAction = "absent"
)

// Reconciler recomputes the derived total of one (courier, date) key from its
// entries. It only ever writes the amount; the paid flag belongs to the admin.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Sum is the net amount of the given entries, accumulated in order.
func Sum(entries []models.Entry) float64 {
	var total float64
	for i := range entries {
		total += entries[i].Net()
	}
	return total
}

// Reconcile brings the total of key in line with its entries. The caller must
// hold the key lock inside tx.
func (r *Reconciler) Reconcile(ctx context.Context, tx store.LedgerTx, key models.TotalKey) (ReconcileAction, error) {
	entries, err := tx.EntriesByKey(ctx, key)
	if err != nil {
		return "", err
	}

	existing, err := tx.TotalByKey(ctx, key)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	if len(entries) == 0 {
		if existing == nil {
			return ActionAbsent, nil
		}
		if err := tx.DeleteTotal(ctx, existing.ID); err != nil {
			return "", err
		}
		return ActionDeleted, nil
	}

	amount := Sum(entries)
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return "", fmt.Errorf("total %s is not finite: %w", key, models.ErrReconciliation)
	}

	if existing == nil {
		total := &models.Total{CourierID: key.CourierID, Date: key.Date, Amount: amount}
		if err := tx.InsertTotal(ctx, total); err != nil {
			return "", err
		}
		return ActionCreated, nil
	}

	if existing.Amount == amount {
		return ActionUnchanged, nil
	}

	if err := tx.UpdateTotalAmount(ctx, existing.ID, amount); err != nil {
		return "", err
	}
	return ActionUpdated, nil
}

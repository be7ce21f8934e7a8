package access

import (
	"context"
	"time"

	"github.com/motoqueiros/backend/internal/models"
)

// Kind is the role carried by a token.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindCourier Kind = "motoqueiro"
)

func (k Kind) Valid() bool {
	return k == KindAdmin || k == KindCourier
}

// Principal is the authenticated caller. ID refers to the admins table for
// KindAdmin and to the motoqueiros table for KindCourier.
type Principal struct {
	ID        int64
	Kind      Kind
	TokenID   string
	ExpiresAt time.Time
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// Operation names a protected action.
type Operation string

const (
	OpCreateCourier Operation = "courier.create"
	OpListCouriers  Operation = "courier.list"
	OpDeleteCourier Operation = "courier.delete"
	OpCreateEntry   Operation = "entry.create"
	OpUpdateEntry   Operation = "entry.update"
	OpDeleteEntry   Operation = "entry.delete"
	OpGetEntry      Operation = "entry.get"
	OpListEntries   Operation = "entry.list"
	OpListTotals    Operation = "total.list"
	OpPayTotal      Operation = "total.pay"
	OpDashboard     Operation = "dashboard.self"
	OpLogout        Operation = "auth.logout"
)

// Rule decides whether a principal may run an operation.
type Rule func(p Principal) bool

// AnyOf admits principals of the listed kinds.
func AnyOf(kinds ...Kind) Rule {
	return func(p Principal) bool {
		for _, k := range kinds {
			if p.Kind == k {
				return true
			}
		}
		return false
	}
}

// Authenticated admits every valid principal.
func Authenticated() Rule {
	return func(p Principal) bool {
		return p.Kind.Valid() && p.ID > 0
	}
}

// Policy maps operations to rules. Operations missing from the map are denied.
type Policy map[Operation]Rule

func DefaultPolicy() Policy {
	admin := AnyOf(KindAdmin)
	return Policy{
		OpCreateCourier: admin,
		OpListCouriers:  admin,
		OpDeleteCourier: admin,
		OpCreateEntry:   admin,
		OpUpdateEntry:   admin,
		OpDeleteEntry:   admin,
		OpGetEntry:      admin,
		OpListEntries:   admin,
		OpListTotals:    admin,
		OpPayTotal:      admin,
		OpDashboard:     AnyOf(KindCourier),
		OpLogout:        Authenticated(),
	}
}

// Check returns models.ErrUnauthorized without a principal and
// models.ErrForbidden when the operation's rule rejects it.
func (p Policy) Check(op Operation, principal *Principal) error {
	if principal == nil {
		return models.ErrUnauthorized
	}
	rule, ok := p[op]
	if !ok || !rule(*principal) {
		return models.ErrForbidden
	}
	return nil
}

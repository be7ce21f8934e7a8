package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store implements store.Store on Postgres.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sql.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&ledgerTx{q: tx}); err != nil {
		s.rollback(tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.Error("rollback failed", "error", err)
	}
}

type ledgerTx struct {
	q querier
}

func (t *ledgerTx) LockKey(ctx context.Context, key models.TotalKey) error {
	_, err := t.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "total:"+key.String())
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	return nil
}

const entryColumns = `id, motoqueiro_id, data::text, diaria, taxa, qtd_entregas, qtd_taxas_acima_10, vales, created_at, updated_at`

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e    models.Entry
		date string
	)
	err := row.Scan(&e.ID, &e.CourierID, &date, &e.BasePay, &e.Fee,
		&e.Deliveries, &e.HighFeeDeliveries, &e.Advances, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Date, err = civil.ParseDate(date); err != nil {
		return nil, fmt.Errorf("parse entry date %q: %w", date, err)
	}
	return &e, nil
}

func (t *ledgerTx) InsertEntry(ctx context.Context, e *models.Entry) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO lancamentos (motoqueiro_id, data, diaria, taxa, qtd_entregas, qtd_taxas_acima_10, vales)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		e.CourierID, e.Date.String(), e.BasePay, e.Fee, e.Deliveries, e.HighFeeDeliveries, e.Advances,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return classify(err, e.CourierID)
	}
	return nil
}

func (t *ledgerTx) EntryForUpdate(ctx context.Context, id int64) (*models.Entry, error) {
	row := t.q.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM lancamentos WHERE id = $1 FOR UPDATE`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, models.ErrNotFound)
	}
	return e, err
}

func (t *ledgerTx) UpdateEntry(ctx context.Context, e *models.Entry) error {
	err := t.q.QueryRowContext(ctx, `
		UPDATE lancamentos
		SET motoqueiro_id = $1, data = $2, diaria = $3, taxa = $4, qtd_entregas = $5,
			qtd_taxas_acima_10 = $6, vales = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at`,
		e.CourierID, e.Date.String(), e.BasePay, e.Fee, e.Deliveries, e.HighFeeDeliveries, e.Advances, e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("entry %d: %w", e.ID, models.ErrNotFound)
	}
	if err != nil {
		return classify(err, e.CourierID)
	}
	return nil
}

func (t *ledgerTx) DeleteEntry(ctx context.Context, id int64) error {
	return execOne(ctx, t.q, fmt.Sprintf("entry %d", id), `DELETE FROM lancamentos WHERE id = $1`, id)
}

func (t *ledgerTx) EntriesByKey(ctx context.Context, key models.TotalKey) ([]models.Entry, error) {
	return queryEntries(ctx, t.q,
		`SELECT `+entryColumns+` FROM lancamentos WHERE motoqueiro_id = $1 AND data = $2 ORDER BY id`,
		key.CourierID, key.Date.String())
}

const totalColumns = `id, motoqueiro_id, data::text, total, pago, created_at, updated_at`

func scanTotal(row rowScanner, extra ...interface{}) (*models.Total, error) {
	var (
		t    models.Total
		date string
	)
	dest := append([]interface{}{&t.ID, &t.CourierID, &date, &t.Amount, &t.Paid, &t.CreatedAt, &t.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d, err := civil.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse total date %q: %w", date, err)
	}
	t.Date = d
	return &t, nil
}

func (t *ledgerTx) TotalByKey(ctx context.Context, key models.TotalKey) (*models.Total, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT `+totalColumns+` FROM totais WHERE motoqueiro_id = $1 AND data = $2`,
		key.CourierID, key.Date.String())
	total, err := scanTotal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("total %s: %w", key, models.ErrNotFound)
	}
	return total, err
}

func (t *ledgerTx) InsertTotal(ctx context.Context, total *models.Total) error {
	err := t.q.QueryRowContext(ctx, `
		INSERT INTO totais (motoqueiro_id, data, total, pago)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		total.CourierID, total.Date.String(), total.Amount, total.Paid,
	).Scan(&total.ID, &total.CreatedAt, &total.UpdatedAt)
	if err != nil {
		return classify(err, total.CourierID)
	}
	return nil
}

func (t *ledgerTx) UpdateTotalAmount(ctx context.Context, id int64, amount float64) error {
	return execOne(ctx, t.q, fmt.Sprintf("total %d", id),
		`UPDATE totais SET total = $1, updated_at = now() WHERE id = $2`, amount, id)
}

func (t *ledgerTx) DeleteTotal(ctx context.Context, id int64) error {
	return execOne(ctx, t.q, fmt.Sprintf("total %d", id), `DELETE FROM totais WHERE id = $1`, id)
}

func (s *Store) Entry(ctx context.Context, id int64) (*models.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM lancamentos WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %d: %w", id, models.ErrNotFound)
	}
	return e, err
}

func (s *Store) Entries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	var w conditions
	if filter.CourierID != nil {
		w.add("motoqueiro_id = $%d", *filter.CourierID)
	}
	if filter.Date != nil {
		w.add("data = $%d", filter.Date.String())
	}
	if filter.Start != nil {
		w.add("data >= $%d", filter.Start.String())
	}
	if filter.End != nil {
		w.add("data <= $%d", filter.End.String())
	}
	return queryEntries(ctx, s.db,
		`SELECT `+entryColumns+` FROM lancamentos`+w.where()+` ORDER BY data, id`, w.args...)
}

func (s *Store) Totals(ctx context.Context, filter models.TotalFilter) ([]models.Total, error) {
	var w conditions
	if filter.CourierID != nil {
		w.add("t.motoqueiro_id = $%d", *filter.CourierID)
	}
	if filter.Date != nil {
		w.add("t.data = $%d", filter.Date.String())
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.motoqueiro_id, t.data::text, t.total, t.pago, t.created_at, t.updated_at, m.nome
		FROM totais t
		JOIN motoqueiros m ON m.id = t.motoqueiro_id`+w.where()+`
		ORDER BY t.data DESC, t.id DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.Total{}
	for rows.Next() {
		var name string
		t, err := scanTotal(rows, &name)
		if err != nil {
			return nil, err
		}
		t.Courier = &models.CourierRef{ID: t.CourierID, Name: name}
		totals = append(totals, *t)
	}
	return totals, rows.Err()
}

func (s *Store) MarkTotalPaid(ctx context.Context, id int64) (*models.Total, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE totais SET pago = true, updated_at = now() WHERE id = $1 RETURNING `+totalColumns, id)
	t, err := scanTotal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("total %d: %w", id, models.ErrNotFound)
	}
	return t, err
}

func (s *Store) TotalsInRange(ctx context.Context, courierID int64, start, end civil.Date) ([]models.Total, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+totalColumns+`
		FROM totais
		WHERE motoqueiro_id = $1 AND data BETWEEN $2 AND $3
		ORDER BY data ASC`,
		courierID, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []models.Total{}
	for rows.Next() {
		t, err := scanTotal(rows)
		if err != nil {
			return nil, err
		}
		totals = append(totals, *t)
	}
	return totals, rows.Err()
}

func (s *Store) DeliveryMetricsInRange(ctx context.Context, courierID int64, start, end civil.Date) (map[civil.Date]models.DeliveryMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data::text, COALESCE(SUM(qtd_entregas), 0), COALESCE(SUM(qtd_taxas_acima_10), 0)
		FROM lancamentos
		WHERE motoqueiro_id = $1 AND data BETWEEN $2 AND $3
		GROUP BY data`,
		courierID, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics := map[civil.Date]models.DeliveryMetrics{}
	for rows.Next() {
		var (
			date string
			m    models.DeliveryMetrics
		)
		if err := rows.Scan(&date, &m.Deliveries, &m.HighFeeDeliveries); err != nil {
			return nil, err
		}
		d, err := civil.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse metrics date %q: %w", date, err)
		}
		metrics[d] = m
	}
	return metrics, rows.Err()
}

const courierColumns = `id, nome, telefone, login, senha, created_at, updated_at`

func scanCourier(row rowScanner) (*models.Courier, error) {
	var (
		c     models.Courier
		phone sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &phone, &c.Login, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	return &c, nil
}

func (s *Store) CreateCourier(ctx context.Context, c *models.Courier) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO motoqueiros (nome, telefone, login, senha)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Login, c.PasswordHash,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return classify(err, 0)
	}
	return nil
}

func (s *Store) Couriers(ctx context.Context) ([]models.Courier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+courierColumns+` FROM motoqueiros ORDER BY nome, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	couriers := []models.Courier{}
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, *c)
	}
	return couriers, rows.Err()
}

func (s *Store) CourierByLogin(ctx context.Context, login string) (*models.Courier, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courierColumns+` FROM motoqueiros WHERE login = $1`, login)
	c, err := scanCourier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("courier %q: %w", login, models.ErrNotFound)
	}
	return c, err
}

// DeleteCourier relies on ON DELETE CASCADE to drop entries and totals.
func (s *Store) DeleteCourier(ctx context.Context, id int64) error {
	return execOne(ctx, s.db, fmt.Sprintf("courier %d", id), `DELETE FROM motoqueiros WHERE id = $1`, id)
}

func (s *Store) AdminByLogin(ctx context.Context, login string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, senha, created_at FROM admins WHERE login = $1`, login,
	).Scan(&a.ID, &a.Login, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("admin %q: %w", login, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO admins (login, senha) VALUES ($1, $2) RETURNING id, created_at`,
		a.Login, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return classify(err, 0)
	}
	return nil
}

func queryEntries(ctx context.Context, q querier, query string, args ...interface{}) ([]models.Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, q querier, what, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}

// classify maps constraint violations onto domain errors.
func classify(err error, courierID int64) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%s: %w", pqErr.Constraint, models.ErrConflict)
	case pqForeignKeyViolation:
		return models.NewValidationError(fmt.Sprintf("Motoqueiro %d does not exist", courierID), nil)
	}
	return err
}

type conditions struct {
	clauses []string
	args    []interface{}
}

// add appends a clause; expr carries one %d for the placeholder index.
func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
    id TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    seed TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT identities_seed_key UNIQUE (seed)
);
CREATE TABLE IF NOT EXISTS fiat_balances (
    identity_id TEXT NOT NULL REFERENCES identities(id),
    symbol TEXT NOT NULL,
    amount NUMERIC NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (identity_id, symbol)
);
CREATE TABLE IF NOT EXISTS coin_holdings (
    identity_id TEXT NOT NULL REFERENCES identities(id),
    symbol TEXT NOT NULL,
    amount NUMERIC NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (identity_id, symbol)
);
`

// querier is satisfied by both pgxpool.Pool and pgx.Tx, letting one
// implementation serve plain and transactional access.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists identities and balances in PostgreSQL.
type PostgresStore struct {
	db   *pgxpool.Pool
	q    querier
	inTx bool
}

// NewPostgres builds a Postgres-backed store on the provided pool.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// EnsureSchema creates the identity and balance tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func balanceTable(ns Namespace) (string, error) {
	switch ns {
	case NamespaceFiat:
		return "fiat_balances", nil
	case NamespaceCoin:
		return "coin_holdings", nil
	default:
		return "", fmt.Errorf("unknown namespace %q", ns)
	}
}

// InsertIdentity stores a new identity row. Collisions on the id or seed
// surface as ErrDuplicateID / ErrDuplicateSeed so callers can retry.
func (s *PostgresStore) InsertIdentity(ctx context.Context, id, password, canonicalSeed string) error {
	_, err := s.q.Exec(ctx, `INSERT INTO identities (id, password, seed) VALUES ($1, $2, $3)`,
		id, password, canonicalSeed)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "identities_seed_key" {
				return ErrDuplicateSeed
			}
			return ErrDuplicateID
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

// IdentityExists reports whether an identity row exists for id.
func (s *PostgresStore) IdentityExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.q.QueryRow(ctx, `SELECT 1 FROM identities WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("identity exists: %w", err)
	}
	return true, nil
}

// FindIdentityByPassword returns the identity id stored with the password.
func (s *PostgresStore) FindIdentityByPassword(ctx context.Context, password string) (string, error) {
	var id string
	err := s.q.QueryRow(ctx, `SELECT id FROM identities WHERE password = $1`, password).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find identity by password: %w", err)
	}
	return id, nil
}

// FindIdentityBySeed returns the identity id stored with the canonical seed.
func (s *PostgresStore) FindIdentityBySeed(ctx context.Context, canonicalSeed string) (string, error) {
	var id string
	err := s.q.QueryRow(ctx, `SELECT id FROM identities WHERE seed = $1`, canonicalSeed).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find identity by seed: %w", err)
	}
	return id, nil
}

// UpdatePassword replaces the stored password for id.
func (s *PostgresStore) UpdatePassword(ctx context.Context, id, newPassword string) error {
	cmd, err := s.q.Exec(ctx, `UPDATE identities SET password = $1 WHERE id = $2`, newPassword, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetBalance fetches one balance row. Inside a transaction the row is locked
// for the remainder of the transaction.
func (s *PostgresStore) GetBalance(ctx context.Context, id string, ns Namespace, symbol string) (decimal.Decimal, bool, error) {
	table, err := balanceTable(ns)
	if err != nil {
		return decimal.Zero, false, err
	}
	query := fmt.Sprintf(`SELECT amount::text FROM %s WHERE identity_id = $1 AND symbol = $2`, table)
	if s.inTx {
		query += " FOR UPDATE"
	}

	var raw string
	err = s.q.QueryRow(ctx, query, id, symbol).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("get balance: %w", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse stored amount %q: %w", raw, err)
	}
	return amount, true, nil
}

// UpsertBalance inserts or replaces one balance row.
func (s *PostgresStore) UpsertBalance(ctx context.Context, id string, ns Namespace, symbol string, amount decimal.Decimal) error {
	table, err := balanceTable(ns)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (identity_id, symbol, amount) VALUES ($1, $2, $3::numeric)
        ON CONFLICT (identity_id, symbol) DO UPDATE SET amount = EXCLUDED.amount`, table)
	if _, err := s.q.Exec(ctx, query, id, symbol, amount.String()); err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// ListBalances returns every holding of an identity within a namespace.
func (s *PostgresStore) ListBalances(ctx context.Context, id string, ns Namespace) ([]Holding, error) {
	table, err := balanceTable(ns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT symbol, amount::text FROM %s WHERE identity_id = $1 ORDER BY symbol`, table)
	rows, err := s.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var symbol, raw string
		if err := rows.Scan(&symbol, &raw); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", raw, err)
		}
		holdings = append(holdings, Holding{Symbol: symbol, Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return holdings, nil
}

// Atomic runs fn inside one database transaction. A nested call joins the
// transaction already in progress.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(&PostgresStore{db: s.db, q: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

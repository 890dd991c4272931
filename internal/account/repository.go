package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists accounts.
type Repository interface {
	FindByID(ctx context.Context, id string) (Account, error)
	FindAll(ctx context.Context) ([]Account, error)
	FindByClient(ctx context.Context, clientID string) ([]Account, error)
	FindByClientAndType(ctx context.Context, clientID string, t Type) ([]Account, error)
	// Save inserts a new account or updates an existing one. Updates carry
	// the version read; a mismatch returns ErrVersionConflict.
	Save(ctx context.Context, acct *Account) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// PostgresRepository stores accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id, client_id, client_kind, client_tier, type, balance,
	maintenance_fee, movement_limit, holders, signers, movement_day, version`

// FindByID fetches a single account.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Account{}, err
	}
	return acct, nil
}

// FindAll lists every account.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// FindByClient lists the accounts owned by a client.
func (r *PostgresRepository) FindByClient(ctx context.Context, clientID string) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE client_id = $1 ORDER BY id`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// FindByClientAndType lists a client's accounts of one product type.
func (r *PostgresRepository) FindByClientAndType(ctx context.Context, clientID string, t Type) ([]Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE client_id = $1 AND type = $2 ORDER BY id`, clientID, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// Save upserts the account with an optimistic version check.
func (r *PostgresRepository) Save(ctx context.Context, acct *Account) error {
	if acct.Version == 0 {
		acct.Version = 1
		_, err := r.db.Exec(ctx, `INSERT INTO accounts
			(id, client_id, client_kind, client_tier, type, balance, maintenance_fee,
			 movement_limit, holders, signers, movement_day, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			acct.ID, acct.ClientID, acct.ClientKind, acct.ClientTier, acct.Type,
			acct.Balance, acct.MaintenanceFee, acct.MovementLimit,
			acct.Holders, acct.Signers, acct.MovementDay, acct.Version)
		return err
	}

	tag, err := r.db.Exec(ctx, `UPDATE accounts SET
			balance = $2, maintenance_fee = $3, movement_limit = $4,
			holders = $5, signers = $6, movement_day = $7, version = version + 1
		WHERE id = $1 AND version = $8`,
		acct.ID, acct.Balance, acct.MaintenanceFee, acct.MovementLimit,
		acct.Holders, acct.Signers, acct.MovementDay, acct.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrVersionConflict, acct.ID)
	}
	acct.Version++
	return nil
}

// Delete removes an account record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteAll removes every account record.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM accounts`)
	return err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.ClientID, &a.ClientKind, &a.ClientTier, &a.Type,
		&a.Balance, &a.MaintenanceFee, &a.MovementLimit, &a.Holders, &a.Signers,
		&a.MovementDay, &a.Version)
	return a, err
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

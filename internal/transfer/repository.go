package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists transfer summaries.
type Repository interface {
	FindByID(ctx context.Context, id string) (Transfer, error)
	FindAll(ctx context.Context) ([]Transfer, error)
	FindByAccount(ctx context.Context, accountID string) ([]Transfer, error)
	FindByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Transfer, error)
	Save(ctx context.Context, tr *Transfer) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// PostgresRepository stores transfers in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transferColumns = `id, from_account, to_account, amount, correlation_id, date`

// FindByID fetches one transfer.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Transfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
	tr, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transfer{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Transfer{}, err
	}
	return tr, nil
}

// FindAll lists every transfer.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]Transfer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransfers(rows)
}

// FindByAccount lists the transfers an account took part in, on either side.
func (r *PostgresRepository) FindByAccount(ctx context.Context, accountID string) ([]Transfer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE from_account = $1 OR to_account = $1 ORDER BY date, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransfers(rows)
}

// FindByAccountBetween lists an account's transfers inside [from, to].
func (r *PostgresRepository) FindByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Transfer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+transferColumns+` FROM transfers
		 WHERE (from_account = $1 OR to_account = $1) AND date >= $2 AND date <= $3
		 ORDER BY date, id`, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransfers(rows)
}

// Save inserts a transfer summary.
func (r *PostgresRepository) Save(ctx context.Context, tr *Transfer) error {
	_, err := r.db.Exec(ctx, `INSERT INTO transfers (id, from_account, to_account, amount, correlation_id, date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tr.ID, tr.From, tr.To, tr.Amount, tr.Correlation, tr.Date)
	return err
}

// Delete removes one transfer record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transfers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteAll removes every transfer record.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transfers`)
	return err
}

func scanTransfer(row pgx.Row) (Transfer, error) {
	var t Transfer
	err := row.Scan(&t.ID, &t.From, &t.To, &t.Amount, &t.Correlation, &t.Date)
	return t, err
}

func collectTransfers(rows pgx.Rows) ([]Transfer, error) {
	var out []Transfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

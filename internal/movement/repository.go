package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the movement log.
type Repository interface {
	FindByID(ctx context.Context, id string) (Movement, error)
	FindAll(ctx context.Context) ([]Movement, error)
	FindByAccount(ctx context.Context, accountID string) ([]Movement, error)
	FindByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Movement, error)
	CountByAccountBetween(ctx context.Context, accountID string, from, to time.Time) (int64, error)
	Save(ctx context.Context, mov *Movement) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// PostgresRepository stores movements in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const movementColumns = `id, kind, amount, fee, date, account_id`

// FindByID fetches one movement.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Movement, error) {
	row := r.db.QueryRow(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
	mov, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Movement{}, err
	}
	return mov, nil
}

// FindAll lists the whole movement log.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]Movement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

// FindByAccount lists an account's movements.
func (r *PostgresRepository) FindByAccount(ctx context.Context, accountID string) ([]Movement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE account_id = $1 ORDER BY date, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

// FindByAccountBetween lists an account's movements inside [from, to].
func (r *PostgresRepository) FindByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Movement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+movementColumns+` FROM movements
		 WHERE account_id = $1 AND date >= $2 AND date <= $3 ORDER BY date, id`,
		accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMovements(rows)
}

// CountByAccountBetween counts an account's movements inside [from, to].
func (r *PostgresRepository) CountByAccountBetween(ctx context.Context, accountID string, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM movements WHERE account_id = $1 AND date >= $2 AND date <= $3`,
		accountID, from, to).Scan(&count)
	return count, err
}

// Save upserts a movement record.
func (r *PostgresRepository) Save(ctx context.Context, mov *Movement) error {
	_, err := r.db.Exec(ctx, `INSERT INTO movements (id, kind, amount, fee, date, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET kind = $2, amount = $3, fee = $4, date = $5`,
		mov.ID, mov.Kind, mov.Amount, mov.Fee, mov.Date, mov.AccountID)
	return err
}

// Delete removes one movement record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteAll clears the movement log.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM movements`)
	return err
}

func scanMovement(row pgx.Row) (Movement, error) {
	var m Movement
	err := row.Scan(&m.ID, &m.Kind, &m.Amount, &m.Fee, &m.Date, &m.AccountID)
	return m, err
}

func collectMovements(rows pgx.Rows) ([]Movement, error) {
	var out []Movement
	for rows.Next() {
		mov, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mov)
	}
	return out, rows.Err()
}

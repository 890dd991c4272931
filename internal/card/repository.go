package card

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists debit cards.
type Repository interface {
	FindByID(ctx context.Context, id string) (DebitCard, error)
	FindAll(ctx context.Context) ([]DebitCard, error)
	FindByClient(ctx context.Context, clientID string) ([]DebitCard, error)
	FindByNumber(ctx context.Context, number string) (DebitCard, error)
	Save(ctx context.Context, card *DebitCard) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

// PostgresRepository stores debit cards in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const cardColumns = `id, number, client_id, accounts`

// FindByID fetches one card.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (DebitCard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM debit_cards WHERE id = $1`, id)
	return scanCard(row, id)
}

// FindAll lists every card.
func (r *PostgresRepository) FindAll(ctx context.Context) ([]DebitCard, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM debit_cards ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCards(rows)
}

// FindByClient lists a client's cards.
func (r *PostgresRepository) FindByClient(ctx context.Context, clientID string) ([]DebitCard, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM debit_cards WHERE client_id = $1 ORDER BY id`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCards(rows)
}

// FindByNumber fetches the card carrying a number.
func (r *PostgresRepository) FindByNumber(ctx context.Context, number string) (DebitCard, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM debit_cards WHERE number = $1`, number)
	return scanCard(row, number)
}

// Save upserts a card record.
func (r *PostgresRepository) Save(ctx context.Context, card *DebitCard) error {
	_, err := r.db.Exec(ctx, `INSERT INTO debit_cards (id, number, client_id, accounts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET number = $2, accounts = $4`,
		card.ID, card.Number, card.ClientID, card.Accounts)
	return err
}

// Delete removes one card record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM debit_cards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteAll removes every card record.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM debit_cards`)
	return err
}

func scanCard(row pgx.Row, key string) (DebitCard, error) {
	var c DebitCard
	if err := row.Scan(&c.ID, &c.Number, &c.ClientID, &c.Accounts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DebitCard{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return DebitCard{}, err
	}
	return c, nil
}

func collectCards(rows pgx.Rows) ([]DebitCard, error) {
	var out []DebitCard
	for rows.Next() {
		var c DebitCard
		if err := rows.Scan(&c.ID, &c.Number, &c.ClientID, &c.Accounts); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

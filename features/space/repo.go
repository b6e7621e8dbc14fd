package space

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, sp *Space) error {
	query := `INSERT INTO spaces (user_id, name, description) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, sp.UserID, sp.Name, sp.Description).
		Scan(&sp.ID, &sp.CreatedAt, &sp.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Space, error) {
	sp := &Space{}
	query := `SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at FROM spaces WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Description, &sp.CreatedAt, &sp.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sp, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Space, error) {
	query := `SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at FROM spaces WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []Space
	for rows.Next() {
		var sp Space
		if err := rows.Scan(&sp.ID, &sp.UserID, &sp.Name, &sp.Description, &sp.CreatedAt, &sp.UpdatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, sp)
	}
	return spaces, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, sp *Space) error {
	query := `UPDATE spaces SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, sp.Name, sp.Description, sp.ID)
	return err
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM spaces WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

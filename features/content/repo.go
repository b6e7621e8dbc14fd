package content

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"klarity/internal/pipeline"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const contentColumns = `id, user_id, space_id, url, COALESCE(title, ''), COALESCE(text_body, ''), COALESCE(summary, ''), tags, status, COALESCE(failure_reason, ''), created_at, updated_at`

func (r *PostgresRepo) Save(ctx context.Context, c *Content) error {
	query := `INSERT INTO contents (user_id, space_id, url, tags, status) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, c.UserID, c.SpaceID, c.URL, pq.Array(c.Tags), c.Status).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1`
	c, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepo) ListBySpace(ctx context.Context, spaceID string) ([]Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE space_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, spaceID)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM contents WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// GetForProcessing loads the slice of the row the pipeline needs.
func (r *PostgresRepo) GetForProcessing(ctx context.Context, id string) (pipeline.Item, error) {
	var item pipeline.Item
	query := `SELECT id, user_id, space_id, url FROM contents WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.UserID, &item.SpaceID, &item.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	return item, err
}

// SaveProcessed persists the pipeline's textual result and flips the item to
// processed. A later indexing failure can still overwrite this with failed.
func (r *PostgresRepo) SaveProcessed(ctx context.Context, id, title, body, summary string) error {
	query := `UPDATE contents SET title = $1, text_body = $2, summary = $3, status = $4, failure_reason = NULL, updated_at = NOW() WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query, title, body, summary, StatusProcessed, id)
	return err
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, id, reason string) error {
	query := `UPDATE contents SET status = $1, failure_reason = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, StatusFailed, reason, id)
	return err
}

func (r *PostgresRepo) list(ctx context.Context, query string, arg string) ([]Content, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []Content
	for rows.Next() {
		var c Content
		if err := rows.Scan(&c.ID, &c.UserID, &c.SpaceID, &c.URL, &c.Title, &c.Text, &c.Summary,
			pq.Array(&c.Tags), &c.Status, &c.FailureReason, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

func (r *PostgresRepo) scanOne(row *sql.Row) (*Content, error) {
	var c Content
	err := row.Scan(&c.ID, &c.UserID, &c.SpaceID, &c.URL, &c.Title, &c.Text, &c.Summary,
		pq.Array(&c.Tags), &c.Status, &c.FailureReason, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

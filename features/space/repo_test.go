package space_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"klarity/features/space"
)

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := space.NewPostgresRepo(db)

	sp := &space.Space{UserID: "u-1", Name: "Reading", Description: "articles"}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spaces (user_id, name, description) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at")).
		WithArgs("u-1", "Reading", "articles").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("s-1", time.Now(), time.Now()))

	err = repo.Save(context.Background(), sp)
	assert.NoError(t, err)
	assert.Equal(t, "s-1", sp.ID)
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := space.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "name", "description", "created_at", "updated_at"}).
			AddRow("s-1", "u-1", "Reading", "", time.Now(), time.Now())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at FROM spaces WHERE id = $1")).
			WithArgs("s-1").
			WillReturnRows(rows)

		sp, err := repo.Get(context.Background(), "s-1")
		assert.NoError(t, err)
		assert.Equal(t, "u-1", sp.UserID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at FROM spaces WHERE id = $1")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, space.ErrNotFound)
	})
}

func TestPostgresRepo_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := space.NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "description", "created_at", "updated_at"}).
		AddRow("s-2", "u-1", "Second", "", time.Now(), time.Now()).
		AddRow("s-1", "u-1", "First", "", time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, COALESCE(description, ''), created_at, updated_at FROM spaces WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("u-1").
		WillReturnRows(rows)

	spaces, err := repo.ListByUser(context.Background(), "u-1")
	assert.NoError(t, err)
	assert.Len(t, spaces, 2)
}

func TestPostgresRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := space.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE spaces SET name = $1, description = $2, updated_at = NOW() WHERE id = $3")).
		WithArgs("New", "desc", "s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(context.Background(), &space.Space{ID: "s-1", Name: "New", Description: "desc"})
	assert.NoError(t, err)
}

func TestPostgresRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := space.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM spaces WHERE id = $1")).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), "s-1")
	assert.NoError(t, err)
}

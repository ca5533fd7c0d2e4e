package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now()
	cols := []string{"id", "email", "user_id", "status", "created_at", "updated_at"}

	mock.ExpectQuery(`FROM waitlist\s+WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("w1", "a@example.com", "u1", "pending", now, now))
	e, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, e.UserID)
	assert.Equal(t, "u1", *e.UserID)
	assert.Equal(t, common.WaitlistPending, e.Status)

	mock.ExpectQuery(`FROM waitlist`).
		WithArgs("anon@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("w2", "anon@example.com", nil, "approved", now, now))
	e, err = repo.FindByEmail(context.Background(), "anon@example.com")
	require.NoError(t, err)
	assert.Nil(t, e.UserID)

	mock.ExpectQuery(`FROM waitlist`).
		WithArgs("none@example.com").
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = repo.FindByEmail(context.Background(), "none@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO waitlist \(email, user_id, status\)`).
		WithArgs("a@example.com", nil, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("w1", now, now))
	e := &models.WaitlistEntry{Email: "a@example.com"}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, "w1", e.ID)
	assert.Equal(t, common.WaitlistPending, e.Status)

	mock.ExpectQuery(`INSERT INTO waitlist`).
		WithArgs("a@example.com", nil, "pending").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "waitlist_email_key"})
	err = repo.Create(context.Background(), &models.WaitlistEntry{Email: "a@example.com"})
	assert.True(t, common.ConstraintViolationOn(err, "email"))

	require.NoError(t, mock.ExpectationsWereMet())
}

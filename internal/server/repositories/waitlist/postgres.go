// Package waitlist stores requests for collector tier access, one per email.
package waitlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	query :=
		`SELECT id, email, user_id, status, created_at, updated_at FROM waitlist
		 WHERE email = $1`

	e := &models.WaitlistEntry{}
	var userID sql.NullString
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&e.ID, &e.Email, &userID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if userID.Valid {
		e.UserID = &userID.String
	}
	return e, nil
}

// Create inserts e as pending. A second entry for the same email comes back
// as a constraint violation on "email".
func (r *PostgresRepository) Create(ctx context.Context, e *models.WaitlistEntry) error {
	query :=
		`INSERT INTO waitlist (email, user_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	if e.Status == "" {
		e.Status = common.WaitlistPending
	}
	err := r.db.QueryRowContext(ctx, query, e.Email, e.UserID, e.Status).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

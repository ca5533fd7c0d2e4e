// Package identities stores sign-in identities: email, password hash and the
// username given at sign-up.
package identities

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

func (r *PostgresRepository) Create(ctx context.Context, i *models.Identity) (*models.Identity, error) {
	query :=
		`INSERT INTO identities (email, username_hint, salt, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, i.Email, i.UsernameHint, i.Salt, i.PasswordHash).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return i, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query :=
		`SELECT id, email, username_hint, salt, password_hash, created_at FROM identities
		 WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	query :=
		`SELECT id, email, username_hint, salt, password_hash, created_at FROM identities
		 WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Identity, error) {
	i := &models.Identity{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&i.ID, &i.Email, &i.UsernameHint, &i.Salt, &i.PasswordHash, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return i, nil
}

// ListWithoutProfile returns identities that signed up but never got a
// profile row, oldest first.
func (r *PostgresRepository) ListWithoutProfile(ctx context.Context) ([]*models.Identity, error) {
	query :=
		`SELECT i.id, i.email, i.username_hint, i.created_at FROM identities i
		 LEFT JOIN profiles p ON p.id = i.id
		 WHERE p.id IS NULL
		 ORDER BY i.created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Identity
	for rows.Next() {
		i := &models.Identity{}
		if err := rows.Scan(&i.ID, &i.Email, &i.UsernameHint, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

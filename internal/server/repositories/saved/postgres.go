// Package saved stores the per-user favorites list.
package saved

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/codes"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, codeID string) error {
	query :=
		`INSERT INTO saved_codes (user_id, code_id)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, codeID); err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

// List returns the user's saved codes, most recently saved first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Code, error) {
	query := "SELECT " + codes.SelectColumns + ` FROM saved_codes s
		 JOIN codes c ON c.id = s.code_id
		 WHERE s.user_id = $1
		 ORDER BY s.saved_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return codes.ScanRows(rows)
}

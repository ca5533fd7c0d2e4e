// Package images records preview images that live in object storage.
package images

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append adds an image row at the next free position for the code.
func (r *PostgresRepository) Append(ctx context.Context, codeID, storageKey string) (*models.CodeImage, error) {
	query :=
		`INSERT INTO code_images (code_id, storage_key, position)
		 VALUES ($1, $2, (SELECT COALESCE(max(position) + 1, 0) FROM code_images WHERE code_id = $1))
		 RETURNING id, position, created_at`

	im := &models.CodeImage{CodeID: codeID, StorageKey: storageKey}
	if err := r.db.QueryRowContext(ctx, query, codeID, storageKey).Scan(&im.ID, &im.Position, &im.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return im, nil
}

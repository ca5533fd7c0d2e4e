package images

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, codeID, storageKey string) (*models.CodeImage, error)
}

package codes

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Code) error
	Get(ctx context.Context, id string) (*models.Code, error)
	Owner(ctx context.Context, id string) (string, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.Code, error)
	IncrementCopyCount(ctx context.Context, id string) (*models.Code, error)
	IncrementSaveCount(ctx context.Context, id string) error
}

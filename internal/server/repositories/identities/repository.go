package identities

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, i *models.Identity) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	ListWithoutProfile(ctx context.Context) ([]*models.Identity, error)
}

package profiles

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Find(ctx context.Context, id string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	List(ctx context.Context) ([]*models.Profile, error)
	UpdateWaitlistStatus(ctx context.Context, id, status string) error
}

package votes

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Find(ctx context.Context, userID, itemID string) (*models.Vote, error)
	Create(ctx context.Context, v *models.Vote) error
	Update(ctx context.Context, v *models.Vote) error
	RecomputeTally(ctx context.Context, itemID string) (models.Tally, error)
}

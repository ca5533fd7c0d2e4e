package saved

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, codeID string) error
	List(ctx context.Context, userID string) ([]*models.Code, error)
}

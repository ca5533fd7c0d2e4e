package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, expires time.Time) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}

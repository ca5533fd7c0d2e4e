package waitlist

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	Create(ctx context.Context, e *models.WaitlistEntry) error
}

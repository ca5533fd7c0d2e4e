package folders

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, f *models.Folder) error
	Get(ctx context.Context, userID, id string) (*models.Folder, error)
	List(ctx context.Context, userID string) ([]*models.Folder, error)
	AddCode(ctx context.Context, folderID, codeID string) error
	Codes(ctx context.Context, folderID string) ([]*models.Code, error)
}

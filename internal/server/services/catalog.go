package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

const DefaultSVVersion = 4

type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

// NormalizeTags lower-cases, trims and de-duplicates tags, dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

func (s *CatalogService) CreateCode(ctx context.Context, ownerID string, c *models.Code) (*models.Code, error) {
	c.UserID = ownerID
	c.CodeValue = strings.TrimSpace(c.CodeValue)
	c.Title = strings.TrimSpace(c.Title)
	c.Tags = NormalizeTags(c.Tags)
	if c.SVVersion == 0 {
		c.SVVersion = DefaultSVVersion
	}
	if c.CodeValue == "" || c.Title == "" {
		return nil, fmt.Errorf("%w: code value and title are required", common.ErrorValidation)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Codes(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("error creating code: %w", err)
	}
	return c, nil
}

func (s *CatalogService) GetCode(ctx context.Context, id string) (*models.Code, error) {
	return s.repomanager.Codes(s.db).Get(ctx, id)
}

func (s *CatalogService) SearchCodes(ctx context.Context, criteria models.SearchCriteria) ([]*models.Code, error) {
	criteria.Tags = NormalizeTags(criteria.Tags)
	return s.repomanager.Codes(s.db).Search(ctx, criteria)
}

// CopyCode counts a copy and returns the text to paste.
func (s *CatalogService) CopyCode(ctx context.Context, id string) (string, error) {
	c, err := s.repomanager.Codes(s.db).IncrementCopyCount(ctx, id)
	if err != nil {
		return "", err
	}
	return c.SrefText(), nil
}

// SaveCode adds the code to the user's library and bumps its save count in
// the same transaction. Saving twice returns common.ErrAlreadySaved.
func (s *CatalogService) SaveCode(ctx context.Context, userID, codeID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Codes(tx).IncrementSaveCount(ctx, codeID); err != nil {
			return err
		}
		if err := s.repomanager.Saved(tx).Create(ctx, userID, codeID); err != nil {
			if common.ConstraintViolationOn(err, "user_id,code_id") {
				return common.ErrAlreadySaved
			}
			return err
		}
		return nil
	})
}

func (s *CatalogService) ListSaved(ctx context.Context, userID string) ([]*models.Code, error) {
	return s.repomanager.Saved(s.db).List(ctx, userID)
}

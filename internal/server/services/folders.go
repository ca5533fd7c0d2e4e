package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

// FolderService manages plain folders (explicit members) and smart folders
// (a saved search evaluated on every read).
type FolderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFolderService(db *sql.DB, m repomanager.RepositoryManager) *FolderService {
	return &FolderService{db: db, repomanager: m}
}

// CreateFolder makes a smart folder when criteria is non-nil.
func (s *FolderService) CreateFolder(ctx context.Context, userID, name string, parentID *string, criteria *models.SearchCriteria) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", common.ErrorValidation)
	}

	repo := s.repomanager.Folders(s.db)
	if parentID != nil {
		if _, err := repo.Get(ctx, userID, *parentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}
	if criteria != nil {
		criteria.Tags = NormalizeTags(criteria.Tags)
	}

	f := &models.Folder{
		UserID:   userID,
		Name:     name,
		ParentID: parentID,
		IsSmart:  criteria != nil,
		Criteria: criteria,
	}
	if err := repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("error creating folder: %w", err)
	}
	return f, nil
}

func (s *FolderService) ListFolders(ctx context.Context, userID string) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).List(ctx, userID)
}

func (s *FolderService) AddToFolder(ctx context.Context, userID, folderID, codeID string) error {
	repo := s.repomanager.Folders(s.db)

	f, err := repo.Get(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if f.IsSmart {
		return fmt.Errorf("%w: smart folders are filled by their search", common.ErrorValidation)
	}
	if _, err := s.repomanager.Codes(s.db).Owner(ctx, codeID); err != nil {
		return err
	}

	if err := repo.AddCode(ctx, folderID, codeID); err != nil {
		if common.ConstraintViolationOn(err, "folder_id,code_id") {
			return fmt.Errorf("%w: code is already in this folder", common.ErrorAlreadyExists)
		}
		return err
	}
	return nil
}

func (s *FolderService) FolderCodes(ctx context.Context, userID, folderID string) ([]*models.Code, error) {
	f, err := s.repomanager.Folders(s.db).Get(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if f.IsSmart {
		criteria := models.SearchCriteria{}
		if f.Criteria != nil {
			criteria = *f.Criteria
		}
		return s.repomanager.Codes(s.db).Search(ctx, criteria)
	}
	return s.repomanager.Folders(s.db).Codes(ctx, folderID)
}

// Package folders stores user folders. Smart folders keep their search
// criteria as jsonb and have no folder_codes rows.
package folders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/codes"
)

const folderColumns = "id, user_id, name, parent_id, is_smart, search_criteria, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(s scanner) (*models.Folder, error) {
	var (
		f        models.Folder
		parent   sql.NullString
		criteria []byte
	)
	if err := s.Scan(&f.ID, &f.UserID, &f.Name, &parent, &f.IsSmart, &criteria, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		f.ParentID = &parent.String
	}
	if len(criteria) > 0 {
		f.Criteria = &models.SearchCriteria{}
		if err := json.Unmarshal(criteria, f.Criteria); err != nil {
			return nil, fmt.Errorf("decode search_criteria: %w", err)
		}
	}
	return &f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.Folder) error {
	var criteria any
	if f.Criteria != nil {
		b, err := json.Marshal(f.Criteria)
		if err != nil {
			return fmt.Errorf("encode search_criteria: %w", err)
		}
		criteria = string(b)
	}

	query :=
		`INSERT INTO folders (user_id, name, parent_id, is_smart, search_criteria)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, f.UserID, f.Name, f.ParentID, f.IsSmart, criteria).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

// Get only returns folders owned by userID; anything else is not found.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Folder, error) {
	query := "SELECT " + folderColumns + " FROM folders WHERE id = $1 AND user_id = $2"

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Folder, error) {
	query := "SELECT " + folderColumns + " FROM folders WHERE user_id = $1 ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) AddCode(ctx context.Context, folderID, codeID string) error {
	query :=
		`INSERT INTO folder_codes (folder_id, code_id)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, folderID, codeID); err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

func (r *PostgresRepository) Codes(ctx context.Context, folderID string) ([]*models.Code, error) {
	query := "SELECT " + codes.SelectColumns + ` FROM folder_codes fc
		 JOIN codes c ON c.id = fc.code_id
		 WHERE fc.folder_id = $1
		 ORDER BY fc.added_at DESC`

	rows, err := r.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return codes.ScanRows(rows)
}

// Package codes stores catalog items together with their tags and preview
// image rows.
package codes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SelectColumns lists the code columns in ScanRows order. The table must be
// aliased as c.
const SelectColumns = "c.id, c.user_id, c.code_value, c.sv_version, c.title, c.copy_count, c.upvotes, c.downvotes, c.save_count, c.created_at, c.updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCode(s scanner) (*models.Code, error) {
	c := &models.Code{}
	err := s.Scan(&c.ID, &c.UserID, &c.CodeValue, &c.SVVersion, &c.Title,
		&c.CopyCount, &c.Upvotes, &c.Downvotes, &c.SaveCount, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ScanRows drains rows selected with SelectColumns and closes them.
func ScanRows(rows *sql.Rows) ([]*models.Code, error) {
	defer rows.Close()

	var result []*models.Code
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Create inserts the code row and its tags. Run it inside a transaction.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Code) error {
	query :=
		`INSERT INTO codes (user_id, code_value, sv_version, title)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.UserID, c.CodeValue, c.SVVersion, c.Title).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}

	for _, tag := range c.Tags {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO code_tags (code_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, c.ID, tag)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// Get loads one code with its tags and images.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Code, error) {
	c, err := scanCode(r.db.QueryRowContext(ctx, "SELECT "+SelectColumns+" FROM codes c WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if c.Tags, err = r.tags(ctx, id); err != nil {
		return nil, err
	}
	if c.Images, err = r.images(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) tags(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tag FROM code_tags WHERE code_id = $1 ORDER BY tag`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tags, nil
}

func (r *PostgresRepository) images(ctx context.Context, id string) ([]models.CodeImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code_id, storage_key, position, created_at FROM code_images WHERE code_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var images []models.CodeImage
	for rows.Next() {
		var im models.CodeImage
		if err := rows.Scan(&im.ID, &im.CodeID, &im.StorageKey, &im.Position, &im.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		images = append(images, im)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return images, nil
}

func (r *PostgresRepository) Owner(ctx context.Context, id string) (string, error) {
	var owner string
	if err := r.db.QueryRowContext(ctx, `SELECT user_id FROM codes WHERE id = $1`, id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return owner, nil
}

func (r *PostgresRepository) Search(ctx context.Context, criteria models.SearchCriteria) ([]*models.Code, error) {
	query, args := buildSearch(criteria)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ScanRows(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildSearch turns criteria into a filtered, newest-first query. Every
// filter is optional and they combine with AND.
func buildSearch(criteria models.SearchCriteria) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(criteria.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf(`(c.title ILIKE %s ESCAPE '\' OR c.code_value ILIKE %s ESCAPE '\')`, p, p))
	}
	if len(criteria.Tags) > 0 {
		ph := make([]string, len(criteria.Tags))
		for i, t := range criteria.Tags {
			ph[i] = arg(t)
		}
		where = append(where, fmt.Sprintf("c.id IN (SELECT code_id FROM code_tags WHERE tag IN (%s))", strings.Join(ph, ", ")))
	}
	if criteria.SVVersion != nil {
		where = append(where, "c.sv_version = "+arg(*criteria.SVVersion))
	}
	if criteria.UpvotesMin != nil {
		where = append(where, "c.upvotes >= "+arg(*criteria.UpvotesMin))
	}
	if dr := criteria.DateRange; dr != nil {
		if !dr.Start.IsZero() {
			where = append(where, "c.created_at >= "+arg(dr.Start))
		}
		if !dr.End.IsZero() {
			where = append(where, "c.created_at <= "+arg(dr.End))
		}
	}

	limit := criteria.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	offset := max(criteria.Offset, 0)

	var b strings.Builder
	b.WriteString("SELECT " + SelectColumns + " FROM codes c")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY c.created_at DESC")
	b.WriteString(" LIMIT " + arg(limit))
	b.WriteString(" OFFSET " + arg(offset))
	return b.String(), args
}

// IncrementCopyCount bumps copy_count in one statement and returns the fields
// needed to render the sref text.
func (r *PostgresRepository) IncrementCopyCount(ctx context.Context, id string) (*models.Code, error) {
	query :=
		`UPDATE codes SET copy_count = copy_count + 1
		 WHERE id = $1
		 RETURNING id, code_value, sv_version, copy_count`

	c := &models.Code{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.CodeValue, &c.SVVersion, &c.CopyCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) IncrementSaveCount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE codes SET save_count = save_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, username, email, tier, waitlist_status, created_at, updated_at FROM profiles
		 WHERE id = $1`

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Username, &p.Email, &p.Tier, &p.WaitlistStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Create inserts p with the id it already carries. Unique violations come
// back as *common.ConstraintViolationError so callers can tell a taken
// username from a profile that already exists.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Profile) error {
	query :=
		`INSERT INTO profiles (id, username, email, tier, waitlist_status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Username, p.Email, p.Tier, p.WaitlistStatus).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Profile, error) {
	query :=
		`SELECT id, username, email, tier, waitlist_status, created_at, updated_at FROM profiles
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.Tier, &p.WaitlistStatus, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateWaitlistStatus(ctx context.Context, id, status string) error {
	query :=
		`UPDATE profiles SET waitlist_status = $2, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status)
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

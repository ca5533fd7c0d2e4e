// Package votes is the server-of-record for votes and the tally recount.
package votes

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

func (r *PostgresRepository) Find(ctx context.Context, userID, itemID string) (*models.Vote, error) {
	query :=
		`SELECT id, user_id, item_id, is_upvote, created_at, updated_at FROM votes
		 WHERE user_id = $1 AND item_id = $2`

	v := &models.Vote{}
	err := r.db.QueryRowContext(ctx, query, userID, itemID).
		Scan(&v.ID, &v.UserID, &v.ItemID, &v.IsUpvote, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vote) error {
	query :=
		`INSERT INTO votes (user_id, item_id, is_upvote)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, v.UserID, v.ItemID, v.IsUpvote).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.ClassifyError(err))
	}
	return nil
}

// Update flips the polarity of an existing (user, item) vote in place.
func (r *PostgresRepository) Update(ctx context.Context, v *models.Vote) error {
	query :=
		`UPDATE votes SET is_upvote = $3, updated_at = now()
		 WHERE user_id = $1 AND item_id = $2
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, v.UserID, v.ItemID, v.IsUpvote).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RecomputeTally overwrites the code's counters with a full recount of its
// votes and returns the stored values. Running it twice changes nothing.
func (r *PostgresRepository) RecomputeTally(ctx context.Context, itemID string) (models.Tally, error) {
	query :=
		`UPDATE codes SET
		     upvotes = (SELECT count(*) FROM votes WHERE item_id = $1 AND is_upvote),
		     downvotes = (SELECT count(*) FROM votes WHERE item_id = $1 AND NOT is_upvote),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING upvotes, downvotes`

	var t models.Tally
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(&t.Upvotes, &t.Downvotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tally{}, common.ErrorNotFound
		}
		return models.Tally{}, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

// VoteService is the server half of the vote gateway. Writes are always
// made on behalf of the authenticated caller, never for an arbitrary user.
type VoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewVoteService(db *sql.DB, m repomanager.RepositoryManager) *VoteService {
	return &VoteService{db: db, repomanager: m}
}

func (s *VoteService) FindVote(ctx context.Context, callerID, itemID string) (*models.Vote, error) {
	return s.repomanager.Votes(s.db).Find(ctx, callerID, itemID)
}

// InsertVote records the caller's first vote on itemID. A second insert for
// the same pair fails with a *common.ConstraintViolationError.
func (s *VoteService) InsertVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error) {
	if err := s.checkNotOwner(ctx, callerID, itemID); err != nil {
		return nil, err
	}
	v := &models.Vote{UserID: callerID, ItemID: itemID, IsUpvote: isUpvote}
	if err := s.repomanager.Votes(s.db).Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVote flips the caller's existing vote in place.
func (s *VoteService) UpdateVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error) {
	if err := s.checkNotOwner(ctx, callerID, itemID); err != nil {
		return nil, err
	}
	v := &models.Vote{UserID: callerID, ItemID: itemID, IsUpvote: isUpvote}
	if err := s.repomanager.Votes(s.db).Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VoteService) RecomputeTally(ctx context.Context, itemID string) (models.Tally, error) {
	return s.repomanager.Votes(s.db).RecomputeTally(ctx, itemID)
}

func (s *VoteService) checkNotOwner(ctx context.Context, callerID, itemID string) error {
	owner, err := s.repomanager.Codes(s.db).Owner(ctx, itemID)
	if err != nil {
		return fmt.Errorf("error looking up code owner: %w", err)
	}
	if owner == callerID {
		return common.ErrSelfVoteForbidden
	}
	return nil
}

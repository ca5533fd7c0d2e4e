package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

// WaitlistService queues requests for collector tier access.
type WaitlistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewWaitlistService(db *sql.DB, m repomanager.RepositoryManager) *WaitlistService {
	return &WaitlistService{db: db, repomanager: m}
}

// Join adds email to the waitlist. userID is empty for callers that are not
// signed in; otherwise the caller's profile is marked pending in the same
// transaction. An email already on the list returns the existing entry
// together with common.ErrAlreadyOnWaitlist.
func (s *WaitlistService) Join(ctx context.Context, userID, email string) (*models.WaitlistEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, common.ErrorValidation
	}

	var entry *models.WaitlistEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Waitlist(tx)

		existing, err := repo.FindByEmail(ctx, email)
		if err == nil {
			entry = existing
			return common.ErrAlreadyOnWaitlist
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		e := &models.WaitlistEntry{Email: email, Status: common.WaitlistPending}
		if userID != "" {
			e.UserID = &userID
		}
		if err := repo.Create(ctx, e); err != nil {
			if common.ConstraintViolationOn(err, "email") {
				return common.ErrAlreadyOnWaitlist
			}
			return err
		}
		entry = e

		if userID == "" {
			return nil
		}
		err = s.repomanager.Profiles(tx).UpdateWaitlistStatus(ctx, userID, common.WaitlistPending)
		if errors.Is(err, common.ErrorNotFound) {
			// not provisioned yet; the entry still records the user
			return nil
		}
		return err
	})
	if err != nil {
		return entry, err
	}
	return entry, nil
}

// Package services holds the server's business logic on top of the
// repositories. Services receive the pool, the repository manager and the
// config, and open transactions with dbx.WithTx when several writes must
// land together.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/cryptox"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/server/auth"
	"github.com/dmitrijs2005/srefhub/internal/server/config"
	"github.com/dmitrijs2005/srefhub/internal/server/identity"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
)

const minPasswordLength = 8

type TokenPair struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// IdentityService is the identity provider: sign-up, sign-in, token
// rotation and sign-out. Sign-in and sign-out are announced on the bus.
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	bus                          *identity.Bus
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, bus *identity.Bus, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		bus:                          bus,
		logger:                       logger.With("module", "identity"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp stores a new identity. The username is kept as metadata only; the
// profile is created on first sign-in.
func (s *IdentityService) SignUp(ctx context.Context, email, password, username string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}

	salt := cryptox.NewSalt()
	ident := &models.Identity{
		Email:        email,
		UsernameHint: strings.TrimSpace(username),
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
	}

	created, err := s.repomanager.Identities(s.db).Create(ctx, ident)
	if err != nil {
		if common.ConstraintViolationOn(err, "email") {
			return nil, fmt.Errorf("%w: email", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating identity: %w", err)
	}
	return created, nil
}

// SignIn checks the password, mints tokens and publishes SIGNED_IN before
// returning, so the profile exists (or its failure is reported) by the time
// the caller gets its tokens.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	ident, err := s.repomanager.Identities(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same time as a real check
			cryptox.VerifyPassword([]byte(password), cryptox.NewSalt(), nil)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword([]byte(password), ident.Salt, ident.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, ident.ID, s.db)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, identity.Event{
		Kind: identity.SignedIn,
		Identity: identity.Identity{
			ID:               ident.ID,
			Email:            ident.Email,
			MetadataUsername: ident.UsernameHint,
		},
	})
	s.logger.Info(ctx, "signed in", "user_id", ident.ID)
	return pair, nil
}

// RefreshToken rotates refreshToken transactionally. Expired tokens yield
// ErrRefreshTokenExpired.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// SignOut revokes the caller's refresh token and publishes SIGNED_OUT.
func (s *IdentityService) SignOut(ctx context.Context, userID, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.UserID != userID {
		return common.ErrorForbidden
	}
	if err := repo.Delete(ctx, refreshToken); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}

	s.bus.Publish(ctx, identity.Event{Kind: identity.SignedOut, Identity: identity.Identity{ID: userID}})
	return nil
}

// Profile returns the caller's application profile.
func (s *IdentityService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repomanager.Profiles(s.db).Find(ctx, userID)
}

func (s *IdentityService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	expires := time.Now().Add(s.refreshTokenValidityDuration)
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, expires); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}

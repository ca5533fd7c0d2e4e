// Package services contains the terminal client's application services:
// signing in and out with a persisted session, and the catalog actions
// including voting through the ledger.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/srefhub/internal/client/client"
	"github.com/dmitrijs2005/srefhub/internal/client/session"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

// AuthService signs users in and out. The returned Session is the only
// record of who is signed in; callers pass it back explicitly.
type AuthService interface {
	Restore(ctx context.Context) (*session.Session, error)
	SignUp(ctx context.Context, email string, password []byte, username string) error
	SignIn(ctx context.Context, email string, password []byte) (*session.Session, error)
	SignOut(ctx context.Context, sess *session.Session) error
	Whoami(ctx context.Context, sess *session.Session) (*rpc.Profile, error)
	JoinWaitlist(ctx context.Context, sess *session.Session, email string) (*rpc.WaitlistEntry, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  *session.Store
	ledger *ledger.Ledger
	logger logging.Logger
}

func NewAuthService(c client.Client, store *session.Store, l *ledger.Ledger, logger logging.Logger) AuthService {
	a := &authService{client: c, store: store, ledger: l, logger: logger.With("module", "auth")}
	c.OnTokensRefreshed(a.persistTokens)
	return a
}

func (a *authService) persistTokens(ctx context.Context, accessToken, refreshToken string) {
	if err := a.store.SaveTokens(ctx, accessToken, refreshToken); err != nil {
		a.logger.Warn(ctx, "saving refreshed tokens failed", "error", err)
	}
}

// Restore loads the session saved by a previous run and hands its tokens to
// the client.
func (a *authService) Restore(ctx context.Context) (*session.Session, error) {
	sess, err := a.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess.SignedIn() {
		a.client.SetTokens(sess.AccessToken, sess.RefreshToken)
	}
	return sess, nil
}

func (a *authService) SignUp(ctx context.Context, email string, password []byte, username string) error {
	if _, err := a.client.SignUp(ctx, email, string(password), username); err != nil {
		return err
	}
	return nil
}

func (a *authService) SignIn(ctx context.Context, email string, password []byte) (*session.Session, error) {
	resp, err := a.client.SignIn(ctx, email, string(password))
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		UserID:       resp.UserID,
		Email:        email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if err := a.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return sess, nil
}

// SignOut always clears the local session. A server that cannot be reached
// is not an error; the refresh token simply expires there.
func (a *authService) SignOut(ctx context.Context, sess *session.Session) error {
	serverErr := a.client.SignOut(ctx)
	if client.IsUnavailable(serverErr) {
		a.logger.Info(ctx, "server unreachable, signed out locally")
		serverErr = nil
	}

	if sess != nil {
		a.ledger.Forget(sess.UserID)
		*sess = session.Session{}
	}
	if err := a.store.Clear(ctx); err != nil {
		return errors.Join(err, serverErr)
	}
	return serverErr
}

func (a *authService) Whoami(ctx context.Context, sess *session.Session) (*rpc.Profile, error) {
	if !sess.SignedIn() {
		return nil, common.ErrUnauthenticated
	}
	return a.client.Me(ctx)
}

// JoinWaitlist works signed in or not. A blank email falls back to the
// session's address.
func (a *authService) JoinWaitlist(ctx context.Context, sess *session.Session, email string) (*rpc.WaitlistEntry, error) {
	email = strings.TrimSpace(email)
	if email == "" && sess.SignedIn() {
		email = sess.Email
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	return a.client.JoinWaitlist(ctx, email)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.store.Close())
}

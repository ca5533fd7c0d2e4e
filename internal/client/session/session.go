// Package session keeps who is signed in on this machine. A Session is an
// explicit value passed to whatever needs it; the Store persists it in the
// local sqlite database so a restart does not sign the user out.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/srefhub/internal/client/migrations"
	sessionrepo "github.com/dmitrijs2005/srefhub/internal/client/repositories/session"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const dbFileName = "session.db"

const (
	keyUserID       = "user_id"
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Session is populated on sign-in and cleared on sign-out.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

func (s *Session) SignedIn() bool {
	return s != nil && s.UserID != "" && s.RefreshToken != ""
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// gooseUpContext is swapped out in tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Open creates dataDir if needed and opens (and migrates) the session
// database inside it.
func Open(ctx context.Context, dataDir string) (*Store, error) {
	dir, err := filex.EnsureDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session db migrations: %w", err)
	}
	return NewStore(db), nil
}

// Load returns the stored session, or an empty one when nobody is signed in.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	values, err := sessionrepo.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:       string(values[keyUserID]),
		Email:        string(values[keyEmail]),
		AccessToken:  string(values[keyAccessToken]),
		RefreshToken: string(values[keyRefreshToken]),
	}, nil
}

// Save replaces the stored session in one transaction.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionrepo.NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for k, v := range map[string]string{
			keyUserID:       sess.UserID,
			keyEmail:        sess.Email,
			keyAccessToken:  sess.AccessToken,
			keyRefreshToken: sess.RefreshToken,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveTokens updates only the token pair, after a refresh.
func (s *Store) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionrepo.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(refreshToken))
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return sessionrepo.NewSQLiteRepository(s.db).Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Package repomanager wires the PostgreSQL repositories together and runs the
// embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/migrations"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/codes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/folders"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/identities"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/images"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/saved"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/votes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/waitlist"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Identities(db dbx.DBTX) identities.Repository {
	return identities.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Codes(db dbx.DBTX) codes.Repository {
	return codes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Votes(db dbx.DBTX) votes.Repository {
	return votes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Saved(db dbx.DBTX) saved.Repository {
	return saved.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return folders.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Images(db dbx.DBTX) images.Repository {
	return images.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Waitlist(db dbx.DBTX) waitlist.Repository {
	return waitlist.NewPostgresRepository(db)
}

// gooseUpContext is swapped out in tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

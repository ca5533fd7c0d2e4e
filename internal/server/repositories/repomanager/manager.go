package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/codes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/folders"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/identities"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/images"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/saved"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/votes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/waitlist"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, so services can compose several of them under dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Identities(db dbx.DBTX) identities.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Codes(db dbx.DBTX) codes.Repository
	Votes(db dbx.DBTX) votes.Repository
	Saved(db dbx.DBTX) saved.Repository
	Folders(db dbx.DBTX) folders.Repository
	Images(db dbx.DBTX) images.Repository
	Waitlist(db dbx.DBTX) waitlist.Repository
}

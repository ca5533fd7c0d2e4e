package client

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

// Client is what the terminal client's services need from the server.
type Client interface {
	ledger.Gateway

	Close() error
	SetTokens(accessToken, refreshToken string)
	OnTokensRefreshed(fn func(ctx context.Context, accessToken, refreshToken string))

	Ping(ctx context.Context) error
	SignUp(ctx context.Context, email, password, username string) (string, error)
	SignIn(ctx context.Context, email, password string) (*rpc.TokenResponse, error)
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (*rpc.Profile, error)
	JoinWaitlist(ctx context.Context, email string) (*rpc.WaitlistEntry, error)

	CreateCode(ctx context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error)
	GetCode(ctx context.Context, id string) (*rpc.Code, error)
	SearchCodes(ctx context.Context, criteria *rpc.SearchCriteria) ([]rpc.Code, error)
	CopyCode(ctx context.Context, id string) (string, error)
	SaveCode(ctx context.Context, id string) error
	ListSaved(ctx context.Context) ([]rpc.Code, error)

	CreateFolder(ctx context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error)
	ListFolders(ctx context.Context) ([]rpc.Folder, error)
	AddToFolder(ctx context.Context, folderID, codeID string) error
	FolderCodes(ctx context.Context, folderID string) ([]rpc.Code, error)

	PresignImageUpload(ctx context.Context, codeID, contentType string) (*rpc.PresignImageResponse, error)

	Audit(ctx context.Context) (*rpc.AuditResponse, error)
	Reprovision(ctx context.Context) (*rpc.ReprovisionResponse, error)
}

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/srefhub/internal/client/client"
	"github.com/dmitrijs2005/srefhub/internal/client/session"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/filex"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/netx"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

type CatalogService interface {
	Add(ctx context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error)
	Show(ctx context.Context, id string) (*rpc.Code, error)
	Search(ctx context.Context, criteria *rpc.SearchCriteria) ([]rpc.Code, error)
	Copy(ctx context.Context, id string) (string, error)
	Save(ctx context.Context, id string) error
	Saved(ctx context.Context) ([]rpc.Code, error)

	Vote(ctx context.Context, sess *session.Session, id string, isUpvote bool) (*ledger.Result, error)
	Tally(ctx context.Context, id string) (ledger.Tally, error)

	CreateFolder(ctx context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error)
	Folders(ctx context.Context) ([]rpc.Folder, error)
	AddToFolder(ctx context.Context, folderID, codeID string) error
	FolderCodes(ctx context.Context, folderID string) ([]rpc.Code, error)

	UploadImage(ctx context.Context, codeID, path string) (*rpc.PresignImageResponse, error)

	Audit(ctx context.Context) (*rpc.AuditResponse, error)
	Reprovision(ctx context.Context) (*rpc.ReprovisionResponse, error)
}

// Seam for tests.
var uploadToPresignedURL = netx.UploadToPresignedURL

type catalogService struct {
	client client.Client
	ledger *ledger.Ledger

	mu     sync.Mutex
	owners map[string]string
}

func NewCatalogService(c client.Client, l *ledger.Ledger) CatalogService {
	return &catalogService{client: c, ledger: l, owners: make(map[string]string)}
}

// seen records owner and tally of codes the user has looked at, so a vote
// can be checked and applied locally without another round trip.
func (s *catalogService) seen(codes ...rpc.Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range codes {
		s.owners[c.ID] = c.UserID
		s.ledger.Seed(c.ID, ledger.Tally{Upvotes: c.Upvotes, Downvotes: c.Downvotes})
	}
}

func (s *catalogService) owner(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	owner, ok := s.owners[id]
	s.mu.Unlock()
	if ok {
		return owner, nil
	}

	c, err := s.client.GetCode(ctx, id)
	if err != nil {
		return "", err
	}
	s.seen(*c)
	return c.UserID, nil
}

func (s *catalogService) Add(ctx context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error) {
	c, err := s.client.CreateCode(ctx, in)
	if err != nil {
		return nil, err
	}
	s.seen(*c)
	return c, nil
}

func (s *catalogService) Show(ctx context.Context, id string) (*rpc.Code, error) {
	c, err := s.client.GetCode(ctx, id)
	if err != nil {
		return nil, err
	}
	s.seen(*c)
	return c, nil
}

func (s *catalogService) Search(ctx context.Context, criteria *rpc.SearchCriteria) ([]rpc.Code, error) {
	codes, err := s.client.SearchCodes(ctx, criteria)
	if err != nil {
		return nil, err
	}
	s.seen(codes...)
	return codes, nil
}

func (s *catalogService) Copy(ctx context.Context, id string) (string, error) {
	return s.client.CopyCode(ctx, id)
}

func (s *catalogService) Save(ctx context.Context, id string) error {
	return s.client.SaveCode(ctx, id)
}

func (s *catalogService) Saved(ctx context.Context) ([]rpc.Code, error) {
	codes, err := s.client.ListSaved(ctx)
	if err != nil {
		return nil, err
	}
	s.seen(codes...)
	return codes, nil
}

// Vote casts through the ledger. Signed-out users are refused by the ledger
// before anything is looked up.
func (s *catalogService) Vote(ctx context.Context, sess *session.Session, id string, isUpvote bool) (*ledger.Result, error) {
	var userID, owner string
	if sess.SignedIn() {
		userID = sess.UserID
		o, err := s.owner(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrVoteWriteFailed, err)
		}
		owner = o
	}
	return s.ledger.CastVote(ctx, userID, id, isUpvote, owner)
}

func (s *catalogService) Tally(ctx context.Context, id string) (ledger.Tally, error) {
	return s.ledger.Reconcile(ctx, id)
}

func (s *catalogService) CreateFolder(ctx context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error) {
	return s.client.CreateFolder(ctx, in)
}

func (s *catalogService) Folders(ctx context.Context) ([]rpc.Folder, error) {
	return s.client.ListFolders(ctx)
}

func (s *catalogService) AddToFolder(ctx context.Context, folderID, codeID string) error {
	return s.client.AddToFolder(ctx, folderID, codeID)
}

func (s *catalogService) FolderCodes(ctx context.Context, folderID string) ([]rpc.Code, error) {
	codes, err := s.client.FolderCodes(ctx, folderID)
	if err != nil {
		return nil, err
	}
	s.seen(codes...)
	return codes, nil
}

// UploadImage reserves a preview slot on the server and PUTs the file to
// the presigned URL it returns.
func (s *catalogService) UploadImage(ctx context.Context, codeID, path string) (*rpc.PresignImageResponse, error) {
	data, contentType, err := filex.ReadImage(path)
	if err != nil {
		return nil, err
	}

	slot, err := s.client.PresignImageUpload(ctx, codeID, contentType)
	if err != nil {
		return nil, err
	}

	if err := uploadToPresignedURL(ctx, slot.URL, contentType, data); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", path, err)
	}
	return slot, nil
}

func (s *catalogService) Audit(ctx context.Context) (*rpc.AuditResponse, error) {
	return s.client.Audit(ctx)
}

func (s *catalogService) Reprovision(ctx context.Context) (*rpc.ReprovisionResponse, error) {
	return s.client.Reprovision(ctx)
}

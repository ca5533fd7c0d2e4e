package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/services"
	"google.golang.org/grpc"
)

type identityService interface {
	SignUp(ctx context.Context, email, password, username string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SignOut(ctx context.Context, userID, refreshToken string) error
	Profile(ctx context.Context, userID string) (*models.Profile, error)
}

type voteService interface {
	FindVote(ctx context.Context, callerID, itemID string) (*models.Vote, error)
	InsertVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error)
	UpdateVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error)
	RecomputeTally(ctx context.Context, itemID string) (models.Tally, error)
}

type catalogService interface {
	CreateCode(ctx context.Context, ownerID string, c *models.Code) (*models.Code, error)
	GetCode(ctx context.Context, id string) (*models.Code, error)
	SearchCodes(ctx context.Context, criteria models.SearchCriteria) ([]*models.Code, error)
	CopyCode(ctx context.Context, id string) (string, error)
	SaveCode(ctx context.Context, userID, codeID string) error
	ListSaved(ctx context.Context, userID string) ([]*models.Code, error)
}

type folderService interface {
	CreateFolder(ctx context.Context, userID, name string, parentID *string, criteria *models.SearchCriteria) (*models.Folder, error)
	ListFolders(ctx context.Context, userID string) ([]*models.Folder, error)
	AddToFolder(ctx context.Context, userID, folderID, codeID string) error
	FolderCodes(ctx context.Context, userID, folderID string) ([]*models.Code, error)
}

type imageService interface {
	PresignImageUpload(ctx context.Context, userID, codeID, contentType string) (*services.ImageUpload, error)
	ImageURLs(ctx context.Context, images []models.CodeImage) ([]string, error)
}

type auditService interface {
	Audit(ctx context.Context, callerID string) (*services.AuditReport, error)
	Reprovision(ctx context.Context, callerID string) (int, error)
}

type waitlistService interface {
	Join(ctx context.Context, userID, email string) (*models.WaitlistEntry, error)
}

// Services is everything the gRPC layer delegates to.
type Services struct {
	Identity identityService
	Votes    voteService
	Catalog  catalogService
	Folders  folderService
	Images   imageService
	Audit    auditService
	Waitlist waitlistService
}

type GRPCServer struct {
	address   string
	identity  identityService
	votes     voteService
	catalog   catalogService
	folders   folderService
	images    imageService
	audit     auditService
	waitlist  waitlistService
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.CatalogServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, svc Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  svc.Identity,
		votes:     svc.Votes,
		catalog:   svc.Catalog,
		folders:   svc.Folders,
		images:    svc.Images,
		audit:     svc.Audit,
		waitlist:  svc.Waitlist,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	rpc.RegisterCatalogServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

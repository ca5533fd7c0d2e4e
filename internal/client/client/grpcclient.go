package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	api         *rpc.CatalogClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onRefresh    func(ctx context.Context, accessToken, refreshToken string)
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// OnTokensRefreshed registers fn to be called after a silent refresh so the
// new pair can be persisted.
func (s *GRPCClient) OnTokensRefreshed(fn func(ctx context.Context, accessToken, refreshToken string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, refreshToken := s.tokens()

	// public methods carry the token when there is one so the server can
	// tell who is asking, but never trigger a refresh
	if rpc.PublicMethods[method] {
		if accessToken != "" {
			ctx = withAccessToken(ctx, accessToken)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refreshToken == "" {
		return err
	}

	resp, rerr := s.api.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: refreshToken})
	if rerr != nil {
		return rerr
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	s.mu.RLock()
	onRefresh := s.onRefresh
	s.mu.RUnlock()
	if onRefresh != nil {
		onRefresh(ctx, resp.AccessToken, resp.RefreshToken)
	}

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL; nothing is dialled until the
// first call. Extra dial options are appended after the defaults.
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(c.timeoutInterceptor, c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = rpc.NewCatalogClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.Unavailable {
		return ErrUnavailable
	}
	return rpc.FromStatus(err)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	return s.mapError(s.api.Ping(ctx))
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, username string) (string, error) {
	resp, err := s.api.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.UserID, nil
}

// SignIn stores the returned token pair on the client.
func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (*rpc.TokenResponse, error) {
	resp, err := s.api.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	return resp, nil
}

// SignOut revokes the refresh token on the server and forgets both tokens
// locally, even when the server call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refreshToken := s.tokens()
	defer s.SetTokens("", "")
	if refreshToken == "" {
		return nil
	}
	return s.mapError(s.api.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: refreshToken}))
}

func (s *GRPCClient) Me(ctx context.Context) (*rpc.Profile, error) {
	p, err := s.api.Me(ctx)
	return p, s.mapError(err)
}

func toLedgerVote(v *rpc.Vote) *ledger.Vote {
	return &ledger.Vote{UserID: v.UserID, ItemID: v.ItemID, IsUpvote: v.IsUpvote, CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt}
}

// FindVote looks up the signed-in user's vote; the server binds it to the
// token, so userID only has to match the session.
func (s *GRPCClient) FindVote(ctx context.Context, userID, itemID string) (*ledger.Vote, error) {
	v, err := s.api.FindVote(ctx, &rpc.ItemRequest{ItemID: itemID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toLedgerVote(v), nil
}

func (s *GRPCClient) InsertVote(ctx context.Context, v *ledger.Vote) error {
	_, err := s.api.InsertVote(ctx, &rpc.VoteRequest{ItemID: v.ItemID, IsUpvote: v.IsUpvote})
	return s.mapError(err)
}

func (s *GRPCClient) UpdateVote(ctx context.Context, v *ledger.Vote) error {
	_, err := s.api.UpdateVote(ctx, &rpc.VoteRequest{ItemID: v.ItemID, IsUpvote: v.IsUpvote})
	return s.mapError(err)
}

func (s *GRPCClient) RecomputeTally(ctx context.Context, itemID string) (ledger.Tally, error) {
	t, err := s.api.RecomputeTally(ctx, &rpc.ItemRequest{ItemID: itemID})
	if err != nil {
		return ledger.Tally{}, s.mapError(err)
	}
	return ledger.Tally{Upvotes: t.Upvotes, Downvotes: t.Downvotes}, nil
}

func (s *GRPCClient) CreateCode(ctx context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error) {
	c, err := s.api.CreateCode(ctx, in)
	return c, s.mapError(err)
}

func (s *GRPCClient) GetCode(ctx context.Context, id string) (*rpc.Code, error) {
	c, err := s.api.GetCode(ctx, &rpc.ItemRequest{ItemID: id})
	return c, s.mapError(err)
}

func (s *GRPCClient) SearchCodes(ctx context.Context, criteria *rpc.SearchCriteria) ([]rpc.Code, error) {
	list, err := s.api.SearchCodes(ctx, criteria)
	if err != nil {
		return nil, s.mapError(err)
	}
	return list.Codes, nil
}

func (s *GRPCClient) CopyCode(ctx context.Context, id string) (string, error) {
	resp, err := s.api.CopyCode(ctx, &rpc.ItemRequest{ItemID: id})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Text, nil
}

func (s *GRPCClient) SaveCode(ctx context.Context, id string) error {
	return s.mapError(s.api.SaveCode(ctx, &rpc.ItemRequest{ItemID: id}))
}

func (s *GRPCClient) ListSaved(ctx context.Context) ([]rpc.Code, error) {
	list, err := s.api.ListSaved(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return list.Codes, nil
}

func (s *GRPCClient) CreateFolder(ctx context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error) {
	f, err := s.api.CreateFolder(ctx, in)
	return f, s.mapError(err)
}

func (s *GRPCClient) ListFolders(ctx context.Context) ([]rpc.Folder, error) {
	list, err := s.api.ListFolders(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return list.Folders, nil
}

func (s *GRPCClient) AddToFolder(ctx context.Context, folderID, codeID string) error {
	return s.mapError(s.api.AddToFolder(ctx, &rpc.AddToFolderRequest{FolderID: folderID, CodeID: codeID}))
}

func (s *GRPCClient) FolderCodes(ctx context.Context, folderID string) ([]rpc.Code, error) {
	list, err := s.api.FolderCodes(ctx, &rpc.FolderRequest{FolderID: folderID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return list.Codes, nil
}

func (s *GRPCClient) PresignImageUpload(ctx context.Context, codeID, contentType string) (*rpc.PresignImageResponse, error) {
	resp, err := s.api.PresignImageUpload(ctx, &rpc.PresignImageRequest{CodeID: codeID, ContentType: contentType})
	return resp, s.mapError(err)
}

func (s *GRPCClient) Audit(ctx context.Context) (*rpc.AuditResponse, error) {
	resp, err := s.api.Audit(ctx)
	return resp, s.mapError(err)
}

func (s *GRPCClient) Reprovision(ctx context.Context) (*rpc.ReprovisionResponse, error) {
	resp, err := s.api.Reprovision(ctx)
	return resp, s.mapError(err)
}

// IsUnavailable reports whether err means the server could not be reached
// or did not answer in time.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

func (s *GRPCClient) JoinWaitlist(ctx context.Context, email string) (*rpc.WaitlistEntry, error) {
	e, err := s.api.JoinWaitlist(ctx, &rpc.JoinWaitlistRequest{Email: email})
	return e, s.mapError(err)
}

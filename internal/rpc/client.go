package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

// CatalogClient is the typed client for srefhub.v1.Catalog. Every call is
// sent with the JSON content-subtype.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) Ping(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, MethodPing, &emptypb.Empty{}, opts)
	return err
}

func (c *CatalogClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *CatalogClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *CatalogClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *CatalogClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodSignOut, in, opts)
	return err
}

func (c *CatalogClient) Me(ctx context.Context, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, MethodMe, &Empty{}, opts)
}

func (c *CatalogClient) FindVote(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Vote, error) {
	return invoke[Vote](ctx, c.cc, MethodFindVote, in, opts)
}

func (c *CatalogClient) InsertVote(ctx context.Context, in *VoteRequest, opts ...grpc.CallOption) (*Vote, error) {
	return invoke[Vote](ctx, c.cc, MethodInsertVote, in, opts)
}

func (c *CatalogClient) UpdateVote(ctx context.Context, in *VoteRequest, opts ...grpc.CallOption) (*Vote, error) {
	return invoke[Vote](ctx, c.cc, MethodUpdateVote, in, opts)
}

func (c *CatalogClient) RecomputeTally(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Tally, error) {
	return invoke[Tally](ctx, c.cc, MethodRecomputeTally, in, opts)
}

func (c *CatalogClient) CreateCode(ctx context.Context, in *CreateCodeRequest, opts ...grpc.CallOption) (*Code, error) {
	return invoke[Code](ctx, c.cc, MethodCreateCode, in, opts)
}

func (c *CatalogClient) GetCode(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Code, error) {
	return invoke[Code](ctx, c.cc, MethodGetCode, in, opts)
}

func (c *CatalogClient) SearchCodes(ctx context.Context, in *SearchCriteria, opts ...grpc.CallOption) (*CodeList, error) {
	return invoke[CodeList](ctx, c.cc, MethodSearchCodes, in, opts)
}

func (c *CatalogClient) CopyCode(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*CopyCodeResponse, error) {
	return invoke[CopyCodeResponse](ctx, c.cc, MethodCopyCode, in, opts)
}

func (c *CatalogClient) SaveCode(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodSaveCode, in, opts)
	return err
}

func (c *CatalogClient) ListSaved(ctx context.Context, opts ...grpc.CallOption) (*CodeList, error) {
	return invoke[CodeList](ctx, c.cc, MethodListSaved, &Empty{}, opts)
}

func (c *CatalogClient) CreateFolder(ctx context.Context, in *CreateFolderRequest, opts ...grpc.CallOption) (*Folder, error) {
	return invoke[Folder](ctx, c.cc, MethodCreateFolder, in, opts)
}

func (c *CatalogClient) ListFolders(ctx context.Context, opts ...grpc.CallOption) (*FolderList, error) {
	return invoke[FolderList](ctx, c.cc, MethodListFolders, &Empty{}, opts)
}

func (c *CatalogClient) AddToFolder(ctx context.Context, in *AddToFolderRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodAddToFolder, in, opts)
	return err
}

func (c *CatalogClient) FolderCodes(ctx context.Context, in *FolderRequest, opts ...grpc.CallOption) (*CodeList, error) {
	return invoke[CodeList](ctx, c.cc, MethodFolderCodes, in, opts)
}

func (c *CatalogClient) PresignImageUpload(ctx context.Context, in *PresignImageRequest, opts ...grpc.CallOption) (*PresignImageResponse, error) {
	return invoke[PresignImageResponse](ctx, c.cc, MethodPresignImageUpload, in, opts)
}

func (c *CatalogClient) Audit(ctx context.Context, opts ...grpc.CallOption) (*AuditResponse, error) {
	return invoke[AuditResponse](ctx, c.cc, MethodAudit, &Empty{}, opts)
}

func (c *CatalogClient) Reprovision(ctx context.Context, opts ...grpc.CallOption) (*ReprovisionResponse, error) {
	return invoke[ReprovisionResponse](ctx, c.cc, MethodReprovision, &Empty{}, opts)
}

func (c *CatalogClient) JoinWaitlist(ctx context.Context, in *JoinWaitlistRequest, opts ...grpc.CallOption) (*WaitlistEntry, error) {
	return invoke[WaitlistEntry](ctx, c.cc, MethodJoinWaitlist, in, opts)
}

// Package rpc carries the Catalog service contract described in
// api/srefhub/v1/catalog.proto. Messages travel as JSON through the codec in
// this package, so the Go types here are hand-written rather than generated.
//
//go:generate protoc --proto_path=../../api --descriptor_set_out=../../api/srefhub/v1/catalog.pb --include_imports srefhub/v1/catalog.proto
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "srefhub.v1.Catalog"

const (
	MethodPing               = "Ping"
	MethodSignUp             = "SignUp"
	MethodSignIn             = "SignIn"
	MethodRefreshToken       = "RefreshToken"
	MethodSignOut            = "SignOut"
	MethodMe                 = "Me"
	MethodFindVote           = "FindVote"
	MethodInsertVote         = "InsertVote"
	MethodUpdateVote         = "UpdateVote"
	MethodRecomputeTally     = "RecomputeTally"
	MethodCreateCode         = "CreateCode"
	MethodGetCode            = "GetCode"
	MethodSearchCodes        = "SearchCodes"
	MethodCopyCode           = "CopyCode"
	MethodSaveCode           = "SaveCode"
	MethodListSaved          = "ListSaved"
	MethodCreateFolder       = "CreateFolder"
	MethodListFolders        = "ListFolders"
	MethodAddToFolder        = "AddToFolder"
	MethodFolderCodes        = "FolderCodes"
	MethodPresignImageUpload = "PresignImageUpload"
	MethodAudit              = "Audit"
	MethodReprovision        = "Reprovision"
	MethodJoinWaitlist       = "JoinWaitlist"
)

// FullMethod returns the "/service/method" path gRPC routes on.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods can be called without an access token. A valid token sent to
// one of them still identifies the caller.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):         true,
	FullMethod(MethodSignUp):       true,
	FullMethod(MethodSignIn):       true,
	FullMethod(MethodRefreshToken): true,
	FullMethod(MethodJoinWaitlist): true,
}

type CatalogServer interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)

	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	Me(context.Context, *Empty) (*Profile, error)

	FindVote(context.Context, *ItemRequest) (*Vote, error)
	InsertVote(context.Context, *VoteRequest) (*Vote, error)
	UpdateVote(context.Context, *VoteRequest) (*Vote, error)
	RecomputeTally(context.Context, *ItemRequest) (*Tally, error)

	CreateCode(context.Context, *CreateCodeRequest) (*Code, error)
	GetCode(context.Context, *ItemRequest) (*Code, error)
	SearchCodes(context.Context, *SearchCriteria) (*CodeList, error)
	CopyCode(context.Context, *ItemRequest) (*CopyCodeResponse, error)
	SaveCode(context.Context, *ItemRequest) (*Empty, error)
	ListSaved(context.Context, *Empty) (*CodeList, error)

	CreateFolder(context.Context, *CreateFolderRequest) (*Folder, error)
	ListFolders(context.Context, *Empty) (*FolderList, error)
	AddToFolder(context.Context, *AddToFolderRequest) (*Empty, error)
	FolderCodes(context.Context, *FolderRequest) (*CodeList, error)

	PresignImageUpload(context.Context, *PresignImageRequest) (*PresignImageResponse, error)

	Audit(context.Context, *Empty) (*AuditResponse, error)
	Reprovision(context.Context, *Empty) (*ReprovisionResponse, error)

	JoinWaitlist(context.Context, *JoinWaitlistRequest) (*WaitlistEntry, error)
}

// unary adapts a typed CatalogServer method to a grpc.MethodDesc, running
// it through the server's interceptor chain when there is one.
func unary[Req, Resp any](name string, call func(CatalogServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CatalogServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, CatalogServer.Ping),
		unary(MethodSignUp, CatalogServer.SignUp),
		unary(MethodSignIn, CatalogServer.SignIn),
		unary(MethodRefreshToken, CatalogServer.RefreshToken),
		unary(MethodSignOut, CatalogServer.SignOut),
		unary(MethodMe, CatalogServer.Me),
		unary(MethodFindVote, CatalogServer.FindVote),
		unary(MethodInsertVote, CatalogServer.InsertVote),
		unary(MethodUpdateVote, CatalogServer.UpdateVote),
		unary(MethodRecomputeTally, CatalogServer.RecomputeTally),
		unary(MethodCreateCode, CatalogServer.CreateCode),
		unary(MethodGetCode, CatalogServer.GetCode),
		unary(MethodSearchCodes, CatalogServer.SearchCodes),
		unary(MethodCopyCode, CatalogServer.CopyCode),
		unary(MethodSaveCode, CatalogServer.SaveCode),
		unary(MethodListSaved, CatalogServer.ListSaved),
		unary(MethodCreateFolder, CatalogServer.CreateFolder),
		unary(MethodListFolders, CatalogServer.ListFolders),
		unary(MethodAddToFolder, CatalogServer.AddToFolder),
		unary(MethodFolderCodes, CatalogServer.FolderCodes),
		unary(MethodPresignImageUpload, CatalogServer.PresignImageUpload),
		unary(MethodAudit, CatalogServer.Audit),
		unary(MethodReprovision, CatalogServer.Reprovision),
		unary(MethodJoinWaitlist, CatalogServer.JoinWaitlist),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "srefhub/v1/catalog",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&ServiceDesc, srv)
}

package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"google.golang.org/protobuf/types/known/emptypb"
)

// fail converts a service error into a status and logs the ones that had to
// be reported as Internal.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st, mapped := rpc.ToStatus(err)
	if !mapped {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
	return st
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) SignUp(ctx context.Context, req *rpc.SignUpRequest) (*rpc.SignUpResponse, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "sign up", err)
	}

	id, err := s.identity.SignUp(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		return nil, s.fail(ctx, "sign up", err)
	}

	s.logger.Info(ctx, "Signed up", "user_id", id.ID)
	return &rpc.SignUpResponse{UserID: id.ID}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *rpc.SignInRequest) (*rpc.TokenResponse, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "sign in", err)
	}

	tokens, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.fail(ctx, "sign in", err)
	}

	return &rpc.TokenResponse{UserID: tokens.UserID, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *rpc.RefreshTokenRequest) (*rpc.TokenResponse, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}

	tokens, err := s.identity.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.fail(ctx, "refresh token", err)
	}

	return &rpc.TokenResponse{UserID: tokens.UserID, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "sign out", err)
	}

	if err := s.identity.SignOut(ctx, userID, req.RefreshToken); err != nil {
		return nil, s.fail(ctx, "sign out", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *rpc.Empty) (*rpc.Profile, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.identity.Profile(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "profile", err)
	}
	return toProfile(p), nil
}

func (s *GRPCServer) FindVote(ctx context.Context, req *rpc.ItemRequest) (*rpc.Vote, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "find vote", err)
	}

	v, err := s.votes.FindVote(ctx, userID, req.ItemID)
	if err != nil {
		return nil, s.fail(ctx, "find vote", err)
	}
	return toVote(v), nil
}

func (s *GRPCServer) InsertVote(ctx context.Context, req *rpc.VoteRequest) (*rpc.Vote, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "insert vote", err)
	}

	v, err := s.votes.InsertVote(ctx, userID, req.ItemID, req.IsUpvote)
	if err != nil {
		return nil, s.fail(ctx, "insert vote", err)
	}
	return toVote(v), nil
}

func (s *GRPCServer) UpdateVote(ctx context.Context, req *rpc.VoteRequest) (*rpc.Vote, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "update vote", err)
	}

	v, err := s.votes.UpdateVote(ctx, userID, req.ItemID, req.IsUpvote)
	if err != nil {
		return nil, s.fail(ctx, "update vote", err)
	}
	return toVote(v), nil
}

func (s *GRPCServer) RecomputeTally(ctx context.Context, req *rpc.ItemRequest) (*rpc.Tally, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "recompute tally", err)
	}

	t, err := s.votes.RecomputeTally(ctx, req.ItemID)
	if err != nil {
		return nil, s.fail(ctx, "recompute tally", err)
	}
	return &rpc.Tally{Upvotes: t.Upvotes, Downvotes: t.Downvotes}, nil
}

func (s *GRPCServer) CreateCode(ctx context.Context, req *rpc.CreateCodeRequest) (*rpc.Code, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "create code", err)
	}

	c, err := s.catalog.CreateCode(ctx, userID, &models.Code{
		CodeValue: req.CodeValue,
		SVVersion: req.SVVersion,
		Title:     req.Title,
		Tags:      req.Tags,
	})
	if err != nil {
		return nil, s.fail(ctx, "create code", err)
	}

	s.logger.Info(ctx, "Code created", "code_id", c.ID, "user_id", userID)
	out := toCode(c)
	return &out, nil
}

func (s *GRPCServer) GetCode(ctx context.Context, req *rpc.ItemRequest) (*rpc.Code, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "get code", err)
	}

	c, err := s.catalog.GetCode(ctx, req.ItemID)
	if err != nil {
		return nil, s.fail(ctx, "get code", err)
	}

	out := toCode(c)
	if len(c.Images) > 0 {
		urls, err := s.images.ImageURLs(ctx, c.Images)
		if err != nil {
			// the code is still useful without previews
			s.logger.Warn(ctx, "presigning preview images failed", "code_id", c.ID, "error", err)
		} else {
			out.ImageURLs = urls
		}
	}
	return &out, nil
}

func (s *GRPCServer) SearchCodes(ctx context.Context, req *rpc.SearchCriteria) (*rpc.CodeList, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "search codes", err)
	}

	codes, err := s.catalog.SearchCodes(ctx, fromCriteria(req))
	if err != nil {
		return nil, s.fail(ctx, "search codes", err)
	}
	return toCodeList(codes), nil
}

func (s *GRPCServer) CopyCode(ctx context.Context, req *rpc.ItemRequest) (*rpc.CopyCodeResponse, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "copy code", err)
	}

	text, err := s.catalog.CopyCode(ctx, req.ItemID)
	if err != nil {
		return nil, s.fail(ctx, "copy code", err)
	}
	return &rpc.CopyCodeResponse{Text: text}, nil
}

func (s *GRPCServer) SaveCode(ctx context.Context, req *rpc.ItemRequest) (*rpc.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "save code", err)
	}

	if err := s.catalog.SaveCode(ctx, userID, req.ItemID); err != nil {
		return nil, s.fail(ctx, "save code", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) ListSaved(ctx context.Context, _ *rpc.Empty) (*rpc.CodeList, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	codes, err := s.catalog.ListSaved(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list saved", err)
	}
	return toCodeList(codes), nil
}

func (s *GRPCServer) CreateFolder(ctx context.Context, req *rpc.CreateFolderRequest) (*rpc.Folder, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "create folder", err)
	}

	var criteria *models.SearchCriteria
	if req.Criteria != nil {
		if err := rpc.Validate(req.Criteria); err != nil {
			return nil, s.fail(ctx, "create folder", err)
		}
		c := fromCriteria(req.Criteria)
		c.Limit, c.Offset = 0, 0
		criteria = &c
	}

	f, err := s.folders.CreateFolder(ctx, userID, req.Name, req.ParentID, criteria)
	if err != nil {
		return nil, s.fail(ctx, "create folder", err)
	}
	out := toFolder(f)
	return &out, nil
}

func (s *GRPCServer) ListFolders(ctx context.Context, _ *rpc.Empty) (*rpc.FolderList, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	folders, err := s.folders.ListFolders(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "list folders", err)
	}

	out := &rpc.FolderList{Folders: make([]rpc.Folder, 0, len(folders))}
	for _, f := range folders {
		out.Folders = append(out.Folders, toFolder(f))
	}
	return out, nil
}

func (s *GRPCServer) AddToFolder(ctx context.Context, req *rpc.AddToFolderRequest) (*rpc.Empty, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "add to folder", err)
	}

	if err := s.folders.AddToFolder(ctx, userID, req.FolderID, req.CodeID); err != nil {
		return nil, s.fail(ctx, "add to folder", err)
	}
	return &rpc.Empty{}, nil
}

func (s *GRPCServer) FolderCodes(ctx context.Context, req *rpc.FolderRequest) (*rpc.CodeList, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "folder codes", err)
	}

	codes, err := s.folders.FolderCodes(ctx, userID, req.FolderID)
	if err != nil {
		return nil, s.fail(ctx, "folder codes", err)
	}
	return toCodeList(codes), nil
}

func (s *GRPCServer) PresignImageUpload(ctx context.Context, req *rpc.PresignImageRequest) (*rpc.PresignImageResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "presign image", err)
	}

	up, err := s.images.PresignImageUpload(ctx, userID, req.CodeID, req.ContentType)
	if err != nil {
		return nil, s.fail(ctx, "presign image", err)
	}
	return &rpc.PresignImageResponse{StorageKey: up.Image.StorageKey, Position: up.Image.Position, URL: up.URL}, nil
}

func (s *GRPCServer) Audit(ctx context.Context, _ *rpc.Empty) (*rpc.AuditResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.audit.Audit(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "audit", err)
	}

	out := &rpc.AuditResponse{
		Orphans:  make([]rpc.OrphanIdentity, 0, len(report.Orphans)),
		Failures: make([]rpc.ProvisioningFailure, 0, len(report.Failures)),
	}
	for _, o := range report.Orphans {
		out.Orphans = append(out.Orphans, rpc.OrphanIdentity{ID: o.ID, Email: o.Email, CreatedAt: o.CreatedAt})
	}
	for _, f := range report.Failures {
		out.Failures = append(out.Failures, rpc.ProvisioningFailure{IdentityID: f.IdentityID, Error: f.Error, At: f.At})
	}
	return out, nil
}

// Reprovision reports per-identity failures in the response body; only a
// failure to start (auth, listing orphans) is an RPC error.
func (s *GRPCServer) Reprovision(ctx context.Context, _ *rpc.Empty) (*rpc.ReprovisionResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.audit.Reprovision(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrProfileCreationFailed) {
			s.logger.Warn(ctx, "reprovision incomplete", "created", created, "error", err)
			return &rpc.ReprovisionResponse{Created: created, Error: err.Error()}, nil
		}
		return nil, s.fail(ctx, "reprovision", err)
	}
	return &rpc.ReprovisionResponse{Created: created}, nil
}

// JoinWaitlist is public. A signed-in caller's profile is marked pending as
// well; anyone else just gets an entry for the email.
func (s *GRPCServer) JoinWaitlist(ctx context.Context, req *rpc.JoinWaitlistRequest) (*rpc.WaitlistEntry, error) {
	if err := rpc.Validate(req); err != nil {
		return nil, s.fail(ctx, "join waitlist", err)
	}

	userID, _ := ctx.Value(userIDKey).(string)
	e, err := s.waitlist.Join(ctx, userID, req.Email)
	if err != nil {
		return nil, s.fail(ctx, "join waitlist", err)
	}

	s.logger.Info(ctx, "Joined waitlist", "entry_id", e.ID, "signed_in", userID != "")
	return toWaitlistEntry(e), nil
}

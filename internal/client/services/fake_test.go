package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/srefhub/internal/client/session"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
	"github.com/stretchr/testify/require"
)

// fakeClient keeps votes and codes in memory and counts calls per method.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	codes map[string]rpc.Code
	votes map[[2]string]bool

	access, refresh string
	onRefresh       func(ctx context.Context, accessToken, refreshToken string)

	signInResp *rpc.TokenResponse
	signInErr  error
	signOutErr error
	getErr     error
	presign    *rpc.PresignImageResponse
	presignCT  string

	waitlistEmail string
	waitlistErr   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls: make(map[string]int),
		codes: make(map[string]rpc.Code),
		votes: make(map[[2]string]bool),
	}
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) FindVote(ctx context.Context, userID, itemID string) (*ledger.Vote, error) {
	f.hit("FindVote")
	f.mu.Lock()
	defer f.mu.Unlock()
	up, ok := f.votes[[2]string{userID, itemID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &ledger.Vote{UserID: userID, ItemID: itemID, IsUpvote: up}, nil
}

func (f *fakeClient) InsertVote(ctx context.Context, v *ledger.Vote) error {
	f.hit("InsertVote")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes[[2]string{v.UserID, v.ItemID}] = v.IsUpvote
	return nil
}

func (f *fakeClient) UpdateVote(ctx context.Context, v *ledger.Vote) error {
	f.hit("UpdateVote")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes[[2]string{v.UserID, v.ItemID}] = v.IsUpvote
	return nil
}

func (f *fakeClient) RecomputeTally(ctx context.Context, itemID string) (ledger.Tally, error) {
	f.hit("RecomputeTally")
	f.mu.Lock()
	defer f.mu.Unlock()
	var t ledger.Tally
	for k, up := range f.votes {
		if k[1] != itemID {
			continue
		}
		if up {
			t.Upvotes++
		} else {
			t.Downvotes++
		}
	}
	return t, nil
}

func (f *fakeClient) Close() error { f.hit("Close"); return nil }

func (f *fakeClient) SetTokens(accessToken, refreshToken string) {
	f.access, f.refresh = accessToken, refreshToken
}

func (f *fakeClient) OnTokensRefreshed(fn func(ctx context.Context, accessToken, refreshToken string)) {
	f.onRefresh = fn
}

func (f *fakeClient) Ping(ctx context.Context) error { f.hit("Ping"); return nil }

func (f *fakeClient) SignUp(ctx context.Context, email, password, username string) (string, error) {
	f.hit("SignUp")
	return "new-user", nil
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) (*rpc.TokenResponse, error) {
	f.hit("SignIn")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.SetTokens(f.signInResp.AccessToken, f.signInResp.RefreshToken)
	return f.signInResp, nil
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.hit("SignOut")
	f.SetTokens("", "")
	return f.signOutErr
}

func (f *fakeClient) Me(ctx context.Context) (*rpc.Profile, error) {
	f.hit("Me")
	return &rpc.Profile{ID: "u1", Username: "ann"}, nil
}

func (f *fakeClient) JoinWaitlist(ctx context.Context, email string) (*rpc.WaitlistEntry, error) {
	f.hit("JoinWaitlist")
	f.mu.Lock()
	f.waitlistEmail = email
	f.mu.Unlock()
	if f.waitlistErr != nil {
		return nil, f.waitlistErr
	}
	return &rpc.WaitlistEntry{ID: "w1", Email: email, Status: common.WaitlistPending}, nil
}

func (f *fakeClient) CreateCode(ctx context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error) {
	f.hit("CreateCode")
	c := rpc.Code{ID: "new-code", UserID: "u1", CodeValue: in.CodeValue, Title: in.Title}
	f.mu.Lock()
	f.codes[c.ID] = c
	f.mu.Unlock()
	return &c, nil
}

func (f *fakeClient) GetCode(ctx context.Context, id string) (*rpc.Code, error) {
	f.hit("GetCode")
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeClient) SearchCodes(ctx context.Context, criteria *rpc.SearchCriteria) ([]rpc.Code, error) {
	f.hit("SearchCodes")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rpc.Code
	for _, c := range f.codes {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClient) CopyCode(ctx context.Context, id string) (string, error) {
	f.hit("CopyCode")
	return "--sref " + f.codes[id].CodeValue, nil
}

func (f *fakeClient) SaveCode(ctx context.Context, id string) error {
	f.hit("SaveCode")
	return nil
}

func (f *fakeClient) ListSaved(ctx context.Context) ([]rpc.Code, error) {
	f.hit("ListSaved")
	return nil, nil
}

func (f *fakeClient) CreateFolder(ctx context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error) {
	f.hit("CreateFolder")
	return &rpc.Folder{ID: "f1", Name: in.Name, IsSmart: in.Criteria != nil}, nil
}

func (f *fakeClient) ListFolders(ctx context.Context) ([]rpc.Folder, error) {
	f.hit("ListFolders")
	return []rpc.Folder{{ID: "f1", Name: "picks"}}, nil
}

func (f *fakeClient) AddToFolder(ctx context.Context, folderID, codeID string) error {
	f.hit("AddToFolder")
	return nil
}

func (f *fakeClient) FolderCodes(ctx context.Context, folderID string) ([]rpc.Code, error) {
	f.hit("FolderCodes")
	return nil, nil
}

func (f *fakeClient) PresignImageUpload(ctx context.Context, codeID, contentType string) (*rpc.PresignImageResponse, error) {
	f.hit("PresignImageUpload")
	f.presignCT = contentType
	return f.presign, nil
}

func (f *fakeClient) Audit(ctx context.Context) (*rpc.AuditResponse, error) {
	f.hit("Audit")
	return &rpc.AuditResponse{}, nil
}

func (f *fakeClient) Reprovision(ctx context.Context) (*rpc.ReprovisionResponse, error) {
	f.hit("Reprovision")
	return &rpc.ReprovisionResponse{Created: 2}, nil
}

func openStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

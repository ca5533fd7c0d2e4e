package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/srefhub/internal/client/config"
	"github.com/dmitrijs2005/srefhub/internal/client/session"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/rpc"
)

type fakeAuth struct {
	signUpEmail, signUpUser string
	signUpPass              []byte
	signInErr               error
	signOutCalled           bool
	closed                  bool
	pingErr                 error
	waitlistEmail           string
	waitlistErr             error
}

func (f *fakeAuth) Restore(context.Context) (*session.Session, error) { return &session.Session{}, nil }

func (f *fakeAuth) SignUp(_ context.Context, email string, password []byte, username string) error {
	f.signUpEmail, f.signUpUser = email, username
	f.signUpPass = append([]byte(nil), password...)
	return nil
}

func (f *fakeAuth) SignIn(_ context.Context, email string, _ []byte) (*session.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &session.Session{UserID: "u1", Email: email, AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeAuth) SignOut(_ context.Context, sess *session.Session) error {
	f.signOutCalled = true
	*sess = session.Session{}
	return nil
}

func (f *fakeAuth) Whoami(_ context.Context, sess *session.Session) (*rpc.Profile, error) {
	if !sess.SignedIn() {
		return nil, common.ErrUnauthenticated
	}
	return &rpc.Profile{Username: "ann", Email: "ann@example.com", Tier: "miner", WaitlistStatus: "none"}, nil
}

func (f *fakeAuth) JoinWaitlist(_ context.Context, sess *session.Session, email string) (*rpc.WaitlistEntry, error) {
	if email == "" && sess.SignedIn() {
		email = sess.Email
	}
	f.waitlistEmail = email
	if f.waitlistErr != nil {
		return nil, f.waitlistErr
	}
	return &rpc.WaitlistEntry{ID: "w1", Email: email, Status: common.WaitlistPending}, nil
}

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

func (f *fakeAuth) Close(context.Context) error { f.closed = true; return nil }

type fakeCatalog struct {
	added    *rpc.CreateCodeRequest
	criteria *rpc.SearchCriteria
	folder   *rpc.CreateFolderRequest
	codes    []rpc.Code
	vote     *ledger.Result
	voteErr  error
	voteSess *session.Session
	reprov   *rpc.ReprovisionResponse
}

func (f *fakeCatalog) Add(_ context.Context, in *rpc.CreateCodeRequest) (*rpc.Code, error) {
	f.added = in
	return &rpc.Code{ID: "c1", CodeValue: in.CodeValue, Title: in.Title}, nil
}

func (f *fakeCatalog) Show(_ context.Context, id string) (*rpc.Code, error) {
	for _, c := range f.codes {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCatalog) Search(_ context.Context, c *rpc.SearchCriteria) ([]rpc.Code, error) {
	f.criteria = c
	return f.codes, nil
}

func (f *fakeCatalog) Copy(_ context.Context, id string) (string, error) {
	return "--sref 42 --sv 6", nil
}

func (f *fakeCatalog) Save(context.Context, string) error { return common.ErrAlreadySaved }

func (f *fakeCatalog) Saved(context.Context) ([]rpc.Code, error) { return f.codes, nil }

func (f *fakeCatalog) Vote(_ context.Context, sess *session.Session, _ string, _ bool) (*ledger.Result, error) {
	f.voteSess = sess
	return f.vote, f.voteErr
}

func (f *fakeCatalog) Tally(context.Context, string) (ledger.Tally, error) {
	return ledger.Tally{Upvotes: 3, Downvotes: 1}, nil
}

func (f *fakeCatalog) CreateFolder(_ context.Context, in *rpc.CreateFolderRequest) (*rpc.Folder, error) {
	f.folder = in
	return &rpc.Folder{ID: "f1", Name: in.Name}, nil
}

func (f *fakeCatalog) Folders(context.Context) ([]rpc.Folder, error) {
	parent := "f1"
	return []rpc.Folder{{ID: "f1", Name: "picks"}, {ID: "f2", Name: "moody", IsSmart: true, ParentID: &parent}}, nil
}

func (f *fakeCatalog) AddToFolder(context.Context, string, string) error { return nil }

func (f *fakeCatalog) FolderCodes(context.Context, string) ([]rpc.Code, error) { return f.codes, nil }

func (f *fakeCatalog) UploadImage(context.Context, string, string) (*rpc.PresignImageResponse, error) {
	return &rpc.PresignImageResponse{StorageKey: "codes/c1/k", Position: 2}, nil
}

func (f *fakeCatalog) Audit(context.Context) (*rpc.AuditResponse, error) {
	return &rpc.AuditResponse{Orphans: []rpc.OrphanIdentity{{ID: "i1", Email: "x@example.com"}}}, nil
}

func (f *fakeCatalog) Reprovision(context.Context) (*rpc.ReprovisionResponse, error) {
	return f.reprov, nil
}

// newTestApp returns an App over fakes whose prompts are answered from
// input, one line per prompt.
func newTestApp(t *testing.T, input string) (*App, *fakeAuth, *fakeCatalog, *bytes.Buffer) {
	t.Helper()
	fa, fc := &fakeAuth{}, &fakeCatalog{}
	out := &bytes.Buffer{}
	a := &App{
		auth:    fa,
		catalog: fc,
		session: &session.Session{},
		logger:  logging.Nop{},
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}

	origPW := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte("password1"), nil }
	t.Cleanup(func() { getPassword = origPW })

	return a, fa, fc, out
}

func signIn(a *App) {
	a.session = &session.Session{UserID: "u1", Email: "ann@example.com", AccessToken: "a", RefreshToken: "r"}
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

package grpc

import (
	"context"

	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/services"
)

type fakeIdentity struct {
	signUpResp *models.Identity
	signUpErr  error
	tokens     *services.TokenPair
	tokensErr  error
	signOutErr error
	profile    *models.Profile

	signedOutUser string
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, username string) (*models.Identity, error) {
	return f.signUpResp, f.signUpErr
}
func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*services.TokenPair, error) {
	return f.tokens, f.tokensErr
}
func (f *fakeIdentity) RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	return f.tokens, f.tokensErr
}
func (f *fakeIdentity) SignOut(ctx context.Context, userID, refreshToken string) error {
	f.signedOutUser = userID
	return f.signOutErr
}
func (f *fakeIdentity) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if f.profile == nil {
		return nil, common.ErrorNotFound
	}
	return f.profile, nil
}

// fakeVotes keeps votes in memory and refuses self votes on owned items.
type fakeVotes struct {
	owners map[string]string
	votes  map[string]*models.Vote
	err    error
}

func newFakeVotes() *fakeVotes {
	return &fakeVotes{owners: map[string]string{}, votes: map[string]*models.Vote{}}
}

func (f *fakeVotes) FindVote(ctx context.Context, callerID, itemID string) (*models.Vote, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.votes[callerID+"/"+itemID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeVotes) InsertVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error) {
	if f.owners[itemID] == callerID {
		return nil, common.ErrSelfVoteForbidden
	}
	key := callerID + "/" + itemID
	if _, ok := f.votes[key]; ok {
		return nil, &common.ConstraintViolationError{Field: "user_id,item_id", Constraint: "votes_user_id_item_id_key"}
	}
	v := &models.Vote{UserID: callerID, ItemID: itemID, IsUpvote: isUpvote}
	f.votes[key] = v
	return v, nil
}

func (f *fakeVotes) UpdateVote(ctx context.Context, callerID, itemID string, isUpvote bool) (*models.Vote, error) {
	v, ok := f.votes[callerID+"/"+itemID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	v.IsUpvote = isUpvote
	return v, nil
}

func (f *fakeVotes) RecomputeTally(ctx context.Context, itemID string) (models.Tally, error) {
	var t models.Tally
	for _, v := range f.votes {
		if v.ItemID != itemID {
			continue
		}
		if v.IsUpvote {
			t.Upvotes++
		} else {
			t.Downvotes++
		}
	}
	return t, nil
}

type fakeCatalog struct {
	code      *models.Code
	err       error
	searched  models.SearchCriteria
	savedBy   []string
	saveErr   error
	createdBy string
}

func (f *fakeCatalog) CreateCode(ctx context.Context, ownerID string, c *models.Code) (*models.Code, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdBy = ownerID
	out := *c
	out.ID = "c-new"
	out.UserID = ownerID
	return &out, nil
}
func (f *fakeCatalog) GetCode(ctx context.Context, id string) (*models.Code, error) {
	if f.code == nil {
		return nil, common.ErrorNotFound
	}
	return f.code, f.err
}
func (f *fakeCatalog) SearchCodes(ctx context.Context, criteria models.SearchCriteria) ([]*models.Code, error) {
	f.searched = criteria
	if f.code == nil {
		return nil, f.err
	}
	return []*models.Code{f.code}, f.err
}
func (f *fakeCatalog) CopyCode(ctx context.Context, id string) (string, error) {
	if f.code == nil {
		return "", common.ErrorNotFound
	}
	return f.code.SrefText(), nil
}
func (f *fakeCatalog) SaveCode(ctx context.Context, userID, codeID string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedBy = append(f.savedBy, userID)
	return nil
}
func (f *fakeCatalog) ListSaved(ctx context.Context, userID string) ([]*models.Code, error) {
	if f.code == nil {
		return nil, nil
	}
	return []*models.Code{f.code}, nil
}

type fakeFolders struct {
	created  *models.Folder
	criteria *models.SearchCriteria
	err      error
}

func (f *fakeFolders) CreateFolder(ctx context.Context, userID, name string, parentID *string, criteria *models.SearchCriteria) (*models.Folder, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.criteria = criteria
	f.created = &models.Folder{ID: "f1", UserID: userID, Name: name, ParentID: parentID, IsSmart: criteria != nil, Criteria: criteria}
	return f.created, nil
}
func (f *fakeFolders) ListFolders(ctx context.Context, userID string) ([]*models.Folder, error) {
	if f.created == nil {
		return nil, nil
	}
	return []*models.Folder{f.created}, nil
}
func (f *fakeFolders) AddToFolder(ctx context.Context, userID, folderID, codeID string) error {
	return f.err
}
func (f *fakeFolders) FolderCodes(ctx context.Context, userID, folderID string) ([]*models.Code, error) {
	return nil, f.err
}

type fakeImages struct {
	urls   []string
	urlErr error
	upload *services.ImageUpload
	err    error
}

func (f *fakeImages) PresignImageUpload(ctx context.Context, userID, codeID, contentType string) (*services.ImageUpload, error) {
	return f.upload, f.err
}
func (f *fakeImages) ImageURLs(ctx context.Context, images []models.CodeImage) ([]string, error) {
	return f.urls, f.urlErr
}

type fakeAudit struct {
	report  *services.AuditReport
	created int
	err     error
}

func (f *fakeAudit) Audit(ctx context.Context, callerID string) (*services.AuditReport, error) {
	return f.report, f.err
}
func (f *fakeAudit) Reprovision(ctx context.Context, callerID string) (int, error) {
	return f.created, f.err
}

type fakeWaitlist struct {
	err        error
	lastUserID string
	lastEmail  string
}

func (f *fakeWaitlist) Join(_ context.Context, userID, email string) (*models.WaitlistEntry, error) {
	f.lastUserID, f.lastEmail = userID, email
	if f.err != nil {
		return nil, f.err
	}
	e := &models.WaitlistEntry{ID: "w1", Email: email, Status: common.WaitlistPending}
	if userID != "" {
		e.UserID = &userID
	}
	return e, nil
}

type fakes struct {
	identity *fakeIdentity
	votes    *fakeVotes
	catalog  *fakeCatalog
	folders  *fakeFolders
	images   *fakeImages
	audit    *fakeAudit
	waitlist *fakeWaitlist
}

func newFakes() *fakes {
	return &fakes{
		identity: &fakeIdentity{},
		votes:    newFakeVotes(),
		catalog:  &fakeCatalog{},
		folders:  &fakeFolders{},
		images:   &fakeImages{},
		audit:    &fakeAudit{},
		waitlist: &fakeWaitlist{},
	}
}

func newServer(f *fakes) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, Services{
		Identity: f.identity,
		Votes:    f.votes,
		Catalog:  f.catalog,
		Folders:  f.folders,
		Images:   f.images,
		Audit:    f.audit,
		Waitlist: f.waitlist,
	}, "k")
}

func asUser(userID string) context.Context {
	return context.WithValue(context.Background(), userIDKey, userID)
}

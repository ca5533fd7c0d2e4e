package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/srefhub/internal/common"
	"github.com/dmitrijs2005/srefhub/internal/dbx"
	"github.com/dmitrijs2005/srefhub/internal/server/models"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/codes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/folders"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/identities"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/images"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/saved"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/votes"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/waitlist"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// fakeRepoManager hands out the same in-memory repos regardless of whether
// it is given the pool or a transaction.
type fakeRepoManager struct {
	repomanager.RepositoryManager
	identities *fakeIdentities
	profiles   *fakeProfiles
	refresh    *fakeRefreshTokens
	codes      *fakeCodes
	votes      *fakeVotes
	saved      *fakeSaved
	folders    *fakeFolders
	images     *fakeImages
	waitlist   *fakeWaitlist
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		identities: &fakeIdentities{byEmail: map[string]*models.Identity{}},
		profiles:   &fakeProfiles{m: map[string]*models.Profile{}},
		refresh:    &fakeRefreshTokens{m: map[string]*models.RefreshToken{}},
		codes:      &fakeCodes{m: map[string]*models.Code{}},
		votes:      &fakeVotes{m: map[[2]string]*models.Vote{}},
		saved:      &fakeSaved{m: map[[2]string]bool{}},
		folders:    &fakeFolders{m: map[string]*models.Folder{}, members: map[string][]string{}},
		images:     &fakeImages{},
		waitlist:   &fakeWaitlist{m: map[string]*models.WaitlistEntry{}},
	}
}

func (m *fakeRepoManager) Identities(dbx.DBTX) identities.Repository       { return m.identities }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.profiles }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Codes(dbx.DBTX) codes.Repository                 { return m.codes }
func (m *fakeRepoManager) Votes(dbx.DBTX) votes.Repository                 { return m.votes }
func (m *fakeRepoManager) Saved(dbx.DBTX) saved.Repository                 { return m.saved }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository             { return m.folders }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository               { return m.images }
func (m *fakeRepoManager) Waitlist(dbx.DBTX) waitlist.Repository           { return m.waitlist }

type fakeIdentities struct {
	byEmail   map[string]*models.Identity
	createErr error
	getErr    error
	orphans   []*models.Identity
}

func (f *fakeIdentities) Create(_ context.Context, i *models.Identity) (*models.Identity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[i.Email]; ok {
		return nil, &common.ConstraintViolationError{Field: "email", Constraint: "identities_email_key"}
	}
	i.ID = "id-" + i.Email
	i.CreatedAt = time.Now()
	f.byEmail[i.Email] = i
	return i, nil
}

func (f *fakeIdentities) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	i, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return i, nil
}

func (f *fakeIdentities) GetByID(_ context.Context, id string) (*models.Identity, error) {
	for _, i := range f.byEmail {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentities) ListWithoutProfile(context.Context) ([]*models.Identity, error) {
	return f.orphans, nil
}

type fakeProfiles struct {
	mu        sync.Mutex
	m         map[string]*models.Profile
	findErr   error
	createErr error
}

func (f *fakeProfiles) UpdateWaitlistStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.m[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.WaitlistStatus = status
	return nil
}

func (f *fakeProfiles) Find(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Create(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.m[p.ID]; ok {
		return &common.ConstraintViolationError{Field: "id", Constraint: "profiles_pkey"}
	}
	for _, other := range f.m {
		if other.Username == p.Username {
			return &common.ConstraintViolationError{Field: "username", Constraint: "profiles_username_key"}
		}
	}
	cp := *p
	f.m[p.ID] = &cp
	return nil
}

func (f *fakeProfiles) List(context.Context) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, p := range f.m {
		out = append(out, p)
	}
	return out, nil
}

type fakeRefreshTokens struct {
	m         map[string]*models.RefreshToken
	createErr error
}

func (f *fakeRefreshTokens) Create(_ context.Context, userID, token string, expires time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.m[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (f *fakeRefreshTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	rt, ok := f.m[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeRefreshTokens) Delete(_ context.Context, token string) error {
	if _, ok := f.m[token]; !ok {
		return common.ErrorNotFound
	}
	delete(f.m, token)
	return nil
}

func (f *fakeRefreshTokens) DeleteForUser(_ context.Context, userID string) error {
	for k, v := range f.m {
		if v.UserID == userID {
			delete(f.m, k)
		}
	}
	return nil
}

type fakeCodes struct {
	m        map[string]*models.Code
	searched []models.SearchCriteria
	result   []*models.Code
}

func (f *fakeCodes) Create(_ context.Context, c *models.Code) error {
	c.ID = "c" + c.CodeValue
	f.m[c.ID] = c
	return nil
}

func (f *fakeCodes) Get(_ context.Context, id string) (*models.Code, error) {
	c, ok := f.m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeCodes) Owner(ctx context.Context, id string) (string, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

func (f *fakeCodes) Search(_ context.Context, criteria models.SearchCriteria) ([]*models.Code, error) {
	f.searched = append(f.searched, criteria)
	return f.result, nil
}

func (f *fakeCodes) IncrementCopyCount(ctx context.Context, id string) (*models.Code, error) {
	c, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.CopyCount++
	return c, nil
}

func (f *fakeCodes) IncrementSaveCount(ctx context.Context, id string) error {
	c, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	c.SaveCount++
	return nil
}

type fakeVotes struct {
	m     map[[2]string]*models.Vote
	tally models.Tally
}

func (f *fakeVotes) Find(_ context.Context, userID, itemID string) (*models.Vote, error) {
	v, ok := f.m[[2]string{userID, itemID}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeVotes) Create(_ context.Context, v *models.Vote) error {
	k := [2]string{v.UserID, v.ItemID}
	if _, ok := f.m[k]; ok {
		return &common.ConstraintViolationError{Field: "user_id,item_id", Constraint: "votes_user_id_item_id_key"}
	}
	f.m[k] = v
	return nil
}

func (f *fakeVotes) Update(_ context.Context, v *models.Vote) error {
	k := [2]string{v.UserID, v.ItemID}
	if _, ok := f.m[k]; !ok {
		return common.ErrorNotFound
	}
	f.m[k] = v
	return nil
}

func (f *fakeVotes) RecomputeTally(context.Context, string) (models.Tally, error) {
	return f.tally, nil
}

type fakeSaved struct {
	m map[[2]string]bool
}

func (f *fakeSaved) Create(_ context.Context, userID, codeID string) error {
	k := [2]string{userID, codeID}
	if f.m[k] {
		return &common.ConstraintViolationError{Field: "user_id,code_id", Constraint: "saved_codes_user_id_code_id_key"}
	}
	f.m[k] = true
	return nil
}

func (f *fakeSaved) List(context.Context, string) ([]*models.Code, error) {
	return nil, nil
}

type fakeFolders struct {
	m       map[string]*models.Folder
	members map[string][]string
}

func (f *fakeFolders) Create(_ context.Context, folder *models.Folder) error {
	folder.ID = "f-" + folder.Name
	f.m[folder.ID] = folder
	return nil
}

func (f *fakeFolders) Get(_ context.Context, userID, id string) (*models.Folder, error) {
	folder, ok := f.m[id]
	if !ok || folder.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return folder, nil
}

func (f *fakeFolders) List(_ context.Context, userID string) ([]*models.Folder, error) {
	var out []*models.Folder
	for _, folder := range f.m {
		if folder.UserID == userID {
			out = append(out, folder)
		}
	}
	return out, nil
}

func (f *fakeFolders) AddCode(_ context.Context, folderID, codeID string) error {
	for _, c := range f.members[folderID] {
		if c == codeID {
			return &common.ConstraintViolationError{Field: "folder_id,code_id"}
		}
	}
	f.members[folderID] = append(f.members[folderID], codeID)
	return nil
}

func (f *fakeFolders) Codes(_ context.Context, folderID string) ([]*models.Code, error) {
	var out []*models.Code
	for _, id := range f.members[folderID] {
		out = append(out, &models.Code{ID: id})
	}
	return out, nil
}

type fakeImages struct {
	keys []string
	err  error
}

func (f *fakeImages) Append(_ context.Context, codeID, storageKey string) (*models.CodeImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, storageKey)
	return &models.CodeImage{ID: "img", CodeID: codeID, StorageKey: storageKey, Position: len(f.keys) - 1}, nil
}

// fakeWaitlist keeps entries by email. raceOnCreate simulates a concurrent
// insert that wins between the lookup and the insert.
type fakeWaitlist struct {
	m            map[string]*models.WaitlistEntry
	raceOnCreate bool
}

func (f *fakeWaitlist) FindByEmail(_ context.Context, email string) (*models.WaitlistEntry, error) {
	e, ok := f.m[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeWaitlist) Create(_ context.Context, e *models.WaitlistEntry) error {
	if _, ok := f.m[e.Email]; ok || f.raceOnCreate {
		return &common.ConstraintViolationError{Field: "email", Constraint: "waitlist_email_key"}
	}
	e.ID = "wl-" + e.Email
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.m[e.Email] = e
	return nil
}

package rpc

import "time"

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Username string `json:"username,omitempty" validate:"omitempty,max=32"`
}

type SignUpResponse struct {
	UserID string `json:"user_id"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type Empty struct{}

type Profile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Tier           string    `json:"tier"`
	WaitlistStatus string    `json:"waitlist_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ItemRequest addresses a code by id (get, copy, save, vote lookup,
// tally recount).
type ItemRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
}

type Vote struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	IsUpvote  bool      `json:"is_upvote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	IsUpvote bool   `json:"is_upvote"`
}

type Tally struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

type CreateCodeRequest struct {
	CodeValue string   `json:"code_value" validate:"required,max=64"`
	SVVersion int      `json:"sv_version,omitempty" validate:"omitempty,min=1,max=99"`
	Title     string   `json:"title" validate:"required,max=200"`
	Tags      []string `json:"tags,omitempty" validate:"max=20,dive,max=32"`
}

type Code struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CodeValue string    `json:"code_value"`
	SVVersion int       `json:"sv_version"`
	Title     string    `json:"title"`
	CopyCount int64     `json:"copy_count"`
	Upvotes   int64     `json:"upvotes"`
	Downvotes int64     `json:"downvotes"`
	SaveCount int64     `json:"save_count"`
	Tags      []string  `json:"tags,omitempty"`
	ImageURLs []string  `json:"image_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CodeList struct {
	Codes []Code `json:"codes"`
}

// SearchCriteria is both the search request and a smart folder's stored
// filter. Every field is optional.
type SearchCriteria struct {
	Query      string     `json:"query,omitempty" validate:"max=200"`
	Tags       []string   `json:"tags,omitempty" validate:"max=20,dive,max=32"`
	SVVersion  *int       `json:"sv_version,omitempty" validate:"omitempty,min=1,max=99"`
	UpvotesMin *int64     `json:"upvotes_min,omitempty" validate:"omitempty,min=0"`
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	Limit      int        `json:"limit,omitempty" validate:"min=0,max=100"`
	Offset     int        `json:"offset,omitempty" validate:"min=0"`
}

type CopyCodeResponse struct {
	Text string `json:"text"`
}

type CreateFolderRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	ParentID *string         `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Criteria *SearchCriteria `json:"criteria,omitempty"`
}

type Folder struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ParentID  *string         `json:"parent_id,omitempty"`
	IsSmart   bool            `json:"is_smart"`
	Criteria  *SearchCriteria `json:"criteria,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type FolderList struct {
	Folders []Folder `json:"folders"`
}

type FolderRequest struct {
	FolderID string `json:"folder_id" validate:"required,uuid"`
}

type AddToFolderRequest struct {
	FolderID string `json:"folder_id" validate:"required,uuid"`
	CodeID   string `json:"code_id" validate:"required,uuid"`
}

type PresignImageRequest struct {
	CodeID      string `json:"code_id" validate:"required,uuid"`
	ContentType string `json:"content_type,omitempty" validate:"omitempty,max=100"`
}

type PresignImageResponse struct {
	StorageKey string `json:"storage_key"`
	Position   int    `json:"position"`
	URL        string `json:"url"`
}

type OrphanIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ProvisioningFailure struct {
	IdentityID string    `json:"identity_id"`
	Error      string    `json:"error"`
	At         time.Time `json:"at"`
}

type AuditResponse struct {
	Orphans  []OrphanIdentity      `json:"orphans"`
	Failures []ProvisioningFailure `json:"failures"`
}

type ReprovisionResponse struct {
	Created int    `json:"created"`
	Error   string `json:"error,omitempty"`
}

type JoinWaitlistRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type WaitlistEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

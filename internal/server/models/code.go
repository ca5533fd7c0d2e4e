package models

import (
	"fmt"
	"time"
)

// Code is a catalog item. Upvotes/Downvotes are a denormalised tally that
// can always be rebuilt from the votes table.
type Code struct {
	ID        string
	UserID    string
	CodeValue string
	SVVersion int
	Title     string
	CopyCount int64
	Upvotes   int64
	Downvotes int64
	SaveCount int64
	Tags      []string
	Images    []CodeImage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SrefText is the string users paste into their prompt.
func (c *Code) SrefText() string {
	return fmt.Sprintf("--sref %s --sv %d", c.CodeValue, c.SVVersion)
}

// CodeImage is a preview image stored in object storage under StorageKey.
type CodeImage struct {
	ID         string
	CodeID     string
	StorageKey string
	Position   int
	CreatedAt  time.Time
}

// Vote is the server-of-record vote row.
type Vote struct {
	ID        string
	UserID    string
	ItemID    string
	IsUpvote  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tally is the pair of counters recomputed from votes.
type Tally struct {
	Upvotes   int64
	Downvotes int64
}

// DateRange bounds created_at; zero values are open ends.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SearchCriteria is plain field filtering; it is also what smart folders store.
type SearchCriteria struct {
	Query      string     `json:"query,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	SVVersion  *int       `json:"sv_version,omitempty"`
	UpvotesMin *int64     `json:"upvotes_min,omitempty"`
	DateRange  *DateRange `json:"date_range,omitempty"`
	Limit      int        `json:"-"`
	Offset     int        `json:"-"`
}

package models

import "time"

// Folder groups codes for one user. Smart folders have no members of their
// own; their contents are whatever Criteria matches at read time.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	ParentID  *string
	IsSmart   bool
	Criteria  *SearchCriteria
	CreatedAt time.Time
	UpdatedAt time.Time
}

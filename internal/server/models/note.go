package models

import "time"

// Note is a single note/blog entry. ContentKey is the trimmed, case-folded
// form of Content; the storage layer keeps it globally unique.
type Note struct {
	ID         string
	UserID     string
	Content    string
	ContentKey string
	Important  bool
	Comments   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Owner is populated by read paths that join the owning user.
	Owner *UserSummary
}

// NotePatch is a partial update. Nil fields are left untouched; a patch with
// both fields nil is rejected by the service ("nothing to update").
type NotePatch struct {
	Content   *string
	Important *bool
}

// NoteFilter restricts listings. Important filters by the importance flag
// when set; NewestFirst selects creation-time descending order (the GraphQL
// contract) instead of insertion order (the REST contract).
type NoteFilter struct {
	Important   *bool
	NewestFirst bool
}

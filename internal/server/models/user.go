package models

import "time"

// User is a registered account. PasswordHash never leaves the server;
// Summary produces the redacted shape both adapters expose.
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	NoteIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the owner view attached to notes: credential fields excluded.
type UserSummary struct {
	ID       string
	Username string
	Name     string
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Name: u.Name}
}

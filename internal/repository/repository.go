// Package repository defines the storage contracts the service layer depends
// on. Two implementations exist: sqlite (production) and memory (tests and
// zero-config runs). Services only ever see these interfaces.
package repository

import (
	"context"
	"time"

	"github.com/nadirh/cannalog/internal/model"
)

// ListOptions is offset/limit pagination for entry listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// EntryRepository persists consumption entries.
//
// Every read and mutation is scoped by the owning user id. An id that exists
// but belongs to another user behaves exactly like a nonexistent id
// (apperror.ErrNotFound); implementations must never reveal the difference.
type EntryRepository interface {
	// CreateEntry assigns ID, CreatedAt and UpdatedAt on the passed entry.
	CreateEntry(ctx context.Context, entry *model.Entry) error
	GetEntry(ctx context.Context, id, userID int64) (*model.Entry, error)
	// ListEntries returns the user's entries ordered by event timestamp
	// descending.
	ListEntries(ctx context.Context, userID int64, opts ListOptions) ([]model.Entry, error)
	// ListEntriesSince returns the user's entries with Timestamp >= since,
	// for the rolling statistics window.
	ListEntriesSince(ctx context.Context, userID int64, since time.Time) ([]model.Entry, error)
	// UpdateEntry writes all mutable fields of the entry, matching on
	// (entry.ID, entry.UserID).
	UpdateEntry(ctx context.Context, entry *model.Entry) error
	DeleteEntry(ctx context.Context, id, userID int64) error
}

// UserRepository persists accounts.
type UserRepository interface {
	// CreateUser assigns ID, CreatedAt and UpdatedAt on the passed user.
	// Returns apperror.ErrConflict if username or email is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser writes username and email, matching on user.ID.
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUser removes the user; their entries go with them (cascade).
	DeleteUser(ctx context.Context, id int64) error
}

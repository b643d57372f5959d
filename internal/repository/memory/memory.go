// Package memory implements the repository interfaces on in-process maps.
//
// It exists for two reasons: fast, dependency-free service tests, and
// zero-config runs (DB_PATH unset) where durability doesn't matter. It obeys
// the same contracts as the sqlite store (owner scoping, uniqueness,
// not-found semantics), so the two are interchangeable behind the
// repository interfaces.
//
// All state is guarded by a single RWMutex; ids come from atomic counters so
// allocation is monotonic even under concurrent creates.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/model"
	"github.com/nadirh/cannalog/internal/repository"
)

// Compile-time interface checks.
var (
	_ repository.EntryRepository = (*Store)(nil)
	_ repository.UserRepository  = (*Store)(nil)
)

// Store holds users and entries keyed by id.
type Store struct {
	mu      sync.RWMutex
	users   map[int64]*model.User
	entries map[int64]*model.Entry

	nextUserID  atomic.Int64
	nextEntryID atomic.Int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[int64]*model.User),
		entries: make(map[int64]*model.Entry),
	}
}

// --- UserRepository ---

func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Uniqueness check and insert under the same lock, so concurrent
	// registrations of the same name can't both pass.
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("username or email already exists")
		}
	}

	user.ID = s.nextUserID.Add(1)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	result := *u
	return &result, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user")
}

func (s *Store) UpdateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return apperror.NotFound("user")
	}

	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict("username or email already exists")
		}
	}

	existing.Username = user.Username
	existing.Email = user.Email
	existing.UpdatedAt = time.Now()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return apperror.NotFound("user")
	}
	delete(s.users, id)

	// Cascade: the user's entries go with them.
	for entryID, e := range s.entries {
		if e.UserID == id {
			delete(s.entries, entryID)
		}
	}
	return nil
}

// --- EntryRepository ---

func (s *Store) CreateEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextEntryID.Add(1)
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Activities == nil {
		entry.Activities = []string{}
	}

	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *Store) GetEntry(_ context.Context, id, userID int64) (*model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		// A foreign entry is reported exactly like a missing one.
		return nil, apperror.NotFound("entry")
	}
	result := *e
	return &result, nil
}

func (s *Store) ListEntries(_ context.Context, userID int64, opts repository.ListOptions) ([]model.Entry, error) {
	s.mu.RLock()
	owned := s.collectOwned(userID)
	s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	if offset >= len(owned) {
		return []model.Entry{}, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *Store) ListEntriesSince(_ context.Context, userID int64, since time.Time) ([]model.Entry, error) {
	s.mu.RLock()
	owned := s.collectOwned(userID)
	s.mu.RUnlock()

	recent := make([]model.Entry, 0, len(owned))
	for _, e := range owned {
		if !e.Timestamp.Before(since) {
			recent = append(recent, e)
		}
	}
	return recent, nil
}

func (s *Store) UpdateEntry(_ context.Context, entry *model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return apperror.NotFound("entry")
	}

	entry.UpdatedAt = time.Now()
	entry.CreatedAt = existing.CreatedAt
	stored := *entry
	s.entries[entry.ID] = &stored
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return apperror.NotFound("entry")
	}
	delete(s.entries, id)
	return nil
}

// collectOwned copies the user's entries sorted newest-first.
// Callers must hold at least the read lock.
func (s *Store) collectOwned(userID int64) []model.Entry {
	owned := make([]model.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.UserID == userID {
			owned = append(owned, *e)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].Timestamp.Equal(owned[j].Timestamp) {
			// Stable tie-break so pagination never skips or repeats.
			return owned[i].ID > owned[j].ID
		}
		return owned[i].Timestamp.After(owned[j].Timestamp)
	})
	return owned
}

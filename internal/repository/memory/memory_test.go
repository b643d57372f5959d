package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/model"
	"github.com/nadirh/cannalog/internal/repository"
)

func seedUser(t *testing.T, s *Store, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func seedEntry(t *testing.T, s *Store, userID int64, ts time.Time) *model.Entry {
	t.Helper()
	entry := &model.Entry{
		UserID:    userID,
		THCmg:     5,
		Timestamp: ts,
		Date:      ts.Format("2006-01-02"),
		Time:      ts.Format("15:04"),
		Method:    "edible",
		Amount:    "5",
	}
	if err := s.CreateEntry(context.Background(), entry); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	return entry
}

func TestUserConflict(t *testing.T) {
	s := New()
	seedUser(t, s, "alice")

	err := s.CreateUser(context.Background(), &model.User{
		Username: "alice", Email: "x@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate username error = %v, want ErrConflict", err)
	}
}

func TestEntryOwnerScoping(t *testing.T) {
	s := New()
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	entry := seedEntry(t, s, alice.ID, time.Now())

	if _, err := s.GetEntry(context.Background(), entry.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-user GetEntry error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry(context.Background(), entry.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-user DeleteEntry error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetEntry(context.Background(), entry.ID, alice.ID); err != nil {
		t.Errorf("owner GetEntry error = %v", err)
	}
}

func TestListOrderingAndPagination(t *testing.T) {
	s := New()
	alice := seedUser(t, s, "alice")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEntry(t, s, alice.ID, base.Add(time.Duration(i)*time.Hour))
	}

	all, err := s.ListEntries(context.Background(), alice.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Errorf("entries out of order at %d", i)
		}
	}

	page, err := s.ListEntries(context.Background(), alice.ID, repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(page) != 1 {
		t.Errorf("page len = %d, want 1", len(page))
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := New()
	alice := seedUser(t, s, "alice")
	seedEntry(t, s, alice.ID, time.Now())
	seedEntry(t, s, alice.ID, time.Now())

	if err := s.DeleteUser(context.Background(), alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	entries, err := s.ListEntries(context.Background(), alice.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries survived user deletion: %d", len(entries))
	}
}

func TestConcurrentCreates_UniqueMonotonicIDs(t *testing.T) {
	s := New()
	alice := seedUser(t, s, "alice")

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry := &model.Entry{UserID: alice.ID, Timestamp: time.Now(), Method: "vape"}
			if err := s.CreateEntry(context.Background(), entry); err != nil {
				t.Errorf("CreateEntry: %v", err)
				return
			}
			ids <- entry.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	s := New()
	alice := seedUser(t, s, "alice")
	entry := seedEntry(t, s, alice.ID, time.Now())
	created := entry.CreatedAt

	entry.Notes = "changed"
	if err := s.UpdateEntry(context.Background(), entry); err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	found, err := s.GetEntry(context.Background(), entry.ID, alice.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !found.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v -> %v", created, found.CreatedAt)
	}
	if found.Notes != "changed" {
		t.Errorf("Notes = %q, want %q", found.Notes, "changed")
	}
}

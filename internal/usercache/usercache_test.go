package usercache

import (
	"context"
	"testing"

	"github.com/jaredmoss/exchange-core/internal/account"
)

type fakeSource struct {
	userID   uint64
	hash     string
	found    bool
	err      error
	lookedUp bool
}

func (f *fakeSource) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	f.lookedUp = true
	return f.userID, f.hash, f.found, f.err
}

func hashedAccount(t *testing.T, userID uint64, username, password string) *account.Account {
	t.Helper()
	a, err := account.New(userID, username, password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	return a
}

func TestAuthenticateCacheHit(t *testing.T) {
	c := New(10)
	a := hashedAccount(t, 1, "alice", "hunter2")
	if err := c.Insert(a); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	src := &fakeSource{}
	got, err := c.Authenticate(context.Background(), "alice", "hunter2", src, func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != a {
		t.Fatalf("expected the resident account to be returned")
	}
	if src.lookedUp {
		t.Fatalf("expected no persistence lookup on a cache hit")
	}
}

func TestAuthenticateCacheHitBadPassword(t *testing.T) {
	c := New(10)
	a := hashedAccount(t, 1, "alice", "hunter2")
	c.Insert(a)

	_, err := c.Authenticate(context.Background(), "alice", "wrong", &fakeSource{}, func() {})
	if err != ErrBadPassword {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
}

func TestAuthenticateCacheMissLoadsAndInserts(t *testing.T) {
	c := New(10)
	a := hashedAccount(t, 1, "alice", "hunter2")
	src := &fakeSource{userID: 1, hash: a.PasswordHash, found: true}

	got, err := c.Authenticate(context.Background(), "alice", "hunter2", src, func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != 1 {
		t.Fatalf("expected loaded account user_id 1, got %d", got.UserID)
	}
	if _, ok := c.Get("alice"); !ok {
		t.Fatalf("expected account cached after successful authenticate")
	}
}

func TestAuthenticateNoUser(t *testing.T) {
	c := New(10)
	src := &fakeSource{found: false}
	_, err := c.Authenticate(context.Background(), "ghost", "x", src, func() {})
	if err != ErrNoUser {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

// S5: cache capacity 2, both slots hold modified accounts.
// Authenticating a third user found only in the store must fail-soft,
// force a flush, and succeed on retry.
func TestEvictionInterlockForcesFlushAndRetries(t *testing.T) {
	c := New(2)
	a1 := hashedAccount(t, 1, "alice", "p1")
	a2 := hashedAccount(t, 2, "bob", "p2")
	a1.Modified = true
	a2.Modified = true
	c.Insert(a1)
	c.Insert(a2)

	a3 := hashedAccount(t, 3, "carol", "p3")
	src := &fakeSource{userID: 3, hash: a3.PasswordHash, found: true}

	flushed := false
	forceFlush := func() {
		flushed = true
		// Forced flush drains buffers, which resets every account's
		// modified flag (spec.md §4.5).
		c.ResetAllModified()
	}

	got, err := c.Authenticate(context.Background(), "carol", "p3", src, forceFlush)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !flushed {
		t.Fatalf("expected forceFlush to be invoked")
	}
	if got.Username != "carol" {
		t.Fatalf("expected carol resident after retry, got %+v", got)
	}
	if c.Len() != 2 {
		t.Fatalf("expected cache to stay at capacity 2 after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("carol"); !ok {
		t.Fatalf("expected carol in cache after successful retry")
	}
}

func TestInsertEvictsCleanAccountFirst(t *testing.T) {
	c := New(2)
	clean := hashedAccount(t, 1, "alice", "p1")
	dirty := hashedAccount(t, 2, "bob", "p2")
	dirty.Modified = true
	c.Insert(clean)
	c.Insert(dirty)

	third := hashedAccount(t, 3, "carol", "p3")
	if err := c.Insert(third); err != nil {
		t.Fatalf("expected eviction of the clean account to succeed, got %v", err)
	}
	if _, ok := c.Get("alice"); ok {
		t.Fatalf("expected the clean account to be evicted")
	}
	if _, ok := c.Get("bob"); !ok {
		t.Fatalf("expected the dirty account to remain resident")
	}
}

func TestGetByUserID(t *testing.T) {
	c := New(10)
	a := hashedAccount(t, 42, "alice", "p1")
	c.Insert(a)

	got, ok := c.GetByUserID(42)
	if !ok || got.Username != "alice" {
		t.Fatalf("expected reverse lookup to resolve to alice, got ok=%v got=%+v", ok, got)
	}
}

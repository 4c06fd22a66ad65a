// Package usercache implements the bounded user cache (spec.md §4.4):
// username -> Account with a dirty-aware eviction interlock and a
// reverse user_id -> username index.
package usercache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/api/logger"
)

// ErrNoUser and ErrBadPassword are the two AuthFail kinds from
// spec.md §7.
var (
	ErrNoUser      = errors.New("usercache: no such user")
	ErrBadPassword = errors.New("usercache: incorrect password")
)

// CredentialSource is the slice of the persistence port (C7) that
// Authenticate needs on a cache miss: spec.md §4.6's auth_lookup
// operation.
type CredentialSource interface {
	AuthLookup(ctx context.Context, username string) (userID uint64, passwordHash string, found bool, err error)
}

// ErrNoEvictionCandidate is returned by insert when the cache is at
// the eviction watermark and every resident account is modified
// (dirty). The caller must force a buffer flush (spec.md §4.4) and
// retry.
var ErrNoEvictionCandidate = errors.New("usercache: no clean account to evict")

// Watermark is the fraction of capacity at which insert attempts
// eviction before admitting a new entry (spec.md §4.4, §5).
const Watermark = 0.9

// Cache is a bounded map of active users, keyed by username, with a
// reverse user_id index. Not safe for concurrent use: the dispatcher
// is the sole writer (spec.md §5).
type Cache struct {
	capacity int
	byUser   map[string]*account.Account
	byID     map[uint64]string
}

// New returns an empty cache with the given capacity (C in spec.md §3).
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		byUser:   make(map[string]*account.Account),
		byID:     make(map[uint64]string),
	}
}

// Len returns the number of resident accounts.
func (c *Cache) Len() int { return len(c.byUser) }

// Get returns the resident account for username, if any.
func (c *Cache) Get(username string) (*account.Account, bool) {
	a, ok := c.byUser[username]
	return a, ok
}

// GetByUserID returns the resident account for a user_id, if any.
func (c *Cache) GetByUserID(userID uint64) (*account.Account, bool) {
	username, ok := c.byID[userID]
	if !ok {
		return nil, false
	}
	return c.Get(username)
}

// Insert admits a into the cache, evicting a clean (modified==false)
// entry first if the cache is at or above Watermark*capacity. Returns
// ErrNoEvictionCandidate if eviction was required but every resident
// account is dirty; the caller must force-flush the persistence
// buffers (which clears every modified flag) and retry.
func (c *Cache) Insert(a *account.Account) error {
	if float64(len(c.byUser)) >= Watermark*float64(c.capacity) {
		if !c.evictOne() {
			return ErrNoEvictionCandidate
		}
	}
	c.byUser[a.Username] = a
	c.byID[a.UserID] = a.Username
	return nil
}

func (c *Cache) evictOne() bool {
	for username, a := range c.byUser {
		if !a.Modified {
			delete(c.byUser, username)
			delete(c.byID, a.UserID)
			logger.Debug("usercache.evict", map[string]interface{}{"username": username})
			return true
		}
	}
	return false
}

// ResetAllModified clears the modified flag on every resident
// account, called by the dispatcher after a successful order buffer
// drain (spec.md §4.5 "Buffer state rule", §8 invariant 4).
func (c *Cache) ResetAllModified() {
	for _, a := range c.byUser {
		a.Modified = false
	}
}

// insertWithRetry implements spec.md §4.4's eviction interlock: on
// ErrNoEvictionCandidate, invoke forceFlush (expected to drain the
// persistence buffers and clear every account's modified flag, which
// this cache's accounts are part of) and retry once. A second failure
// is an Invariant/Violation: forceFlush is documented to guarantee a
// candidate.
func (c *Cache) insertWithRetry(a *account.Account, forceFlush func()) error {
	if err := c.Insert(a); err != nil {
		if err != ErrNoEvictionCandidate {
			return err
		}
		logger.Warn("usercache.insert forcing flush", map[string]interface{}{"username": a.Username})
		forceFlush()
		if err := c.Insert(a); err != nil {
			panic(fmt.Sprintf("usercache: insert still failed after forced flush: %v", err))
		}
	}
	return nil
}

// Authenticate looks the user up in cache first; on a hit it verifies
// the password against the resident account. On a miss it consults
// source for the credential record; a found-and-matching record is
// cache-inserted (via the eviction interlock) before being returned.
func (c *Cache) Authenticate(ctx context.Context, username, password string, source CredentialSource, forceFlush func()) (*account.Account, error) {
	if a, ok := c.Get(username); ok {
		if !a.CheckPassword(password) {
			return nil, ErrBadPassword
		}
		return a, nil
	}

	userID, hash, found, err := source.AuthLookup(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("usercache: auth_lookup: %w", err)
	}
	if !found {
		return nil, ErrNoUser
	}

	a := account.NewWithHash(userID, username, hash)
	if !a.CheckPassword(password) {
		return nil, ErrBadPassword
	}

	if err := c.insertWithRetry(a, forceFlush); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadForUpdate is identical to Authenticate minus the credential
// check: used by the trade-update path once a counter-party's
// user_id is already known and the account needs to be resident to
// receive a fill.
func (c *Cache) LoadForUpdate(ctx context.Context, username string, loader func(ctx context.Context, username string) (*account.Account, error), forceFlush func()) (*account.Account, error) {
	if a, ok := c.Get(username); ok {
		return a, nil
	}
	a, err := loader(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("usercache: load_for_update: %w", err)
	}
	if err := c.insertWithRetry(a, forceFlush); err != nil {
		return nil, err
	}
	return a, nil
}

// Remove evicts username unconditionally, used when an account must
// leave the cache outside the normal watermark path (not currently
// exercised by any request kind, kept for completeness of the C5
// contract).
func (c *Cache) Remove(username string) {
	if a, ok := c.byUser[username]; ok {
		delete(c.byID, a.UserID)
	}
	delete(c.byUser, username)
}

// Package rediscache implements a read-through cache in front of the
// persistence port's credential and pending-order lookups (spec.md
// §4.6 auth_lookup/load_open_orders), grounded on the teacher's
// RedisOrderStore: prefix-keyed, JSON-encoded, TTL'd.
//
// This sits in front of internal/persistence.Store, not in place of
// it — Redis never becomes the system of record; a cache miss always
// falls through to the wrapped Store and repopulates Redis.
package rediscache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/types"
)

const (
	authKeyPrefix       = "auth:"
	pendingOrdersPrefix = "pending_orders:"
)

// Config mirrors config.RedisConfig.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	TLSEnabled   bool
	OrderTTL     time.Duration
}

// NewClient creates a pooled Redis client and verifies connectivity.
func NewClient(cfg Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("rediscache: ping: %w", err)
	}
	return client, nil
}

type authRecord struct {
	UserID       uint64 `json:"user_id"`
	PasswordHash string `json:"password_hash"`
}

// Store wraps a persistence.Store with a read-through Redis layer in
// front of AuthLookup and LoadOpenOrders. Every other operation is
// passed straight through — those are write paths or startup-only
// bulk loads that don't benefit from per-key caching.
type Store struct {
	persistence.Store
	client *redis.Client
	ttl    time.Duration
}

var _ persistence.Store = (*Store)(nil)

// Wrap returns a Store that caches auth_lookup and load_open_orders
// reads against client, falling through to backing on a miss.
func Wrap(backing persistence.Store, client *redis.Client, ttl time.Duration) *Store {
	return &Store{Store: backing, client: client, ttl: ttl}
}

// AuthLookup checks Redis first; on a miss it consults the backing
// store and repopulates the cache.
func (s *Store) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	key := authKeyPrefix + username
	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var rec authRecord
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
			return rec.UserID, rec.PasswordHash, true, nil
		}
	} else if err != redis.Nil {
		logger.Warn("rediscache.AuthLookup redis error, falling through", map[string]interface{}{"err": err.Error()})
	}

	userID, hash, found, err := s.Store.AuthLookup(ctx, username)
	if err != nil || !found {
		return userID, hash, found, err
	}

	if encoded, jsonErr := json.Marshal(authRecord{UserID: userID, PasswordHash: hash}); jsonErr == nil {
		if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
			logger.Warn("rediscache.AuthLookup cache repopulate failed", map[string]interface{}{"err": err.Error()})
		}
	}
	return userID, hash, found, nil
}

// LoadOpenOrders checks Redis first; on a miss it consults the
// backing store and repopulates the cache.
func (s *Store) LoadOpenOrders(ctx context.Context, userID uint64) (map[string]map[uint64]*types.Order, error) {
	key := fmt.Sprintf("%s%d", pendingOrdersPrefix, userID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var flat []*types.Order
		if jsonErr := json.Unmarshal(data, &flat); jsonErr == nil {
			return regroup(flat), nil
		}
	} else if err != redis.Nil {
		logger.Warn("rediscache.LoadOpenOrders redis error, falling through", map[string]interface{}{"err": err.Error()})
	}

	out, err := s.Store.LoadOpenOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	var flat []*types.Order
	for _, bySymbol := range out {
		for _, o := range bySymbol {
			flat = append(flat, o)
		}
	}
	if encoded, jsonErr := json.Marshal(flat); jsonErr == nil {
		if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
			logger.Warn("rediscache.LoadOpenOrders cache repopulate failed", map[string]interface{}{"err": err.Error()})
		}
	}
	return out, nil
}

// Invalidate drops the cached pending-order set for userID, called
// by the dispatcher whenever a drain changes that user's open orders
// (so the next LoadOpenOrders miss refreshes from the backing store).
func (s *Store) Invalidate(ctx context.Context, userID uint64) {
	key := fmt.Sprintf("%s%d", pendingOrdersPrefix, userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("rediscache.Invalidate failed", map[string]interface{}{"err": err.Error()})
	}
}

func regroup(flat []*types.Order) map[string]map[uint64]*types.Order {
	out := make(map[string]map[uint64]*types.Order)
	for _, o := range flat {
		bySymbol, ok := out[o.Symbol]
		if !ok {
			bySymbol = make(map[uint64]*types.Order)
			out[o.Symbol] = bySymbol
		}
		bySymbol[o.OrderID] = o
	}
	return out
}

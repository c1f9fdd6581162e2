// README: Cart store backed by Redis (one JSON document per session, TTL).
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "cart:%s"
	DefaultTTL = 7 * 24 * time.Hour
)

// Repository persists carts. Get returns an empty cart when none is stored.
type Repository interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*MemoryStore)(nil)
)

type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(redis *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{redis: redis, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := s.redis.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{SessionID: sessionID, Lines: []Line{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return &c, nil
}

func (s *Store) Put(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return s.redis.Set(ctx, key(c.SessionID), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, key(sessionID)).Err()
}

func key(sessionID string) string {
	return fmt.Sprintf(keyPrefix, sessionID)
}

type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	data, ok := m.carts[sessionID]
	m.mu.Unlock()
	if !ok {
		return &Cart{SessionID: sessionID, Lines: []Line{}}, nil
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MemoryStore) Put(_ context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.SessionID] = data
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// README: Selection store backed by Redis (JSON value per session/product, TTL, last write wins).
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/types"
)

const (
	keyPrefix  = "selection:%s:%s"
	DefaultTTL = 24 * time.Hour
)

// Repository persists selections. Get returns an empty selection when none is stored.
type Repository interface {
	Get(ctx context.Context, sessionID string, productID types.ID) (*Selection, error)
	Put(ctx context.Context, s *Selection) error
	Delete(ctx context.Context, sessionID string, productID types.ID) error
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

func (s *Store) Get(ctx context.Context, sessionID string, productID types.ID) (*Selection, error) {
	data, err := s.redis.Get(ctx, key(sessionID, productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return empty(sessionID, productID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get selection: %w", err)
	}
	var sel Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}
	if sel.AddOnIDs == nil {
		sel.AddOnIDs = []string{}
	}
	return &sel, nil
}

// Put overwrites the stored selection and refreshes its TTL.
func (s *Store) Put(ctx context.Context, sel *Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	return s.redis.Set(ctx, key(sel.SessionID, sel.ProductID), data, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, sessionID string, productID types.ID) error {
	return s.redis.Del(ctx, key(sessionID, productID)).Err()
}

func key(sessionID string, productID types.ID) string {
	return fmt.Sprintf(keyPrefix, sessionID, string(productID))
}

// MemoryStore keeps selections in process. Entries do not expire.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Selection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Selection)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string, productID types.ID) (*Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sel, ok := m.data[key(sessionID, productID)]
	if !ok {
		return empty(sessionID, productID), nil
	}
	sel.AddOnIDs = append([]string{}, sel.AddOnIDs...)
	return &sel, nil
}

func (m *MemoryStore) Put(_ context.Context, sel *Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sel
	cp.AddOnIDs = append([]string{}, sel.AddOnIDs...)
	m.data[key(sel.SessionID, sel.ProductID)] = cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string, productID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key(sessionID, productID))
	return nil
}

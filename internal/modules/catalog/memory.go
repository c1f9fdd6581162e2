// README: In-memory catalog repository for offline quoting (rentquote CLI) and tests.
package catalog

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/types"
)

type MemoryStore struct {
	mu       sync.RWMutex
	products map[types.ID]*Product
}

var _ Repository = (*MemoryStore)(nil)

func NewMemoryStore(products ...*Product) *MemoryStore {
	m := &MemoryStore{products: make(map[types.ID]*Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = clone(p)
	}
	return m
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (m *MemoryStore) List(_ context.Context, f ListFilter) ([]*Product, error) {
	f = f.Normalized()
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*Product
	for _, p := range m.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.City != "" {
			if _, ok := p.City(f.City); !ok {
				continue
			}
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if f.Offset >= len(all) {
		return nil, nil
	}
	all = all[f.Offset:]
	if len(all) > f.Limit {
		all = all[:f.Limit]
	}
	out := make([]*Product, len(all))
	for i, p := range all {
		out[i] = clone(p)
	}
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[p.ID]; exists {
		return ErrConflict
	}
	m.products[p.ID] = clone(p)
	return nil
}

func (m *MemoryStore) Update(_ context.Context, p *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	next := clone(p)
	next.CreatedAt = prev.CreatedAt
	m.products[p.ID] = next
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func clone(p *Product) *Product {
	c := *p
	c.CityPricing = make([]CityPricing, len(p.CityPricing))
	for i, cp := range p.CityPricing {
		cp.TenurePricing = append([]TenurePricing(nil), cp.TenurePricing...)
		c.CityPricing[i] = cp
	}
	c.AddOns = append([]AddOn(nil), p.AddOns...)
	return &c
}

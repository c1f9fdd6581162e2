// README: Catalog service: product reads for the storefront and admin CRUD.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/types"
)

// Repository is the persistence contract; *Store satisfies it.
type Repository interface {
	Get(ctx context.Context, id types.ID) (*Product, error)
	List(ctx context.Context, f ListFilter) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id types.ID) error
}

var _ Repository = (*Store)(nil)

type Service struct {
	store Repository
	log   *zap.Logger
}

func NewService(store Repository, log *zap.Logger) *Service {
	return &Service{store: store, log: logging.OrNop(log)}
}

// Get loads a product and re-validates it, since rows may predate current rules.
func (s *Service) Get(ctx context.Context, id types.ID) (*Product, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrBadRequest
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		s.log.Error("stored product failed validation", zap.String("product_id", string(id)), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Product, error) {
	products, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if err := p.Validate(); err != nil {
			s.log.Error("skipping invalid product in listing", zap.String("product_id", string(p.ID)), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, p *Product) (*Product, error) {
	if p == nil {
		return nil, ErrBadRequest
	}
	normalize(p)
	if p.ID == "" {
		p.ID = types.NewID()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := nowUTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product %s: %w", p.ID, err)
	}
	s.log.Info("product created", zap.String("product_id", string(p.ID)), zap.Int("cities", len(p.CityPricing)))
	return p, nil
}

func (s *Service) Update(ctx context.Context, p *Product) (*Product, error) {
	if p == nil || strings.TrimSpace(string(p.ID)) == "" {
		return nil, ErrBadRequest
	}
	normalize(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = nowUTC()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product %s: %w", p.ID, err)
	}
	s.log.Info("product updated", zap.String("product_id", string(p.ID)))
	return s.store.Get(ctx, p.ID)
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if strings.TrimSpace(string(id)) == "" {
		return ErrBadRequest
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.log.Info("product deleted", zap.String("product_id", string(id)))
	return nil
}

func normalize(p *Product) {
	p.ID = types.ID(strings.TrimSpace(string(p.ID)))
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	for i := range p.CityPricing {
		p.CityPricing[i].City = strings.TrimSpace(p.CityPricing[i].City)
	}
	for i := range p.AddOns {
		p.AddOns[i].ID = strings.TrimSpace(p.AddOns[i].ID)
	}
}

// README: Selection service: picker operations validated against the product's rate table.
package selection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

type ProductSource interface {
	Get(ctx context.Context, id types.ID) (*catalog.Product, error)
}

// Quoter prices a loaded product; *pricing.Service satisfies it.
type Quoter interface {
	QuoteProduct(p *catalog.Product, req pricing.QuoteRequest) (*pricing.Quote, error)
}

type Service struct {
	store    Repository
	products ProductSource
	quoter   Quoter
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store Repository, products ProductSource, quoter Quoter, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		quoter:   quoter,
		log:      logging.OrNop(log),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, sessionID string, productID types.ID) (*Selection, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, sessionID, productID)
}

// Update applies every non-nil field of p in order city, tenure, add-ons.
func (s *Service) Update(ctx context.Context, sessionID string, productID types.ID, p Patch) (*Selection, error) {
	return s.mutate(ctx, sessionID, productID, func(prod *catalog.Product, sel *Selection) error {
		if p.City != nil {
			if err := setCity(prod, sel, *p.City); err != nil {
				return err
			}
		}
		if p.TenureMonths != nil {
			if err := setTenure(prod, sel, *p.TenureMonths); err != nil {
				return err
			}
		}
		if p.AddOnIDs != nil {
			if err := setAddOns(prod, sel, *p.AddOnIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetCity picks a city. An empty city clears it. A tenure the new city does
// not offer is dropped.
func (s *Service) SetCity(ctx context.Context, sessionID string, productID types.ID, city string) (*Selection, error) {
	return s.mutate(ctx, sessionID, productID, func(prod *catalog.Product, sel *Selection) error {
		return setCity(prod, sel, city)
	})
}

// SetTenure picks a tenure in months; 0 clears it.
func (s *Service) SetTenure(ctx context.Context, sessionID string, productID types.ID, months int) (*Selection, error) {
	return s.mutate(ctx, sessionID, productID, func(prod *catalog.Product, sel *Selection) error {
		return setTenure(prod, sel, months)
	})
}

// AddAddOn toggles an add-on on. Adding one already chosen is a no-op.
func (s *Service) AddAddOn(ctx context.Context, sessionID string, productID types.ID, addOnID string) (*Selection, error) {
	return s.mutate(ctx, sessionID, productID, func(prod *catalog.Product, sel *Selection) error {
		id := strings.TrimSpace(addOnID)
		if _, ok := prod.AddOn(id); !ok {
			return fmt.Errorf("%w: product %s has no add-on %q", ErrBadRequest, prod.ID, id)
		}
		if !sel.hasAddOn(id) {
			sel.AddOnIDs = append(sel.AddOnIDs, id)
		}
		return nil
	})
}

// RemoveAddOn toggles an add-on off. Removing one not chosen is a no-op.
func (s *Service) RemoveAddOn(ctx context.Context, sessionID string, productID types.ID, addOnID string) (*Selection, error) {
	return s.mutate(ctx, sessionID, productID, func(_ *catalog.Product, sel *Selection) error {
		id := strings.TrimSpace(addOnID)
		kept := sel.AddOnIDs[:0]
		for _, a := range sel.AddOnIDs {
			if a != id {
				kept = append(kept, a)
			}
		}
		sel.AddOnIDs = kept
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string, productID types.ID) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID, productID)
}

// Quote prices the stored selection. An incomplete selection yields an unavailable quote.
func (s *Service) Quote(ctx context.Context, sessionID string, productID types.ID) (*pricing.Quote, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	prod, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	sel, err := s.store.Get(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}
	for _, id := range sel.AddOnIDs {
		if _, ok := prod.AddOn(id); !ok {
			s.log.Info("selection holds a withdrawn add-on",
				zap.String("session_id", sessionID),
				zap.String("product_id", string(productID)),
				zap.String("add_on_id", id),
			)
			return &pricing.Quote{ProductID: prod.ID, Reason: pricing.ReasonAddOnWithdrawn}, nil
		}
	}
	q, err := s.quoter.QuoteProduct(prod, sel.QuoteRequest())
	if err != nil {
		return nil, fmt.Errorf("quote selection %s/%s: %w", sessionID, productID, err)
	}
	return q, nil
}

// mutate is a plain read-modify-write; concurrent writers for the same
// session and product race and the last Put wins.
func (s *Service) mutate(ctx context.Context, sessionID string, productID types.ID, fn func(*catalog.Product, *Selection) error) (*Selection, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	prod, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	sel, err := s.store.Get(ctx, sessionID, productID)
	if err != nil {
		return nil, err
	}
	if err := fn(prod, sel); err != nil {
		return nil, err
	}
	sel.SessionID = sessionID
	sel.ProductID = productID
	sel.UpdatedAt = s.now()
	if err := s.store.Put(ctx, sel); err != nil {
		return nil, fmt.Errorf("save selection: %w", err)
	}
	s.log.Debug("selection updated",
		zap.String("session_id", sessionID),
		zap.String("product_id", string(productID)),
		zap.String("city", sel.City),
		zap.Int("tenure_months", sel.TenureMonths),
		zap.Strings("add_on_ids", sel.AddOnIDs),
	)
	return sel, nil
}

func setCity(prod *catalog.Product, sel *Selection, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		sel.City = ""
		return nil
	}
	cp, ok := prod.City(city)
	if !ok {
		return fmt.Errorf("%w: product %s is not offered in %q", ErrBadRequest, prod.ID, city)
	}
	sel.City = city
	if sel.TenureMonths > 0 {
		if _, ok := cp.Tenure(sel.TenureMonths); !ok {
			sel.TenureMonths = 0
		}
	}
	return nil
}

func setTenure(prod *catalog.Product, sel *Selection, months int) error {
	if months < 0 {
		return fmt.Errorf("%w: tenure must not be negative", ErrBadRequest)
	}
	if months == 0 {
		sel.TenureMonths = 0
		return nil
	}
	if sel.City != "" {
		cp, ok := prod.City(sel.City)
		if !ok {
			return fmt.Errorf("%w: product %s is no longer offered in %q", ErrBadRequest, prod.ID, sel.City)
		}
		if _, ok := cp.Tenure(months); !ok {
			return fmt.Errorf("%w: %d months is not offered in %q", ErrBadRequest, months, sel.City)
		}
		sel.TenureMonths = months
		return nil
	}
	for _, cp := range prod.CityPricing {
		if _, ok := cp.Tenure(months); ok {
			sel.TenureMonths = months
			return nil
		}
	}
	return fmt.Errorf("%w: %d months is not offered for product %s", ErrBadRequest, months, prod.ID)
}

func setAddOns(prod *catalog.Product, sel *Selection, ids []string) error {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, ok := prod.AddOn(id); !ok {
			return fmt.Errorf("%w: product %s has no add-on %q", ErrBadRequest, prod.ID, id)
		}
		dup := false
		for _, have := range out {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}
	sel.AddOnIDs = out
	return nil
}

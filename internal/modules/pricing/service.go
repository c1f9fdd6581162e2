// README: Pricing service: quotes a catalog product for a city / tenure / add-on choice.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/modules/catalog"
	"storefront/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// ProductSource loads catalog products; *catalog.Service satisfies it.
type ProductSource interface {
	Get(ctx context.Context, id types.ID) (*catalog.Product, error)
}

type Service struct {
	products ProductSource
	calc     Calculator
	log      *zap.Logger
}

func NewService(products ProductSource, calc Calculator, log *zap.Logger) *Service {
	if calc == (Calculator{}) {
		calc = DefaultCalculator()
	}
	return &Service{products: products, calc: calc, log: logging.OrNop(log)}
}

func (s *Service) Calculator() Calculator {
	return s.calc
}

// Quote prices productID for req. An incomplete or unmatched selection is a
// successful Quote with Available=false; only bad input and bad data are errors.
func (s *Service) Quote(ctx context.Context, productID types.ID, req QuoteRequest) (*Quote, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.QuoteProduct(p, req)
}

// QuoteProduct prices an already loaded product.
func (s *Service) QuoteProduct(p *catalog.Product, req QuoteRequest) (*Quote, error) {
	if p == nil {
		return &Quote{Available: false, Reason: ReasonNoProduct}, nil
	}
	addOns, err := resolveAddOns(p, req.AddOnIDs)
	if err != nil {
		return nil, err
	}
	// City keys match exactly; " Mumbai " is not offered.
	city := req.City

	q := &Quote{ProductID: p.ID}
	b, ok, err := s.calc.ComputeCost(p, city, req.TenureMonths, addOns)
	if err != nil {
		s.log.Error("invalid pricing data",
			zap.String("product_id", string(p.ID)),
			zap.String("city", city),
			zap.Int("tenure_months", req.TenureMonths),
			zap.Error(err),
		)
		return nil, err
	}
	if !ok {
		q.Reason = Availability(p, city, req.TenureMonths)
		return q, nil
	}
	q.Available = true
	q.Breakdown = &b
	return q, nil
}

func resolveAddOns(p *catalog.Product, ids []string) ([]catalog.AddOn, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]catalog.AddOn, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: add-on %q listed twice", ErrBadRequest, id)
		}
		seen[id] = struct{}{}
		a, ok := p.AddOn(id)
		if !ok {
			return nil, fmt.Errorf("%w: product %s has no add-on %q", ErrBadRequest, p.ID, id)
		}
		out = append(out, a)
	}
	return out, nil
}

// Options lists what the pickers can offer for productID: cities in catalog
// order, tenures ascending, and the add-ons.
func (s *Service) Options(ctx context.Context, productID types.ID) (*Options, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	opts := &Options{
		ProductID: p.ID,
		Cities:    make([]CityOption, 0, len(p.CityPricing)),
		AddOns:    append([]catalog.AddOn(nil), p.AddOns...),
	}
	for _, cp := range p.CityPricing {
		co := CityOption{
			City:           cp.City,
			Deposit:        cp.Deposit,
			DeliveryCharge: cp.DeliveryCharge,
			Tenures:        make([]TenureOption, 0, len(cp.TenurePricing)),
		}
		for _, tp := range cp.TenurePricing {
			co.Tenures = append(co.Tenures, TenureOption{Months: tp.Months, MonthlyRent: tp.MonthlyRent})
		}
		sort.Slice(co.Tenures, func(i, j int) bool { return co.Tenures[i].Months < co.Tenures[j].Months })
		opts.Cities = append(opts.Cities, co)
	}
	return opts, nil
}

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/types"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("product already exists")
	ErrInvalidProduct = errors.New("invalid product data")
)

// Validate checks the rate tables and add-ons at the data boundary so that
// downstream code can rely on unique keys and non-negative amounts.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	cities := make(map[string]struct{}, len(p.CityPricing))
	for _, c := range p.CityPricing {
		if err := c.validate(); err != nil {
			return err
		}
		if _, dup := cities[c.City]; dup {
			return fmt.Errorf("%w: duplicate city %q", ErrInvalidProduct, c.City)
		}
		cities[c.City] = struct{}{}
	}
	addOns := make(map[string]struct{}, len(p.AddOns))
	for _, a := range p.AddOns {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := addOns[a.ID]; dup {
			return fmt.Errorf("%w: duplicate add-on %q", ErrInvalidProduct, a.ID)
		}
		addOns[a.ID] = struct{}{}
	}
	return nil
}

func (c CityPricing) validate() error {
	if strings.TrimSpace(c.City) == "" {
		return fmt.Errorf("%w: empty city key", ErrInvalidProduct)
	}
	if err := checkAmount(c.Deposit, "city %q: deposit", c.City); err != nil {
		return err
	}
	if err := checkAmount(c.DeliveryCharge, "city %q: delivery charge", c.City); err != nil {
		return err
	}
	if c.Deposit.IsNegative() {
		return fmt.Errorf("%w: city %q: negative deposit", ErrInvalidProduct, c.City)
	}
	if c.DeliveryCharge.IsNegative() {
		return fmt.Errorf("%w: city %q: negative delivery charge", ErrInvalidProduct, c.City)
	}
	seen := make(map[int]struct{}, len(c.TenurePricing))
	for _, t := range c.TenurePricing {
		if t.Months <= 0 {
			return fmt.Errorf("%w: city %q: tenure months must be positive, got %d", ErrInvalidProduct, c.City, t.Months)
		}
		if err := checkAmount(t.MonthlyRent, "city %q: rent for %d months", c.City, t.Months); err != nil {
			return err
		}
		if t.MonthlyRent.IsNegative() {
			return fmt.Errorf("%w: city %q: negative rent for %d months", ErrInvalidProduct, c.City, t.Months)
		}
		if _, dup := seen[t.Months]; dup {
			return fmt.Errorf("%w: city %q: duplicate tenure %d", ErrInvalidProduct, c.City, t.Months)
		}
		seen[t.Months] = struct{}{}
	}
	return nil
}

// Validate checks a single add-on record.
func (a AddOn) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: add-on id is required", ErrInvalidProduct)
	}
	if err := checkAmount(a.Price, "add-on %q: price", a.ID); err != nil {
		return err
	}
	if a.Price.IsNegative() {
		return fmt.Errorf("%w: add-on %q: negative price", ErrInvalidProduct, a.ID)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: add-on %q: unknown type %q", ErrInvalidProduct, a.ID, a.Type)
	}
	return nil
}

// checkAmount rejects amounts that were never set or are not in INR. A zero
// Money has no currency, so an omitted field fails here instead of pricing as 0.
func checkAmount(m types.Money, field string, args ...any) error {
	switch m.Currency {
	case types.CurrencyINR:
		return nil
	case "":
		return fmt.Errorf("%w: %s is missing", ErrInvalidProduct, fmt.Sprintf(field, args...))
	default:
		return fmt.Errorf("%w: %s: currency %q is not %s", ErrInvalidProduct, fmt.Sprintf(field, args...), m.Currency, types.CurrencyINR)
	}
}

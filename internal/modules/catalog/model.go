// README: Product catalog aggregate with per-city / per-tenure rate tables and add-ons.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/types"
)

type AddOnType string

const (
	AddOnOneTime AddOnType = "one_time"
	AddOnMonthly AddOnType = "monthly"
)

// ParseAddOnType accepts only the two billing types the calculator knows.
func ParseAddOnType(s string) (AddOnType, error) {
	switch t := AddOnType(strings.TrimSpace(s)); t {
	case AddOnOneTime, AddOnMonthly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown add-on type %q", ErrInvalidProduct, s)
	}
}

func (t AddOnType) Valid() bool {
	return t == AddOnOneTime || t == AddOnMonthly
}

type TenurePricing struct {
	Months      int         `json:"months" yaml:"months"`
	MonthlyRent types.Money `json:"monthly_rent" yaml:"monthly_rent"`
}

type CityPricing struct {
	City           string          `json:"city" yaml:"city"`
	Deposit        types.Money     `json:"deposit" yaml:"deposit"`
	DeliveryCharge types.Money     `json:"delivery_charge" yaml:"delivery_charge"`
	TenurePricing  []TenurePricing `json:"tenure_pricing" yaml:"tenure_pricing"`
}

type AddOn struct {
	ID    string      `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Price types.Money `json:"price" yaml:"price"`
	Type  AddOnType   `json:"type" yaml:"type"`
}

type Product struct {
	ID          types.ID      `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Category    string        `json:"category" yaml:"category"`
	Description string        `json:"description,omitempty" yaml:"description"`
	ImageURL    string        `json:"image_url,omitempty" yaml:"image_url"`
	CityPricing []CityPricing `json:"city_pricing" yaml:"city_pricing"`
	AddOns      []AddOn       `json:"add_ons" yaml:"add_ons"`
	CreatedAt   time.Time     `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time     `json:"updated_at" yaml:"-"`
}

// City returns the rate entry for an exact city key.
func (p *Product) City(city string) (CityPricing, bool) {
	for _, c := range p.CityPricing {
		if c.City == city {
			return c, true
		}
	}
	return CityPricing{}, false
}

// Tenure returns the rate for an exact months value.
func (c CityPricing) Tenure(months int) (TenurePricing, bool) {
	for _, t := range c.TenurePricing {
		if t.Months == months {
			return t, true
		}
	}
	return TenurePricing{}, false
}

// Months lists the offered tenures in ascending order.
func (c CityPricing) Months() []int {
	out := make([]int, 0, len(c.TenurePricing))
	for _, t := range c.TenurePricing {
		out = append(out, t.Months)
	}
	sort.Ints(out)
	return out
}

func (p *Product) AddOn(id string) (AddOn, bool) {
	for _, a := range p.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// Cities lists the city keys in catalog order.
func (p *Product) Cities() []string {
	out := make([]string, 0, len(p.CityPricing))
	for _, c := range p.CityPricing {
		out = append(out, c.City)
	}
	return out
}

type ListFilter struct {
	Category string
	City     string
	Limit    int
	Offset   int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalized applies the default and maximum page size.
func (f ListFilter) Normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Category = strings.TrimSpace(f.Category)
	f.City = strings.TrimSpace(f.City)
	return f
}

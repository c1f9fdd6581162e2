// README: Rental pricing calculator (city + tenure + add-ons → itemized cost).
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/modules/catalog"
	"storefront/internal/types"
)

// ErrInvalidPricing marks malformed rate or add-on data. It indicates a data
// bug upstream and is never used for an incomplete selection.
var ErrInvalidPricing = errors.New("invalid pricing data")

// DefaultGSTRate is the 18% goods and services tax applied to the subtotal.
var DefaultGSTRate = decimal.RequireFromString("0.18")

type Calculator struct {
	taxRate decimal.Decimal
}

// NewCalculator returns a calculator applying taxRate, which must be in [0, 1).
func NewCalculator(taxRate decimal.Decimal) (Calculator, error) {
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Calculator{}, fmt.Errorf("tax rate %s out of range [0, 1)", taxRate)
	}
	return Calculator{taxRate: taxRate}, nil
}

// DefaultCalculator applies DefaultGSTRate.
func DefaultCalculator() Calculator {
	return Calculator{taxRate: DefaultGSTRate}
}

func (c Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// ComputeCost prices a rental with the default 18% GST.
func ComputeCost(p *catalog.Product, city string, tenureMonths int, addOns []catalog.AddOn) (CostBreakdown, bool, error) {
	return DefaultCalculator().ComputeCost(p, city, tenureMonths, addOns)
}

// Availability reports why (p, city, tenureMonths) cannot be priced, or
// ReasonNone when both the city and the tenure resolve in the rate table.
func Availability(p *catalog.Product, city string, tenureMonths int) Reason {
	_, _, reason := resolve(p, city, tenureMonths)
	return reason
}

func resolve(p *catalog.Product, city string, tenureMonths int) (catalog.CityPricing, catalog.TenurePricing, Reason) {
	switch {
	case p == nil:
		return catalog.CityPricing{}, catalog.TenurePricing{}, ReasonNoProduct
	case city == "":
		return catalog.CityPricing{}, catalog.TenurePricing{}, ReasonSelectCity
	case tenureMonths <= 0:
		return catalog.CityPricing{}, catalog.TenurePricing{}, ReasonSelectTenure
	}
	cp, ok := p.City(city)
	if !ok {
		return catalog.CityPricing{}, catalog.TenurePricing{}, ReasonCityNotOffered
	}
	tp, ok := cp.Tenure(tenureMonths)
	if !ok {
		return catalog.CityPricing{}, catalog.TenurePricing{}, ReasonTenureNotOffered
	}
	return cp, tp, ReasonNone
}

// ComputeCost prices a rental of p in city for tenureMonths with the given add-ons.
//
// ok is false, with a nil error, when the selection is incomplete or does not
// resolve in the rate table; no amount is produced in that case. A non-nil
// error wraps ErrInvalidPricing and means the rate table or an add-on is malformed.
func (c Calculator) ComputeCost(p *catalog.Product, city string, tenureMonths int, addOns []catalog.AddOn) (CostBreakdown, bool, error) {
	cp, tp, reason := resolve(p, city, tenureMonths)
	if reason != ReasonNone {
		return CostBreakdown{}, false, nil
	}
	if err := checkRates(cp, tp); err != nil {
		return CostBreakdown{}, false, err
	}

	months := decimal.NewFromInt(int64(tenureMonths))
	rent := tp.MonthlyRent.Decimal()
	deposit := cp.Deposit.Decimal()
	delivery := cp.DeliveryCharge.Decimal()

	charges := make([]AddOnCharge, 0, len(addOns))
	addOnsCost := decimal.Zero
	seen := make(map[string]struct{}, len(addOns))
	for _, a := range addOns {
		if err := a.Validate(); err != nil {
			return CostBreakdown{}, false, fmt.Errorf("%w: %w", ErrInvalidPricing, err)
		}
		if _, dup := seen[a.ID]; dup {
			return CostBreakdown{}, false, fmt.Errorf("%w: add-on %q selected twice", ErrInvalidPricing, a.ID)
		}
		seen[a.ID] = struct{}{}

		qty := 1
		if a.Type == catalog.AddOnMonthly {
			qty = tenureMonths
		}
		amount := a.Price.Decimal().Mul(decimal.NewFromInt(int64(qty)))
		line, err := types.FromDecimal(amount, types.CurrencyINR)
		if err != nil {
			return CostBreakdown{}, false, fmt.Errorf("%w: add-on %q: %w", ErrInvalidPricing, a.ID, err)
		}
		addOnsCost = addOnsCost.Add(amount)
		charges = append(charges, AddOnCharge{
			ID:        a.ID,
			Name:      a.Name,
			Type:      a.Type,
			UnitPrice: a.Price,
			Quantity:  qty,
			Amount:    line,
		})
	}

	rentTotal := rent.Mul(months)
	subtotal := deposit.Add(rentTotal).Add(delivery).Add(addOnsCost)
	gst := subtotal.Mul(c.taxRate).Round(0)
	total := subtotal.Add(gst)
	firstMonth := deposit.Add(rent).Add(delivery).Add(gst)

	b := CostBreakdown{
		City:           cp.City,
		TenureMonths:   tenureMonths,
		MonthlyRent:    tp.MonthlyRent,
		Deposit:        cp.Deposit,
		DeliveryCharge: cp.DeliveryCharge,
		AddOns:         charges,
		TaxRate:        c.taxRate.String(),
	}
	for _, f := range []struct {
		dst *types.Money
		v   decimal.Decimal
	}{
		{&b.RentTotal, rentTotal},
		{&b.AddOnsCost, addOnsCost},
		{&b.Subtotal, subtotal},
		{&b.GST, gst},
		{&b.Total, total},
		{&b.FirstMonthPayment, firstMonth},
	} {
		m, err := types.FromDecimal(f.v, types.CurrencyINR)
		if err != nil {
			return CostBreakdown{}, false, fmt.Errorf("%w: %w", ErrInvalidPricing, err)
		}
		*f.dst = m
	}
	return b, true, nil
}

func checkRates(cp catalog.CityPricing, tp catalog.TenurePricing) error {
	for _, m := range []types.Money{cp.Deposit, cp.DeliveryCharge, tp.MonthlyRent} {
		if m.Currency != types.CurrencyINR {
			return fmt.Errorf("%w: city %q: amount in %q, want %s", ErrInvalidPricing, cp.City, m.Currency, types.CurrencyINR)
		}
	}
	switch {
	case cp.Deposit.IsNegative():
		return fmt.Errorf("%w: city %q: negative deposit", ErrInvalidPricing, cp.City)
	case cp.DeliveryCharge.IsNegative():
		return fmt.Errorf("%w: city %q: negative delivery charge", ErrInvalidPricing, cp.City)
	case tp.MonthlyRent.IsNegative():
		return fmt.Errorf("%w: city %q: negative rent for %d months", ErrInvalidPricing, cp.City, tp.Months)
	}
	return nil
}

// README: Shared catalog fixtures for package tests.
package catalogtest

import (
	"time"

	"storefront/internal/modules/catalog"
	"storefront/internal/types"
)

func rupees(r int64) types.Money {
	return types.Money{Amount: r * 100, Currency: types.CurrencyINR}
}

// Sofa is offered in Mumbai (3/6/12 months) and Pune (12 months) with one
// monthly and one one-time add-on. Mumbai for 6 months with damage protection
// totals 14750 rupees, 7150 due at booking.
func Sofa() *catalog.Product {
	created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return &catalog.Product{
		ID:          "sofa-3s",
		Name:        "Three-seater sofa",
		Category:    "furniture",
		Description: "Fabric sofa, seats three",
		CityPricing: []catalog.CityPricing{
			{
				City:           "Mumbai",
				Deposit:        rupees(3000),
				DeliveryCharge: rupees(500),
				TenurePricing: []catalog.TenurePricing{
					{Months: 3, MonthlyRent: rupees(1500)},
					{Months: 6, MonthlyRent: rupees(1400)},
					{Months: 12, MonthlyRent: rupees(1300)},
				},
			},
			{
				City:           "Pune",
				Deposit:        rupees(2500),
				DeliveryCharge: rupees(0),
				TenurePricing: []catalog.TenurePricing{
					{Months: 12, MonthlyRent: rupees(1200)},
				},
			},
		},
		AddOns: []catalog.AddOn{
			{ID: "damage-protection", Name: "Damage protection", Price: rupees(100), Type: catalog.AddOnMonthly},
			{ID: "installation", Name: "Installation", Price: rupees(499), Type: catalog.AddOnOneTime},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// Fridge is offered in Bengaluru only, with no add-ons.
func Fridge() *catalog.Product {
	created := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	return &catalog.Product{
		ID:       "fridge-190l",
		Name:     "190 L refrigerator",
		Category: "appliances",
		CityPricing: []catalog.CityPricing{
			{
				City:           "Bengaluru",
				Deposit:        rupees(2000),
				DeliveryCharge: rupees(300),
				TenurePricing: []catalog.TenurePricing{
					{Months: 6, MonthlyRent: rupees(900)},
					{Months: 12, MonthlyRent: rupees(800)},
				},
			},
		},
		AddOns:    []catalog.AddOn{},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func Rupees(r int64) types.Money { return rupees(r) }

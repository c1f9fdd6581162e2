// README: Rental cost breakdown, quote and picker option types.
package pricing

import (
	"storefront/internal/modules/catalog"
	"storefront/internal/types"
)

// AddOnCharge is one add-on line of a breakdown. Quantity is 1 for one-time
// add-ons and the tenure in months for monthly ones.
type AddOnCharge struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Type      catalog.AddOnType `json:"type"`
	UnitPrice types.Money       `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	Amount    types.Money       `json:"amount"`
}

// CostBreakdown is the itemized result of a rental cost computation.
// Total is the full-tenure value; FirstMonthPayment is what is due at booking.
type CostBreakdown struct {
	City              string        `json:"city"`
	TenureMonths      int           `json:"tenure_months"`
	MonthlyRent       types.Money   `json:"monthly_rent"`
	RentTotal         types.Money   `json:"rent_total"`
	Deposit           types.Money   `json:"deposit"`
	DeliveryCharge    types.Money   `json:"delivery_charge"`
	AddOnsCost        types.Money   `json:"add_ons_cost"`
	AddOns            []AddOnCharge `json:"add_ons,omitempty"`
	Subtotal          types.Money   `json:"subtotal"`
	TaxRate           string        `json:"tax_rate"`
	GST               types.Money   `json:"gst"`
	Total             types.Money   `json:"total"`
	FirstMonthPayment types.Money   `json:"first_month_payment"`
}

// Reason explains why no breakdown could be produced. It is a UI prompt, not an error.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNoProduct        Reason = "product_missing"
	ReasonSelectCity       Reason = "select_city"
	ReasonSelectTenure     Reason = "select_tenure"
	ReasonCityNotOffered   Reason = "city_not_offered"
	ReasonTenureNotOffered Reason = "tenure_not_offered"

	// ReasonAddOnWithdrawn marks a stored choice naming an add-on the product no longer offers.
	ReasonAddOnWithdrawn Reason = "add_on_withdrawn"
)

type QuoteRequest struct {
	City         string
	TenureMonths int
	AddOnIDs     []string
}

type Quote struct {
	ProductID types.ID       `json:"product_id"`
	Available bool           `json:"available"`
	Reason    Reason         `json:"reason,omitempty"`
	Breakdown *CostBreakdown `json:"breakdown,omitempty"`
}

type TenureOption struct {
	Months      int         `json:"months"`
	MonthlyRent types.Money `json:"monthly_rent"`
}

type CityOption struct {
	City           string         `json:"city"`
	Deposit        types.Money    `json:"deposit"`
	DeliveryCharge types.Money    `json:"delivery_charge"`
	Tenures        []TenureOption `json:"tenures"`
}

// Options is what the city / tenure / add-on pickers render for one product.
type Options struct {
	ProductID types.ID        `json:"product_id"`
	Cities    []CityOption    `json:"cities"`
	AddOns    []catalog.AddOn `json:"add_ons"`
}

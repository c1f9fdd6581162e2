// README: Cart aggregate: (product, selection) lines and the priced summary.
package cart

import (
	"errors"
	"time"

	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

var (
	ErrNotFound   = errors.New("cart line not found")
	ErrBadRequest = errors.New("bad request")
)

// MaxLines caps a single cart.
const MaxLines = 50

// Line is a frozen copy of a selection. Prices are not stored; they are
// recomputed from the current catalog each time the cart is summarized.
type Line struct {
	ID           types.ID  `json:"id"`
	ProductID    types.ID  `json:"product_id"`
	City         string    `json:"city"`
	TenureMonths int       `json:"tenure_months"`
	AddOnIDs     []string  `json:"add_on_ids"`
	AddedAt      time.Time `json:"added_at"`
}

func (l Line) QuoteRequest() pricing.QuoteRequest {
	return pricing.QuoteRequest{
		City:         l.City,
		TenureMonths: l.TenureMonths,
		AddOnIDs:     append([]string(nil), l.AddOnIDs...),
	}
}

type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (c *Cart) lineIndex(id types.ID) int {
	for i, l := range c.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

const (
	// ReasonInvalidPricing marks a line whose product data no longer prices cleanly.
	ReasonInvalidPricing pricing.Reason = "invalid_pricing"

	ReasonAddOnWithdrawn = pricing.ReasonAddOnWithdrawn
)

type LineQuote struct {
	Line
	ProductName string                 `json:"product_name,omitempty"`
	Available   bool                   `json:"available"`
	Reason      pricing.Reason         `json:"reason,omitempty"`
	Breakdown   *pricing.CostBreakdown `json:"breakdown,omitempty"`
}

// Summary totals the available lines. Total is the full-tenure value of the
// cart; DueAtBooking is the sum of first-month payments.
type Summary struct {
	SessionID        string      `json:"session_id"`
	Lines            []LineQuote `json:"lines"`
	AvailableLines   int         `json:"available_lines"`
	UnavailableLines int         `json:"unavailable_lines"`
	Total            types.Money `json:"total"`
	DueAtBooking     types.Money `json:"due_at_booking"`
}

type AddLineCommand struct {
	SessionID string
	ProductID types.ID
	// FromSelection copies the session's stored selection for ProductID and
	// ignores the explicit fields below.
	FromSelection bool
	City          string
	TenureMonths  int
	AddOnIDs      []string
}

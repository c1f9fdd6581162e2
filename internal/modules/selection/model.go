// README: Session-scoped product selection (city, tenure, add-ons) driving the pickers.
package selection

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
)

const maxSessionIDLen = 128

// Selection is the in-progress choice of one viewing session for one product.
// A zero City or TenureMonths means "not chosen yet".
type Selection struct {
	SessionID    string    `json:"session_id"`
	ProductID    types.ID  `json:"product_id"`
	City         string    `json:"city,omitempty"`
	TenureMonths int       `json:"tenure_months,omitempty"`
	AddOnIDs     []string  `json:"add_on_ids"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func empty(sessionID string, productID types.ID) *Selection {
	return &Selection{SessionID: sessionID, ProductID: productID, AddOnIDs: []string{}}
}

// QuoteRequest turns the selection into calculator input.
func (s *Selection) QuoteRequest() pricing.QuoteRequest {
	return pricing.QuoteRequest{
		City:         s.City,
		TenureMonths: s.TenureMonths,
		AddOnIDs:     append([]string(nil), s.AddOnIDs...),
	}
}

func (s *Selection) hasAddOn(id string) bool {
	for _, a := range s.AddOnIDs {
		if a == id {
			return true
		}
	}
	return false
}

// Patch carries optional picker updates; nil fields are left unchanged.
type Patch struct {
	City         *string   `json:"city"`
	TenureMonths *int      `json:"tenure_months"`
	AddOnIDs     *[]string `json:"add_on_ids"`
}

// ValidateSessionID checks the opaque session key used in store keys and routes.
func ValidateSessionID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: session id is required", ErrBadRequest)
	case len(id) > maxSessionIDLen:
		return fmt.Errorf("%w: session id longer than %d", ErrBadRequest, maxSessionIDLen)
	case strings.ContainsAny(id, ": \t\n"):
		return fmt.Errorf("%w: session id contains reserved characters", ErrBadRequest)
	}
	return nil
}

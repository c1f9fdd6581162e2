// README: Common money value object used across modules (integer paise).
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// CurrencyINR is the only currency the storefront prices in.
const CurrencyINR = "INR"

var (
	ErrMoneyOverflow  = errors.New("money amount out of range")
	ErrMoneyPrecision = errors.New("money amount finer than one paisa")
	ErrMoneyMissing   = errors.New("money amount is required")
)

var (
	paisePerRupee = decimal.NewFromInt(100)
	maxPaise      = decimal.NewFromInt(math.MaxInt64)
	minPaise      = decimal.NewFromInt(math.MinInt64)
)

// Money is an amount in minor units (paise for INR).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Paise builds an INR amount from minor units.
func Paise(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyINR}
}

// ParseRupees parses a decimal rupee string such as "1499.50".
func ParseRupees(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse rupees %q: %w", s, err)
	}
	return FromDecimal(d.Mul(paisePerRupee), CurrencyINR)
}

// FromDecimal converts a decimal amount of minor units into Money.
func FromDecimal(minor decimal.Decimal, currency string) (Money, error) {
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, ErrMoneyPrecision
	}
	if minor.GreaterThan(maxPaise) || minor.LessThan(minPaise) {
		return Money{}, ErrMoneyOverflow
	}
	return Money{Amount: minor.IntPart(), Currency: currency}, nil
}

// Decimal returns the amount in minor units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount)
}

// Major returns the amount in major units (rupees).
func (m Money) Major() decimal.Decimal {
	return m.Decimal().Div(paisePerRupee)
}

func (m Money) IsNegative() bool {
	return m.Amount < 0
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// String renders the amount with two decimals, e.g. "INR 14750.00".
func (m Money) String() string {
	cur := m.Currency
	if cur == "" {
		cur = CurrencyINR
	}
	return cur + " " + m.Major().StringFixed(2)
}

type moneyJSON struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display,omitempty"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	cur := m.Currency
	if cur == "" {
		cur = CurrencyINR
	}
	return json.Marshal(moneyJSON{Amount: m.Amount, Currency: cur, Display: m.Major().StringFixed(2)})
}

// UnmarshalJSON requires an amount; null or {"currency":"INR"} is an error
// rather than a silent zero. A missing currency means INR.
func (m *Money) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		return ErrMoneyMissing
	}
	var v struct {
		Amount   *int64 `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Amount == nil {
		return ErrMoneyMissing
	}
	m.Amount = *v.Amount
	m.Currency = v.Currency
	if m.Currency == "" {
		m.Currency = CurrencyINR
	}
	return nil
}

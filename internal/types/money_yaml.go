package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either a rupee scalar ("1499.50", 1500) or the
// {amount, currency} mapping used in JSON, where amount is in paise.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseRupees(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*m = parsed
		return nil
	case yaml.MappingNode:
		var v struct {
			Amount   *int64 `yaml:"amount"`
			Currency string `yaml:"currency"`
		}
		if err := value.Decode(&v); err != nil {
			return err
		}
		if v.Amount == nil {
			return fmt.Errorf("line %d: %w", value.Line, ErrMoneyMissing)
		}
		m.Amount = *v.Amount
		m.Currency = v.Currency
		if m.Currency == "" {
			m.Currency = CurrencyINR
		}
		return nil
	default:
		return fmt.Errorf("line %d: money must be a rupee amount or an {amount, currency} mapping", value.Line)
	}
}

// MarshalYAML writes rupees with two decimals so files round-trip through UnmarshalYAML.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.Major().StringFixed(2), nil
}

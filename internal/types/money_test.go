package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRupees(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "1500", want: 150000},
		{in: "1499.50", want: 149950},
		{in: "0.01", want: 1},
		{in: "-3", want: -300},
		{in: "0.005", wantErr: ErrMoneyPrecision},
		{in: "99999999999999999999", wantErr: ErrMoneyOverflow},
	}
	for _, tc := range cases {
		got, err := ParseRupees(tc.in)
		if tc.wantErr != nil {
			assert.True(t, errors.Is(err, tc.wantErr), "%s: got %v", tc.in, err)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got.Amount, tc.in)
		assert.Equal(t, CurrencyINR, got.Currency)
	}
	_, err := ParseRupees("lots")
	assert.Error(t, err)
}

func TestFromDecimal(t *testing.T) {
	m, err := FromDecimal(decimal.RequireFromString("2250"), CurrencyINR)
	require.NoError(t, err)
	assert.Equal(t, Paise(2250), m)

	_, err = FromDecimal(decimal.RequireFromString("2250.5"), CurrencyINR)
	assert.True(t, errors.Is(err, ErrMoneyPrecision))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "INR 14750.00", Paise(1475000).String())
	assert.Equal(t, "INR 0.05", Money{Amount: 5}.String())
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Paise(715000))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":715000,"currency":"INR","display":"7150.00"}`, string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":150000}`), &m))
	assert.Equal(t, Paise(150000), m)
}

func TestMoneyJSONRequiresAmount(t *testing.T) {
	var v struct {
		Price Money `json:"price"`
	}
	for _, src := range []string{`{"price":null}`, `{"price":{}}`, `{"price":{"currency":"INR"}}`} {
		err := json.Unmarshal([]byte(src), &v)
		assert.ErrorIs(t, err, ErrMoneyMissing, src)
	}
}

func TestMoneyYAML(t *testing.T) {
	var v struct {
		Deposit  Money `yaml:"deposit"`
		Delivery Money `yaml:"delivery"`
		Rent     Money `yaml:"rent"`
	}
	src := "deposit: 3000\ndelivery: \"499.50\"\nrent:\n  amount: 140000\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &v))
	assert.Equal(t, Paise(300000), v.Deposit)
	assert.Equal(t, Paise(49950), v.Delivery)
	assert.Equal(t, Paise(140000), v.Rent)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), "deposit: \"3000.00\"")

	assert.Error(t, yaml.Unmarshal([]byte("deposit: [1, 2]\n"), &v))
	assert.Error(t, yaml.Unmarshal([]byte("deposit: 0.001\n"), &v))
}

func TestMoneyYAMLRequiresAmount(t *testing.T) {
	var v struct {
		Price Money `yaml:"price"`
	}
	err := yaml.Unmarshal([]byte("price:\n  currency: INR\n"), &v)
	assert.ErrorIs(t, err, ErrMoneyMissing)

	// yaml.v3 never hands null to UnmarshalYAML; the field stays unset and
	// carries no currency, which catalog validation rejects.
	var unset struct {
		Price Money `yaml:"price"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("price: null\n"), &unset))
	assert.Equal(t, "", unset.Price.Currency)
}

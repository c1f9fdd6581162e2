package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/modules/pricing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuoteText(t *testing.T) {
	out, err := run(t, "quote", "-c", "testdata/catalog.yaml", "sofa-3s", "--city", "Mumbai", "-t", "6", "-a", "damage-protection")
	require.NoError(t, err)
	assert.Contains(t, out, "INR 14750.00")
	assert.Contains(t, out, "INR 7150.00")
	assert.Contains(t, out, "damage-protection x 6")
}

func TestQuoteJSON(t *testing.T) {
	out, err := run(t, "quote", "-c", "testdata/catalog.yaml", "sofa-3s", "--city", "Pune", "-t", "12", "-a", "installation", "-f", "json")
	require.NoError(t, err)

	var q pricing.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	require.True(t, q.Available)
	// 2500 + 14400 + 0 + 499 = 17399; gst 3131.82
	assert.Equal(t, int64(1739900), q.Breakdown.Subtotal.Amount)
	assert.Equal(t, int64(313182), q.Breakdown.GST.Amount)
}

func TestQuoteCustomGST(t *testing.T) {
	out, err := run(t, "quote", "-c", "testdata/catalog.yaml", "--gst", "0.05", "sofa-3s", "--city", "Mumbai", "-t", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "gst @ 0.05")
	assert.Contains(t, out, "INR 595.00")

	_, err = run(t, "quote", "-c", "testdata/catalog.yaml", "--gst", "1.2", "sofa-3s", "--city", "Mumbai", "-t", "6")
	assert.Error(t, err)
}

func TestQuoteUnavailable(t *testing.T) {
	out, err := run(t, "quote", "-c", "testdata/catalog.yaml", "sofa-3s", "--city", "Mumbai", "-t", "9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnavailable))
	assert.Contains(t, out, "tenure_not_offered")
}

func TestOptions(t *testing.T) {
	out, err := run(t, "options", "-c", "testdata/catalog.yaml", "sofa-3s")
	require.NoError(t, err)
	assert.Contains(t, out, "Mumbai")
	assert.Contains(t, out, "INR 1300.00")
	assert.Contains(t, out, "installation")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "-c", "testdata/catalog.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "1 products, 1 valid, 0 invalid")

	out, err = run(t, "validate", "-c", "testdata/broken.json")
	require.Error(t, err)
	assert.Contains(t, out, "INVALID tv-43")
	assert.Contains(t, out, "2 products, 1 valid, 1 invalid")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := run(t, "validate", "-c", "testdata/catalog.toml")
	assert.Error(t, err)
}

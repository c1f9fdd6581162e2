package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/modules/catalog"
	"storefront/internal/modules/catalog/catalogtest"
	"storefront/internal/modules/pricing"
)

const session = "sess-1"

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	products := catalog.NewService(catalog.NewMemoryStore(catalogtest.Sofa(), catalogtest.Fridge()), zap.NewNop())
	quotes := pricing.NewService(products, pricing.DefaultCalculator(), zap.NewNop())
	store := NewMemoryStore()
	return NewService(store, products, quotes, zap.NewNop()), store
}

func TestGetMissingIsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	sel, err := svc.Get(context.Background(), session, "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, "", sel.City)
	assert.Equal(t, 0, sel.TenureMonths)
	assert.Empty(t, sel.AddOnIDs)
	assert.NotNil(t, sel.AddOnIDs)
}

func TestGetUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), session, "nope")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
}

func TestSessionIDValidation(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{"sess-1", true},
		{"", false},
		{"  ", false},
		{"a:b", false},
		{"has space", false},
		{string(make([]byte, maxSessionIDLen+1)), false},
	}
	for _, tc := range cases {
		err := ValidateSessionID(tc.id)
		if tc.ok {
			assert.NoError(t, err, tc.id)
		} else {
			assert.True(t, errors.Is(err, ErrBadRequest), "id %q: %v", tc.id, err)
		}
	}
}

func TestPickersAndQuote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	q, err := svc.Quote(ctx, session, "sofa-3s")
	require.NoError(t, err)
	assert.False(t, q.Available)
	assert.Equal(t, pricing.ReasonSelectCity, q.Reason)

	_, err = svc.SetCity(ctx, session, "sofa-3s", "Mumbai")
	require.NoError(t, err)
	q, err = svc.Quote(ctx, session, "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, pricing.ReasonSelectTenure, q.Reason)

	_, err = svc.SetTenure(ctx, session, "sofa-3s", 6)
	require.NoError(t, err)
	sel, err := svc.AddAddOn(ctx, session, "sofa-3s", "damage-protection")
	require.NoError(t, err)
	assert.Equal(t, []string{"damage-protection"}, sel.AddOnIDs)
	assert.False(t, sel.UpdatedAt.IsZero())

	q, err = svc.Quote(ctx, session, "sofa-3s")
	require.NoError(t, err)
	require.True(t, q.Available)
	assert.Equal(t, catalogtest.Rupees(14750), q.Breakdown.Total)
	assert.Equal(t, catalogtest.Rupees(7150), q.Breakdown.FirstMonthPayment)

	sel, err = svc.AddAddOn(ctx, session, "sofa-3s", "damage-protection")
	require.NoError(t, err)
	assert.Len(t, sel.AddOnIDs, 1, "adding twice keeps ids unique")

	sel, err = svc.RemoveAddOn(ctx, session, "sofa-3s", "damage-protection")
	require.NoError(t, err)
	assert.Empty(t, sel.AddOnIDs)

	sel, err = svc.RemoveAddOn(ctx, session, "sofa-3s", "installation")
	require.NoError(t, err)
	assert.Empty(t, sel.AddOnIDs)
}

func TestPickerRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetCity(ctx, session, "sofa-3s", "Delhi")
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = svc.SetTenure(ctx, session, "sofa-3s", 9)
	assert.True(t, errors.Is(err, ErrBadRequest), "9 months is offered nowhere")

	_, err = svc.SetTenure(ctx, session, "sofa-3s", -1)
	assert.True(t, errors.Is(err, ErrBadRequest))

	_, err = svc.SetCity(ctx, session, "sofa-3s", "Pune")
	require.NoError(t, err)
	_, err = svc.SetTenure(ctx, session, "sofa-3s", 6)
	assert.True(t, errors.Is(err, ErrBadRequest), "Pune offers 12 months only")

	_, err = svc.AddAddOn(ctx, session, "sofa-3s", "gold-plating")
	assert.True(t, errors.Is(err, ErrBadRequest))

	sel, err := svc.Get(ctx, session, "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, "Pune", sel.City)
	assert.Equal(t, 0, sel.TenureMonths, "rejected picks leave the stored selection alone")
}

func TestChangingCityDropsUnofferedTenure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetCity(ctx, session, "sofa-3s", "Mumbai")
	require.NoError(t, err)
	_, err = svc.SetTenure(ctx, session, "sofa-3s", 6)
	require.NoError(t, err)

	sel, err := svc.SetCity(ctx, session, "sofa-3s", "Pune")
	require.NoError(t, err)
	assert.Equal(t, 0, sel.TenureMonths)

	_, err = svc.SetTenure(ctx, session, "sofa-3s", 12)
	require.NoError(t, err)
	sel, err = svc.SetCity(ctx, session, "sofa-3s", "Mumbai")
	require.NoError(t, err)
	assert.Equal(t, 12, sel.TenureMonths, "12 months exists in both cities")
}

func TestUpdatePatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	city, months := "Mumbai", 3
	ids := []string{"installation", "damage-protection", "installation"}
	sel, err := svc.Update(ctx, session, "sofa-3s", Patch{City: &city, TenureMonths: &months, AddOnIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", sel.City)
	assert.Equal(t, 3, sel.TenureMonths)
	assert.Equal(t, []string{"installation", "damage-protection"}, sel.AddOnIDs)

	months = 0
	sel, err = svc.Update(ctx, session, "sofa-3s", Patch{TenureMonths: &months})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", sel.City)
	assert.Equal(t, 0, sel.TenureMonths)
	assert.Len(t, sel.AddOnIDs, 2)
}

func TestSelectionsAreScopedBySessionAndProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetCity(ctx, "a", "sofa-3s", "Mumbai")
	require.NoError(t, err)
	_, err = svc.SetCity(ctx, "a", "fridge-190l", "Bengaluru")
	require.NoError(t, err)

	other, err := svc.Get(ctx, "b", "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, "", other.City)

	fridge, err := svc.Get(ctx, "a", "fridge-190l")
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", fridge.City)

	require.NoError(t, svc.Clear(ctx, "a", "sofa-3s"))
	sofa, err := svc.Get(ctx, "a", "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, "", sofa.City)
}

func TestLastWriteWins(t *testing.T) {
	_, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Selection{SessionID: session, ProductID: "sofa-3s", City: "Mumbai", TenureMonths: 6}))
	require.NoError(t, store.Put(ctx, &Selection{SessionID: session, ProductID: "sofa-3s", City: "Pune"}))

	sel, err := store.Get(ctx, session, "sofa-3s")
	require.NoError(t, err)
	assert.Equal(t, "Pune", sel.City)
	assert.Equal(t, 0, sel.TenureMonths)
}

func TestQuoteWithWithdrawnAddOnIsUnavailable(t *testing.T) {
	ctx := context.Background()
	products := catalog.NewService(catalog.NewMemoryStore(catalogtest.Sofa()), zap.NewNop())
	quotes := pricing.NewService(products, pricing.DefaultCalculator(), zap.NewNop())
	svc := NewService(NewMemoryStore(), products, quotes, zap.NewNop())

	_, err := svc.SetCity(ctx, session, "sofa-3s", "Mumbai")
	require.NoError(t, err)
	_, err = svc.SetTenure(ctx, session, "sofa-3s", 6)
	require.NoError(t, err)
	_, err = svc.AddAddOn(ctx, session, "sofa-3s", "damage-protection")
	require.NoError(t, err)

	sofa := catalogtest.Sofa()
	sofa.AddOns = sofa.AddOns[1:]
	_, err = products.Update(ctx, sofa)
	require.NoError(t, err)

	q, err := svc.Quote(ctx, session, "sofa-3s")
	require.NoError(t, err)
	assert.False(t, q.Available)
	assert.Equal(t, pricing.ReasonAddOnWithdrawn, q.Reason)
	assert.Nil(t, q.Breakdown)

	_, err = svc.RemoveAddOn(ctx, session, "sofa-3s", "damage-protection")
	require.NoError(t, err)
	q, err = svc.Quote(ctx, session, "sofa-3s")
	require.NoError(t, err)
	require.True(t, q.Available)
	assert.Equal(t, int64(840000), q.Breakdown.RentTotal.Amount)
}

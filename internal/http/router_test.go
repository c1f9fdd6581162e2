// README: End-to-end handler tests over in-memory stores.
package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	storehttp "storefront/internal/http"
	"storefront/internal/infra"
	"storefront/internal/modules/cart"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/catalog/catalogtest"
	"storefront/internal/modules/pricing"
	"storefront/internal/modules/selection"
	"storefront/internal/types"
)

type stubVerifier struct {
	role string
}

func (s stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return &infra.FirebaseToken{UID: "ops", Claims: map[string]interface{}{"role": s.role}}, nil
}

func newTestRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()
	return newRouterWith(t, zap.NewNop(), role, catalogtest.Sofa(), catalogtest.Fridge())
}

func newRouterWith(t *testing.T, log *zap.Logger, role string, seed ...*catalog.Product) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	products := catalog.NewService(catalog.NewMemoryStore(seed...), log)
	quotes := pricing.NewService(products, pricing.DefaultCalculator(), log)
	selections := selection.NewService(selection.NewMemoryStore(), products, quotes, log)
	carts := cart.NewService(cart.NewMemoryStore(), products, quotes, selections, log)
	return storehttp.NewRouter(storehttp.RouterDeps{
		Catalog:   products,
		Pricing:   quotes,
		Selection: selections,
		Cart:      carts,
		Verifier:  stubVerifier{role: role},
		Log:       log,
	})
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestListAndGetProducts(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodGet, "/api/products?city=Mumbai", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Products []catalog.Product `json:"products"`
		Limit    int               `json:"limit"`
	}](t, w)
	require.Len(t, list.Products, 1)
	assert.Equal(t, types.ID("sofa-3s"), list.Products[0].ID)
	assert.Equal(t, 20, list.Limit)

	w = doJSON(r, http.MethodGet, "/api/products?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/products/fridge-190l", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "190 L refrigerator", decode[catalog.Product](t, w).Name)

	w = doJSON(r, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptions(t *testing.T) {
	r := newTestRouter(t, "")
	w := doJSON(r, http.MethodGet, "/api/products/sofa-3s/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode[pricing.Options](t, w)
	require.Len(t, opts.Cities, 2)
	assert.Len(t, opts.Cities[0].Tenures, 3)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/products/sofa-3s/quote", map[string]any{
		"city": "Mumbai", "tenure_months": 6, "add_on_ids": []string{"damage-protection"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	q := decode[pricing.Quote](t, w)
	require.True(t, q.Available)
	assert.Equal(t, int64(1475000), q.Breakdown.Total.Amount)
	assert.Equal(t, int64(715000), q.Breakdown.FirstMonthPayment.Amount)
	assert.Contains(t, w.Body.String(), `"display":"14750.00"`)

	w = doJSON(r, http.MethodPost, "/api/products/sofa-3s/quote", map[string]any{"city": "Mumbai", "tenure_months": 9})
	require.Equal(t, http.StatusOK, w.Code)
	q = decode[pricing.Quote](t, w)
	assert.False(t, q.Available)
	assert.Equal(t, pricing.ReasonTenureNotOffered, q.Reason)
	assert.Nil(t, q.Breakdown)

	w = doJSON(r, http.MethodPost, "/api/products/sofa-3s/quote", map[string]any{"city": "Mumbai", "tenure_months": 6, "add_on_ids": []string{"gold"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/products/nope/quote", map[string]any{"city": "Mumbai", "tenure_months": 6})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectionAndCartFlow(t *testing.T) {
	r := newTestRouter(t, "")
	base := "/api/sessions/s1/selections/sofa-3s"

	w := doJSON(r, http.MethodGet, base+"/quote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pricing.ReasonSelectCity, decode[pricing.Quote](t, w).Reason)

	w = doJSON(r, http.MethodPut, base, map[string]any{"city": "Mumbai", "tenure_months": 6})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, base, map[string]any{"city": "Delhi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, base+"/addons/damage-protection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sel := decode[selection.Selection](t, w)
	assert.Equal(t, []string{"damage-protection"}, sel.AddOnIDs)

	w = doJSON(r, http.MethodGet, base+"/quote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := decode[pricing.Quote](t, w)
	require.True(t, q.Available)
	assert.Equal(t, int64(1475000), q.Breakdown.Total.Amount)

	w = doJSON(r, http.MethodPost, "/api/sessions/s1/cart/lines", map[string]any{"product_id": "sofa-3s", "from_selection": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	line := decode[cart.Line](t, w)

	w = doJSON(r, http.MethodGet, "/api/sessions/s1/cart/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[cart.Summary](t, w)
	assert.Equal(t, int64(1475000), sum.Total.Amount)
	assert.Equal(t, int64(715000), sum.DueAtBooking.Amount)

	w = doJSON(r, http.MethodDelete, "/api/sessions/s1/cart/lines/"+string(line.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodDelete, "/api/sessions/s1/cart/lines/"+string(line.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, base+"/addons/damage-protection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode[selection.Selection](t, w).City)
}

func TestAdminRequiresRole(t *testing.T) {
	r := newTestRouter(t, "support")
	w := doJSON(r, http.MethodDelete, "/api/admin/products/sofa-3s", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCRUD(t *testing.T) {
	r := newTestRouter(t, "admin")

	p := catalogtest.Sofa()
	p.ID = ""
	p.Name = "Two-seater sofa"
	w := doJSON(r, http.MethodPost, "/api/admin/products", p)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[catalog.Product](t, w)
	require.NotEmpty(t, created.ID)

	created.CityPricing[0].TenurePricing[0].MonthlyRent = types.Paise(-1)
	w = doJSON(r, http.MethodPut, "/api/admin/products/"+string(created.ID), created)
	assert.Equal(t, http.StatusBadRequest, w.Code, "admin validation errors are the caller's fault")

	created.CityPricing[0].TenurePricing[0].MonthlyRent = types.Paise(99900)
	w = doJSON(r, http.MethodPut, "/api/admin/products/"+string(created.ID), created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, "/api/admin/products/other-id", created)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/admin/products/"+string(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(r, http.MethodGet, "/api/products/"+string(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	dup := catalogtest.Fridge()
	w = doJSON(r, http.MethodPost, "/api/admin/products", dup)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInvalidStoredPricingIs422(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	broken := catalogtest.Sofa()
	broken.CityPricing[0].TenurePricing[1].MonthlyRent = types.Paise(-100)
	r := newRouterWith(t, zap.New(core), "", broken)

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/api/products/sofa-3s/quote", map[string]any{"city": "Mumbai", "tenure_months": 6}},
		{http.MethodGet, "/api/products/sofa-3s/options", nil},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			before := logs.FilterMessage("pricing data rejected").Len()
			w := doJSON(r, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			body := decode[map[string]string](t, w)
			assert.Equal(t, "product pricing is unavailable", body["error"])

			rejected := logs.FilterMessage("pricing data rejected").All()
			require.Len(t, rejected, before+1)
			last := rejected[len(rejected)-1]
			assert.Equal(t, zapcore.ErrorLevel, last.Level)
			assert.Equal(t, "sofa-3s", last.ContextMap()["product_id"])
		})
	}
}

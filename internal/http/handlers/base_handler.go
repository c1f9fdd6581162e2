// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/modules/cart"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/modules/selection"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors to HTTP statuses. Bad rate
// data is a server-side bug, so it is logged and reported as 422 without detail.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrBadRequest),
		errors.Is(err, pricing.ErrBadRequest),
		errors.Is(err, selection.ErrBadRequest),
		errors.Is(err, cart.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, cart.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, pricing.ErrInvalidPricing), errors.Is(err, catalog.ErrInvalidProduct):
		log.Error("pricing data rejected",
			zap.String("path", c.FullPath()),
			zap.String("product_id", productParam(c)),
			zap.Error(err),
		)
		writeError(c, http.StatusUnprocessableEntity, "product pricing is unavailable")
	default:
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func productParam(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Param("product")
}

// README: Session handlers: per-product selection pickers and the cart.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/modules/cart"
	"storefront/internal/modules/selection"
	"storefront/internal/types"
)

type SessionHandler struct {
	selection *selection.Service
	cart      *cart.Service
	log       *zap.Logger
}

func NewSessionHandler(selectionSvc *selection.Service, cartSvc *cart.Service, log *zap.Logger) *SessionHandler {
	return &SessionHandler{selection: selectionSvc, cart: cartSvc, log: logging.OrNop(log)}
}

func sessionAndProduct(c *gin.Context) (string, types.ID) {
	return c.Param("session"), types.ID(c.Param("product"))
}

func (h *SessionHandler) GetSelection(c *gin.Context) {
	session, product := sessionAndProduct(c)
	sel, err := h.selection.Get(c.Request.Context(), session, product)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, sel)
}

// UpdateSelection applies the fields present in the body; absent fields keep their value.
func (h *SessionHandler) UpdateSelection(c *gin.Context) {
	var patch selection.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	session, product := sessionAndProduct(c)
	sel, err := h.selection.Update(c.Request.Context(), session, product, patch)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, sel)
}

func (h *SessionHandler) ClearSelection(c *gin.Context) {
	session, product := sessionAndProduct(c)
	if err := h.selection.Clear(c.Request.Context(), session, product); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) AddAddOn(c *gin.Context) {
	session, product := sessionAndProduct(c)
	sel, err := h.selection.AddAddOn(c.Request.Context(), session, product, c.Param("addon"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, sel)
}

func (h *SessionHandler) RemoveAddOn(c *gin.Context) {
	session, product := sessionAndProduct(c)
	sel, err := h.selection.RemoveAddOn(c.Request.Context(), session, product, c.Param("addon"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, sel)
}

func (h *SessionHandler) QuoteSelection(c *gin.Context) {
	session, product := sessionAndProduct(c)
	q, err := h.selection.Quote(c.Request.Context(), session, product)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *SessionHandler) GetCart(c *gin.Context) {
	ct, err := h.cart.Get(c.Request.Context(), c.Param("session"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, ct)
}

type addLineReq struct {
	ProductID     string   `json:"product_id"`
	FromSelection bool     `json:"from_selection"`
	City          string   `json:"city"`
	TenureMonths  int      `json:"tenure_months"`
	AddOnIDs      []string `json:"add_on_ids"`
}

func (h *SessionHandler) AddLine(c *gin.Context) {
	var req addLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(c, http.StatusBadRequest, "missing product_id")
		return
	}
	line, err := h.cart.AddLine(c.Request.Context(), cart.AddLineCommand{
		SessionID:     c.Param("session"),
		ProductID:     types.ID(req.ProductID),
		FromSelection: req.FromSelection,
		City:          req.City,
		TenureMonths:  req.TenureMonths,
		AddOnIDs:      req.AddOnIDs,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, line)
}

func (h *SessionHandler) RemoveLine(c *gin.Context) {
	if err := h.cart.RemoveLine(c.Request.Context(), c.Param("session"), types.ID(c.Param("line"))); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), c.Param("session")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) CartSummary(c *gin.Context) {
	sum, err := h.cart.Summary(c.Request.Context(), c.Param("session"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, sum)
}

// README: Product handlers: catalog browsing, picker options, quotes and admin CRUD.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/types"
)

type ProductHandler struct {
	catalog *catalog.Service
	pricing *pricing.Service
	log     *zap.Logger
}

func NewProductHandler(catalogSvc *catalog.Service, pricingSvc *pricing.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalogSvc, pricing: pricingSvc, log: logging.OrNop(log)}
}

type listResponse struct {
	Products []*catalog.Product `json:"products"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func (h *ProductHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok || offset < 0 {
		writeError(c, http.StatusBadRequest, "invalid offset")
		return
	}
	f := catalog.ListFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Limit:    limit,
		Offset:   offset,
	}
	products, err := h.catalog.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if products == nil {
		products = []*catalog.Product{}
	}
	f = f.Normalized()
	writeJSON(c, http.StatusOK, listResponse{Products: products, Limit: f.Limit, Offset: f.Offset})
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *ProductHandler) Options(c *gin.Context) {
	opts, err := h.pricing.Options(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, opts)
}

type quoteReq struct {
	City         string   `json:"city"`
	TenureMonths int      `json:"tenure_months"`
	AddOnIDs     []string `json:"add_on_ids"`
}

// Quote prices an explicit selection. An incomplete selection is 200 with available=false.
func (h *ProductHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.Quote(c.Request.Context(), types.ID(c.Param("id")), pricing.QuoteRequest{
		City:         req.City,
		TenureMonths: req.TenureMonths,
		AddOnIDs:     req.AddOnIDs,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.catalog.Create(c.Request.Context(), &p)
	if err != nil {
		writeAdminError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, created)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var p catalog.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id := types.ID(c.Param("id"))
	if p.ID != "" && p.ID != id {
		writeError(c, http.StatusBadRequest, "product id in body does not match path")
		return
	}
	p.ID = id
	updated, err := h.catalog.Update(c.Request.Context(), &p)
	if err != nil {
		writeAdminError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeAdminError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeAdminError reports validation failures back to the admin instead of
// treating them as stored-data bugs.
func writeAdminError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, catalog.ErrInvalidProduct) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeServiceError(c, log, err)
}

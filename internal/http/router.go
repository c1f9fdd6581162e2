// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/http/handlers"
	"storefront/internal/http/middleware"
	"storefront/internal/infra"
	"storefront/internal/logging"
	"storefront/internal/modules/cart"
	"storefront/internal/modules/catalog"
	"storefront/internal/modules/pricing"
	"storefront/internal/modules/selection"
)

type RouterDeps struct {
	Catalog   *catalog.Service
	Pricing   *pricing.Service
	Selection *selection.Service
	Cart      *cart.Service
	Verifier  infra.TokenVerifier
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := logging.OrNop(deps.Log)

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	products := handlers.NewProductHandler(deps.Catalog, deps.Pricing, log)
	sessions := handlers.NewSessionHandler(deps.Selection, deps.Cart, log)

	api := r.Group("/api")
	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.GET("/products/:id/options", products.Options)
	api.POST("/products/:id/quote", products.Quote)

	sel := api.Group("/sessions/:session/selections/:product")
	sel.GET("", sessions.GetSelection)
	sel.PUT("", sessions.UpdateSelection)
	sel.DELETE("", sessions.ClearSelection)
	sel.POST("/addons/:addon", sessions.AddAddOn)
	sel.DELETE("/addons/:addon", sessions.RemoveAddOn)
	sel.GET("/quote", sessions.QuoteSelection)

	ct := api.Group("/sessions/:session/cart")
	ct.GET("", sessions.GetCart)
	ct.DELETE("", sessions.ClearCart)
	ct.POST("/lines", sessions.AddLine)
	ct.DELETE("/lines/:line", sessions.RemoveLine)
	ct.GET("/summary", sessions.CartSummary)

	verifier := deps.Verifier
	if verifier == nil {
		verifier = infra.DisabledVerifier()
	}
	admin := api.Group("/admin", middleware.Auth(verifier), middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("/products", products.Create)
	admin.PUT("/products/:id", products.Update)
	admin.DELETE("/products/:id", products.Delete)

	return r
}

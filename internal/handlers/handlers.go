package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/cart"
	"github.com/Huc06/Backend-Ecommerce/internal/checkout"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/payments"
	"github.com/Huc06/Backend-Ecommerce/internal/products"
	"github.com/Huc06/Backend-Ecommerce/internal/vouchers"
)

// Config groups the dependencies for the HTTP layer, constructed once at
// process start.
type Config struct {
	Checkout   *checkout.Service
	Payments   *payments.Service
	Reconciler *payments.Reconciler
	Carts      *cart.Store
	Products   *products.Store
	Vouchers   *vouchers.Store
	Orders     *orders.Store
	Validator  *validatorv10.Validate
	Log        *zap.Logger
}

// Register mounts all routes.
func Register(r *gin.Engine, cfg Config) {
	registerCatalogRoutes(r, cfg)
	registerCartRoutes(r, cfg)
	registerCheckoutRoutes(r, cfg)
	registerOrderRoutes(r, cfg)
	registerPaymentRoutes(r, cfg)
}

// userID extracts the authenticated caller set by the auth layer in front of
// this service. Session issuance itself is out of scope here.
func userID(c *gin.Context) (string, bool) {
	uid := c.GetHeader("X-User-Id")
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_user"})
		return "", false
	}
	return uid, true
}

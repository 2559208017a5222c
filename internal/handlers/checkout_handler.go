package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/checkout"
	"github.com/Huc06/Backend-Ecommerce/internal/validation"
	"github.com/Huc06/Backend-Ecommerce/internal/vouchers"
)

func registerCheckoutRoutes(r *gin.Engine, cfg Config) {
	r.POST("/checkout", func(c *gin.Context) {
		ctx := c.Request.Context()

		uid, ok := userID(c)
		if !ok {
			return
		}

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		order, err := cfg.Checkout.Checkout(ctx, uid, checkout.Request{
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
			VoucherCode:     req.VoucherCode,
		})
		if err != nil {
			writeCheckoutError(c, cfg, err)
			return
		}

		c.JSON(http.StatusCreated, order)
	})
}

// writeCheckoutError maps the orchestrator's closed error set onto HTTP
// responses with enough detail for the client to correct its input.
func writeCheckoutError(c *gin.Context, cfg Config, err error) {
	var stockErr *checkout.InsufficientStockError
	var minErr *vouchers.BelowMinimumError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart", "message": "Cart is empty"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "message": stockErr.Error(), "product": stockErr.ProductName})
	case errors.Is(err, vouchers.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "voucher_not_found", "message": "Voucher not found"})
	case errors.Is(err, vouchers.ErrInactive),
		errors.Is(err, vouchers.ErrNotYetValid),
		errors.Is(err, vouchers.ErrExpired),
		errors.Is(err, vouchers.ErrLimitReached):
		c.JSON(http.StatusBadRequest, gin.H{"error": "voucher_rejected", "message": err.Error()})
	case errors.As(err, &minErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "voucher_rejected", "message": minErr.Error()})
	case errors.Is(err, checkout.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "Checkout conflicted with a concurrent request, please retry"})
	default:
		cfg.Log.Error("checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

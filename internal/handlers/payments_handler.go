package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/payments"
	"github.com/Huc06/Backend-Ecommerce/internal/validation"
)

func registerPaymentRoutes(r *gin.Engine, cfg Config) {
	r.POST("/payments/create-payment-url", func(c *gin.Context) {
		ctx := c.Request.Context()
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req validation.CreatePaymentURLRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		result, err := cfg.Payments.CreatePaymentURL(ctx, uid, req.OrderID, req.BankCode, c.ClientIP())
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			case errors.Is(err, payments.ErrAlreadyPaid):
				c.JSON(http.StatusBadRequest, gin.H{"error": "already_paid", "message": "Order already paid"})
			default:
				cfg.Log.Error("create payment url failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
			return
		}
		c.JSON(http.StatusOK, result)
	})

	// Browser redirect: verify and display, never mutate.
	r.GET("/payments/vnpay-return", func(c *gin.Context) {
		result := cfg.Reconciler.HandleReturn(c.Request.Context(), c.Request.URL.Query())
		c.JSON(http.StatusOK, result)
	})

	// Server-to-server notification: the write path. The body is the
	// structured ack the gateway uses to decide on redelivery.
	r.GET("/payments/vnpay-ipn", func(c *gin.Context) {
		ack := cfg.Reconciler.HandleNotification(c.Request.Context(), c.Request.URL.Query())
		c.JSON(http.StatusOK, ack)
	})

	r.GET("/payments/order/:orderId", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		p, err := cfg.Payments.GetByOrder(c.Request.Context(), uid, c.Param("orderId"))
		if err != nil {
			if errors.Is(err, payments.ErrPaymentNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "payment_not_found"})
				return
			}
			cfg.Log.Error("get payment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.GET("/payments", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		list, err := cfg.Payments.ListByUser(c.Request.Context(), uid)
		if err != nil {
			cfg.Log.Error("list payments failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, list)
	})
}

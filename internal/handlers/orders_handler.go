package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func registerOrderRoutes(r *gin.Engine, cfg Config) {
	r.GET("/orders", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		list, err := cfg.Orders.ListByUser(c.Request.Context(), uid)
		if err != nil {
			cfg.Log.Error("list orders failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/orders/:orderId", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		order, err := cfg.Orders.Get(c.Request.Context(), c.Param("orderId"))
		if err != nil {
			cfg.Log.Error("get order failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		// Same response for missing and foreign orders.
		if order == nil || order.UserID != uid {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		c.JSON(http.StatusOK, order)
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartpkg "github.com/Huc06/Backend-Ecommerce/internal/cart"
	"github.com/Huc06/Backend-Ecommerce/internal/validation"
)

func registerCartRoutes(r *gin.Engine, cfg Config) {
	r.GET("/cart", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		crt, err := cfg.Carts.Get(c.Request.Context(), uid)
		if err != nil {
			cfg.Log.Error("get cart failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		if crt == nil {
			crt = &cartpkg.Cart{UserID: uid, Lines: []cartpkg.Line{}}
		}
		c.JSON(http.StatusOK, crt)
	})

	r.POST("/cart/items", func(c *gin.Context) {
		ctx := c.Request.Context()
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req validation.AddCartItemRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		product, err := cfg.Products.Get(ctx, req.ProductID)
		if err != nil {
			cfg.Log.Error("get product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		// Unit price is snapshotted into the line at add time.
		crt, err := cfg.Carts.AddLine(ctx, uid, product.ProductID, req.Quantity, product.Price)
		if err != nil {
			cfg.Log.Error("add cart line failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, crt)
	})

	r.PUT("/cart/items/:productId", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		var req validation.UpdateCartItemRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		crt, err := cfg.Carts.UpdateLine(c.Request.Context(), uid, c.Param("productId"), req.Quantity)
		if err != nil {
			if errors.Is(err, cartpkg.ErrLineNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			cfg.Log.Error("update cart line failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, crt)
	})

	r.DELETE("/cart/items/:productId", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		crt, err := cfg.Carts.RemoveLine(c.Request.Context(), uid, c.Param("productId"))
		if err != nil {
			if errors.Is(err, cartpkg.ErrLineNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
				return
			}
			cfg.Log.Error("remove cart line failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, crt)
	})

	r.DELETE("/cart", func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		if err := cfg.Carts.Clear(c.Request.Context(), uid); err != nil {
			cfg.Log.Error("clear cart failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	})
}

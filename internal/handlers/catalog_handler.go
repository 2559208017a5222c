package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
	"github.com/Huc06/Backend-Ecommerce/internal/products"
	"github.com/Huc06/Backend-Ecommerce/internal/validation"
	"github.com/Huc06/Backend-Ecommerce/internal/vouchers"
)

// Catalog seeding endpoints. These sit behind the gateway's admin
// authorization; the service itself only validates the payloads.
func registerCatalogRoutes(r *gin.Engine, cfg Config) {
	r.POST("/products", func(c *gin.Context) {
		var req validation.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		price, err := money.Parse(req.Price)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "field": "price"})
			return
		}
		p := products.Product{
			ProductID:   uuid.NewString(),
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			Stock:       req.Stock,
			CategoryID:  req.CategoryID,
		}
		if err := cfg.Products.Put(c.Request.Context(), p); err != nil {
			cfg.Log.Error("create product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"productId": p.ProductID})
	})

	r.GET("/products/:productId", func(c *gin.Context) {
		p, err := cfg.Products.Get(c.Request.Context(), c.Param("productId"))
		if err != nil {
			cfg.Log.Error("get product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		if p == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.POST("/vouchers", func(c *gin.Context) {
		var req validation.CreateVoucherRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}
		value, err := money.Parse(req.DiscountValue)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "field": "discountValue"})
			return
		}
		v := vouchers.Voucher{
			Code:          req.Code,
			Description:   req.Description,
			DiscountType:  req.DiscountType,
			DiscountValue: value,
			UsageLimit:    req.UsageLimit,
			StartDate:     req.StartDate,
			ExpiryDate:    req.ExpiryDate,
			Status:        req.Status,
		}
		if req.MinOrderValue != "" {
			min, err := money.Parse(req.MinOrderValue)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "field": "minOrderValue"})
				return
			}
			v.MinOrderValue = &min
		}
		if req.MaxDiscountAmount != "" {
			max, err := money.Parse(req.MaxDiscountAmount)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_amount", "field": "maxDiscountAmount"})
				return
			}
			v.MaxDiscountAmount = &max
		}
		if err := cfg.Vouchers.Create(c.Request.Context(), v); err != nil {
			if errors.Is(err, vouchers.ErrCodeExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "code_exists"})
				return
			}
			cfg.Log.Error("create voucher failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": vouchers.NormalizeCode(v.Code)})
	})
}

package validation

import "time"

// CheckoutRequest is the payload for POST /checkout.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,min=10"` // full delivery address
	Notes           string `json:"notes,omitempty" validate:"omitempty,max=500"`
	VoucherCode     string `json:"voucherCode,omitempty" validate:"omitempty,min=3,max=32"`
}

// CreatePaymentURLRequest is the payload for POST /payments/create-payment-url.
type CreatePaymentURLRequest struct {
	OrderID  string `json:"orderId" validate:"required,uuid4"`
	BankCode string `json:"bankCode,omitempty" validate:"omitempty,alphanum"`
}

// AddCartItemRequest is the payload for POST /cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest is the payload for PUT /cart/items/:productId.
type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// CreateProductRequest is the payload for POST /products. Amounts travel as
// decimal strings; the handler parses them.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       string `json:"price" validate:"required"`
	Stock       int64  `json:"stock" validate:"min=0"`
	CategoryID  string `json:"categoryId,omitempty" validate:"omitempty,max=64"`
}

// CreateVoucherRequest is the payload for POST /vouchers.
type CreateVoucherRequest struct {
	Code              string     `json:"code" validate:"required,min=3,max=32"`
	Description       string     `json:"description,omitempty" validate:"omitempty,max=500"`
	DiscountType      string     `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue     string     `json:"discountValue" validate:"required"`
	MinOrderValue     string     `json:"minOrderValue,omitempty"`
	MaxDiscountAmount string     `json:"maxDiscountAmount,omitempty"`
	UsageLimit        int        `json:"usageLimit" validate:"min=0"` // 0 = unlimited
	StartDate         *time.Time `json:"startDate,omitempty"`
	ExpiryDate        *time.Time `json:"expiryDate,omitempty"`
	Status            string     `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

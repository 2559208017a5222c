package orders

import (
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Order statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderLine is a frozen snapshot of one cart line at checkout time. It is
// immutable once the order is created; the product name and unit price are
// decoupled from live product data.
type OrderLine struct {
	ProductID   string       `dynamodbav:"product_id" json:"productId"`
	ProductName string       `dynamodbav:"product_name" json:"productName"`
	UnitPrice   money.Amount `dynamodbav:"unit_price" json:"unitPrice"`
	Quantity    int64        `dynamodbav:"quantity" json:"quantity"`
}

// Order represents the item stored in the orders DynamoDB table. Amounts are
// fixed at creation; only Status mutates afterwards, through conditional
// updates.
type Order struct {
	OrderID         string       `dynamodbav:"order_id" json:"orderId"` // PK
	UserID          string       `dynamodbav:"user_id" json:"userId"`   // GSI user_id-index
	Subtotal        money.Amount `dynamodbav:"subtotal" json:"subtotal"`
	VoucherCode     string       `dynamodbav:"voucher_code,omitempty" json:"voucherCode,omitempty"`
	VoucherDiscount money.Amount `dynamodbav:"voucher_discount" json:"voucherDiscount"`
	TotalAmount     money.Amount `dynamodbav:"total_amount" json:"totalAmount"`
	Status          string       `dynamodbav:"status" json:"status"`
	ShippingAddress string       `dynamodbav:"shipping_address" json:"shippingAddress"`
	Notes           string       `dynamodbav:"notes,omitempty" json:"notes,omitempty"`
	Lines           []OrderLine  `dynamodbav:"lines" json:"lines"`
	CreatedAt       time.Time    `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `dynamodbav:"updated_at" json:"updatedAt"`
}

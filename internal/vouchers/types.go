package vouchers

import (
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Discount types
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Voucher statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Voucher is the item stored in the vouchers DynamoDB table. Codes are
// stored upper-case; Store.Get normalizes lookups.
type Voucher struct {
	Code              string        `dynamodbav:"code" json:"code"` // PK
	Description       string        `dynamodbav:"description,omitempty" json:"description,omitempty"`
	DiscountType      string        `dynamodbav:"discount_type" json:"discountType"` // percentage | fixed
	DiscountValue     money.Amount  `dynamodbav:"discount_value" json:"discountValue"`
	MinOrderValue     *money.Amount `dynamodbav:"min_order_value,omitempty" json:"minOrderValue,omitempty"`
	MaxDiscountAmount *money.Amount `dynamodbav:"max_discount_amount,omitempty" json:"maxDiscountAmount,omitempty"`
	UsageLimit        int           `dynamodbav:"usage_limit" json:"usageLimit"` // 0 = unlimited
	UsedCount         int           `dynamodbav:"used_count" json:"usedCount"`
	StartDate         *time.Time    `dynamodbav:"start_date,omitempty" json:"startDate,omitempty"`
	ExpiryDate        *time.Time    `dynamodbav:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	Status            string        `dynamodbav:"status" json:"status"` // active | inactive
	CreatedAt         time.Time     `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `dynamodbav:"updated_at" json:"updatedAt"`
}

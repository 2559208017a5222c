package cart

import (
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Line is one product entry in a cart. UnitPrice is snapshotted at add time
// and used as-is at checkout, decoupled from the live product price.
type Line struct {
	ProductID string       `dynamodbav:"product_id" json:"productId"`
	Quantity  int64        `dynamodbav:"quantity" json:"quantity"`
	UnitPrice money.Amount `dynamodbav:"unit_price" json:"unitPrice"`
}

// Cart is the single item stored per user in the carts DynamoDB table.
// Invariant: at most one Line per product (AddLine merges quantities).
type Cart struct {
	UserID    string    `dynamodbav:"user_id" json:"userId"` // PK
	Lines     []Line    `dynamodbav:"lines" json:"lines"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

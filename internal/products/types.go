package products

import (
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Product is the item stored in the products DynamoDB table. Stock is a
// non-negative counter; the only decrement path is the checkout
// transaction's conditional debit.
type Product struct {
	ProductID   string       `dynamodbav:"product_id" json:"productId"` // PK
	Name        string       `dynamodbav:"name" json:"name"`
	Description string       `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Price       money.Amount `dynamodbav:"price" json:"price"`
	Stock       int64        `dynamodbav:"stock" json:"stock"`
	CategoryID  string       `dynamodbav:"category_id,omitempty" json:"categoryId,omitempty"`
	CreatedAt   time.Time    `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `dynamodbav:"updated_at" json:"updatedAt"`
}

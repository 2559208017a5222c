package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Huc06/Backend-Ecommerce/internal/aws"
	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// ErrLineNotFound indicates an update/remove against a product that is not
// in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// Store encapsulates operations on the carts table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new cart Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Get fetches the user's cart. Returns (nil, nil) if the user has none.
func (s *Store) Get(ctx context.Context, userID string) (*Cart, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Cart
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &c, nil
}

// AddLine adds quantity of a product at the given unit-price snapshot,
// merging into the existing line if the product is already in the cart.
func (s *Store) AddLine(ctx context.Context, userID, productID string, quantity int64, unitPrice money.Amount) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.nowFunc()
	if c == nil {
		c = &Cart{UserID: userID, CreatedAt: now}
	}

	merged := false
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity, UnitPrice: unitPrice})
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateLine replaces the quantity of an existing line.
func (s *Store) UpdateLine(ctx context.Context, userID, productID string, quantity int64) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrLineNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			if err := s.save(ctx, c); err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	return nil, ErrLineNotFound
}

// RemoveLine deletes a line from the cart.
func (s *Store) RemoveLine(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrLineNotFound
	}
	kept := c.Lines[:0]
	found := false
	for _, l := range c.Lines {
		if l.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return nil, ErrLineNotFound
	}
	c.Lines = kept
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear deletes the user's cart outright (outside the checkout transaction).
func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// DeleteTransactItem builds the cart deletion for the checkout transaction,
// so the cart is cleared in the same atomic unit that creates the order. The
// delete is conditioned on the cart being unchanged since c was read: a line
// added mid-checkout aborts the transaction instead of vanishing unordered.
func (s *Store) DeleteTransactItem(c *Cart) (types.TransactWriteItem, error) {
	readAt, err := attributevalue.Marshal(c.UpdatedAt)
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("marshal cart read time: %w", err)
	}
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: &s.tableName,
			Key: map[string]types.AttributeValue{
				"user_id": &types.AttributeValueMemberS{Value: c.UserID},
			},
			ConditionExpression: awsString("updated_at = :read"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":read": readAt,
			},
		},
	}, nil
}

func awsString(s string) *string { return &s }

func (s *Store) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.nowFunc()
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}

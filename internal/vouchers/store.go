package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/Huc06/Backend-Ecommerce/internal/aws"
)

// ErrCodeExists indicates a Create against an existing code.
var ErrCodeExists = errors.New("voucher code already exists")

// Store encapsulates operations on the vouchers table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new vouchers Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// NormalizeCode upper-cases a voucher code for storage and lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create inserts a voucher with a zeroed usage counter. The code is
// normalized; a duplicate code returns ErrCodeExists.
func (s *Store) Create(ctx context.Context, v Voucher) error {
	now := s.nowFunc()
	v.Code = NormalizeCode(v.Code)
	v.UsedCount = 0
	if v.Status == "" {
		v.Status = StatusActive
	}
	v.CreatedAt = now
	v.UpdatedAt = now

	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal voucher: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(code)"),
	})
	if err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrCodeExists
		}
		return fmt.Errorf("put voucher: %w", err)
	}
	return nil
}

// Get fetches a voucher by code (case-insensitive). Returns (nil, nil) if
// not found.
func (s *Store) Get(ctx context.Context, code string) (*Voucher, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: NormalizeCode(code)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var v Voucher
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, fmt.Errorf("unmarshal voucher: %w", err)
	}
	return &v, nil
}

// RedeemTransactItem builds the transact item that counts one redemption.
// The condition re-validates the usage cap inside the checkout transaction,
// so a voucher can never be spent past its limit by racing checkouts.
func (s *Store) RedeemTransactItem(code string) types.TransactWriteItem {
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName: &s.tableName,
			Key: map[string]types.AttributeValue{
				"code": &types.AttributeValueMemberS{Value: NormalizeCode(code)},
			},
			UpdateExpression:    awsString("SET used_count = used_count + :one, updated_at = :ua"),
			ConditionExpression: awsString("usage_limit = :zero OR used_count < usage_limit"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":one":  &types.AttributeValueMemberN{Value: "1"},
				":zero": &types.AttributeValueMemberN{Value: "0"},
				":ua":   &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)},
			},
		},
	}
}

func awsString(s string) *string { return &s }

package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/Huc06/Backend-Ecommerce/internal/aws"
)

// ErrAlreadySucceeded indicates a write against a payment in terminal
// succeeded state.
var ErrAlreadySucceeded = errors.New("payment already succeeded")

// Store encapsulates operations on the payments table.
type Store struct {
	client      aws.DynamoDBAPI
	tableName   string
	txnRefIndex string
	userIndex   string
	nowFunc     func() time.Time
}

// NewStore creates a new payments Store. txnRefIndex and userIndex are the
// GSIs keyed on txn_ref and user_id.
func NewStore(client aws.DynamoDBAPI, tableName, txnRefIndex, userIndex string) *Store {
	return &Store{
		client:      client,
		tableName:   tableName,
		txnRefIndex: txnRefIndex,
		userIndex:   userIndex,
		nowFunc:     time.Now,
	}
}

// CreatePending writes the pending payment row for a new attempt. A fresh
// attempt may overwrite a pending or failed row (new txn ref), but never a
// succeeded one: that returns ErrAlreadySucceeded.
func (s *Store) CreatePending(ctx context.Context, p Payment) error {
	now := s.nowFunc()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Status = StatusPending

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString("attribute_not_exists(order_id) OR #s <> :succeeded"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":succeeded": &types.AttributeValueMemberS{Value: StatusSucceeded},
		},
	})
	if err != nil {
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrAlreadySucceeded
		}
		return fmt.Errorf("put payment: %w", err)
	}
	return nil
}

// GetByOrder fetches the payment for an order. Returns (nil, nil) if none.
func (s *Store) GetByOrder(ctx context.Context, orderID string) (*Payment, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Payment
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &p, nil
}

// GetByTxnRef looks a payment up by transaction reference via the txn_ref
// GSI. Returns (nil, nil) for an unknown reference.
func (s *Store) GetByTxnRef(ctx context.Context, txnRef string) (*Payment, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &s.txnRefIndex,
		KeyConditionExpression: awsString("txn_ref = :ref"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: txnRef},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query payment by txn_ref: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var p Payment
	if err := attributevalue.UnmarshalMap(out.Items[0], &p); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}
	return &p, nil
}

// ListByUser queries the user's payments via the user_id GSI.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &s.userIndex,
		KeyConditionExpression: awsString("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	list := make([]Payment, 0, len(out.Items))
	for _, item := range out.Items {
		var p Payment
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal payment: %w", err)
		}
		list = append(list, p)
	}
	return list, nil
}

// CallbackFields are the raw gateway fields recorded on a reconciled payment.
type CallbackFields struct {
	TransactionNo     string
	ResponseCode      string
	TransactionStatus string
	BankCode          string
	BankTranNo        string
	CardType          string
	PayDate           string
}

// MarkSucceeded moves the payment to succeeded and records the gateway
// fields. Conditional on not already being succeeded, which makes the
// transition exactly-once under replayed callbacks.
func (s *Store) MarkSucceeded(ctx context.Context, orderID string, cb CallbackFields) error {
	return s.markOutcome(ctx, orderID, StatusSucceeded, "", cb)
}

// MarkFailed moves the payment to failed with a human-readable reason and
// records the gateway fields.
func (s *Store) MarkFailed(ctx context.Context, orderID, reason string, cb CallbackFields) error {
	return s.markOutcome(ctx, orderID, StatusFailed, reason, cb)
}

func (s *Store) markOutcome(ctx context.Context, orderID, status, reason string, cb CallbackFields) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: awsString("SET #s = :new, transaction_no = :tno, response_code = :rc, transaction_status = :ts, bank_code = :bc, bank_tran_no = :btn, card_type = :ct, pay_date = :pd, failure_reason = :fr, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":       &types.AttributeValueMemberS{Value: status},
			":tno":       &types.AttributeValueMemberS{Value: cb.TransactionNo},
			":rc":        &types.AttributeValueMemberS{Value: cb.ResponseCode},
			":ts":        &types.AttributeValueMemberS{Value: cb.TransactionStatus},
			":bc":        &types.AttributeValueMemberS{Value: cb.BankCode},
			":btn":       &types.AttributeValueMemberS{Value: cb.BankTranNo},
			":ct":        &types.AttributeValueMemberS{Value: cb.CardType},
			":pd":        &types.AttributeValueMemberS{Value: cb.PayDate},
			":fr":        &types.AttributeValueMemberS{Value: reason},
			":ua":        &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":succeeded": &types.AttributeValueMemberS{Value: StatusSucceeded},
		},
		ConditionExpression: awsString("#s <> :succeeded"),
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrAlreadySucceeded
		}
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }

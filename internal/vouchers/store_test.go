package vouchers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// mockDynamo is a minimal in-memory mock keyed on code.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Item["code"].(*types.AttributeValueMemberS).Value
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(code)" {
		if _, exists := m.items[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["code"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return &dyn.QueryOutput{}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return &dyn.TransactWriteItemsOutput{}, nil
}

func TestCreate_NormalizesAndDefaults(t *testing.T) {
	store := NewStore(newMockDynamo(), "vouchers")
	store.nowFunc = func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	err := store.Create(ctx, Voucher{
		Code:          "half10",
		DiscountType:  TypePercentage,
		DiscountValue: money.New(10),
		UsedCount:     7, // callers cannot pre-spend a voucher
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	v, err := store.Get(ctx, "HaLf10")
	if err != nil || v == nil {
		t.Fatalf("get: %v %v", v, err)
	}
	if v.Code != "HALF10" {
		t.Fatalf("expected normalized code, got %q", v.Code)
	}
	if v.UsedCount != 0 {
		t.Fatalf("expected zeroed counter, got %d", v.UsedCount)
	}
	if v.Status != StatusActive {
		t.Fatalf("expected default active, got %q", v.Status)
	}
}

func TestCreate_DuplicateCode(t *testing.T) {
	store := NewStore(newMockDynamo(), "vouchers")
	ctx := context.Background()

	v := Voucher{Code: "HALF10", DiscountType: TypePercentage, DiscountValue: money.New(10)}
	if err := store.Create(ctx, v); err != nil {
		t.Fatalf("create: %v", err)
	}
	// same code in a different case collides after normalization
	v.Code = "half10"
	if err := store.Create(ctx, v); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", err)
	}
}

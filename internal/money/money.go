package money

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Amount is a monetary value with 2-decimal precision. It wraps a decimal so
// that subtotal/discount/total arithmetic never round-trips through float64,
// and marshals to a DynamoDB number attribute.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Amount{}

// New builds an Amount from integer units (e.g. New(200) == 200.00).
func New(units int64) Amount {
	return Amount{decimal.NewFromInt(units)}
}

// Parse parses a decimal string like "199.99".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

// MustParse is Parse for trusted literals (tests, seed data).
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }

// MulInt returns a * n, for extending a unit price over a quantity.
func (a Amount) MulInt(n int64) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromInt(n))}
}

// LessThan reports a < b.
func (a Amount) LessThan(b Amount) bool { return a.Decimal.LessThan(b.Decimal) }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.Decimal.GreaterThan(b.Decimal) }

// Equal reports numeric equality (1.5 == 1.50).
func (a Amount) Equal(b Amount) bool { return a.Decimal.Equal(b.Decimal) }

// Percent computes pct% of total, rounded half-up to 2 decimal places.
// This is the single rounding step in the discount computation; callers must
// not round again.
func Percent(total Amount, pct Amount) Amount {
	raw := total.Decimal.Mul(pct.Decimal).Div(decimal.NewFromInt(100))
	return Amount{raw.Round(2)}
}

// MinorUnits returns the amount in the gateway's minor-unit convention:
// rounded half-up to 2 decimal places, then * 100. Rounding first keeps a
// sub-cent stored amount consistent with the value the gateway echoes back.
func (a Amount) MinorUnits() int64 {
	return a.Decimal.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// FromMinorUnits converts a gateway minor-unit value back to an Amount.
func FromMinorUnits(n int64) Amount {
	return Amount{decimal.NewFromInt(n).Div(decimal.NewFromInt(100))}
}

// MarshalDynamoDBAttributeValue stores the amount as a number attribute.
func (a Amount) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: a.Decimal.String()}, nil
}

// UnmarshalDynamoDBAttributeValue reads a number (or numeric string) attribute.
func (a *Amount) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var raw string
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		raw = v.Value
	case *types.AttributeValueMemberS:
		raw = v.Value
	case *types.AttributeValueMemberNULL:
		*a = Zero
		return nil
	default:
		return fmt.Errorf("amount: unsupported attribute type %T", av)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("amount: parse %q: %w", raw, err)
	}
	a.Decimal = d
	return nil
}

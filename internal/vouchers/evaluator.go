package vouchers

import (
	"errors"
	"fmt"
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Evaluation failures. ErrNotFound is returned by callers that looked the
// code up; the rest come from Evaluate, which short-circuits on the first
// failed check.
var (
	ErrNotFound     = errors.New("voucher not found")
	ErrInactive     = errors.New("voucher is not active")
	ErrNotYetValid  = errors.New("voucher is not yet valid")
	ErrExpired      = errors.New("voucher has expired")
	ErrLimitReached = errors.New("voucher usage limit reached")
)

// BelowMinimumError reports an order total under the voucher's minimum.
type BelowMinimumError struct {
	MinOrderValue money.Amount
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order value is %s", e.MinOrderValue.String())
}

// Evaluate validates v against its constraints and computes the discount for
// orderTotal. It is side-effect-free; usage accounting happens inside the
// checkout transaction via RedeemTransactItem.
//
// Check order: active -> start date -> expiry date -> usage limit -> minimum
// order value. The discount is clamped to MaxDiscountAmount (percentage type)
// and finally to the order total, so the total never goes negative.
func Evaluate(v *Voucher, orderTotal money.Amount, now time.Time) (money.Amount, error) {
	if v.Status != StatusActive {
		return money.Zero, ErrInactive
	}
	if v.StartDate != nil && now.Before(*v.StartDate) {
		return money.Zero, ErrNotYetValid
	}
	if v.ExpiryDate != nil && now.After(*v.ExpiryDate) {
		return money.Zero, ErrExpired
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return money.Zero, ErrLimitReached
	}
	if v.MinOrderValue != nil && orderTotal.LessThan(*v.MinOrderValue) {
		return money.Zero, &BelowMinimumError{MinOrderValue: *v.MinOrderValue}
	}

	var discount money.Amount
	if v.DiscountType == TypePercentage {
		discount = money.Percent(orderTotal, v.DiscountValue)
		if v.MaxDiscountAmount != nil && discount.GreaterThan(*v.MaxDiscountAmount) {
			discount = *v.MaxDiscountAmount
		}
	} else {
		discount = v.DiscountValue
	}

	if discount.GreaterThan(orderTotal) {
		discount = orderTotal
	}
	return discount, nil
}

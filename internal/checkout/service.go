package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/aws"
	"github.com/Huc06/Backend-Ecommerce/internal/cart"
	"github.com/Huc06/Backend-Ecommerce/internal/metrics"
	"github.com/Huc06/Backend-Ecommerce/internal/money"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/products"
	"github.com/Huc06/Backend-Ecommerce/internal/vouchers"
)

// ConfirmationPublisher enqueues the post-commit order confirmation.
type ConfirmationPublisher interface {
	Publish(ctx context.Context, messageBody string, attributes map[string]string) error
}

// ConfirmationMessage is the payload sent to the confirmation queue and
// consumed by the worker.
type ConfirmationMessage struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// Request carries the checkout inputs.
type Request struct {
	ShippingAddress string
	Notes           string
	VoucherCode     string
}

// Service converts a cart into an immutable order under stock and voucher
// constraints, as one atomic unit of work.
type Service struct {
	dynamo    aws.DynamoDBAPI
	carts     *cart.Store
	products  *products.Store
	vouchers  *vouchers.Store
	orders    *orders.Store
	publisher ConfirmationPublisher
	recorder  *metrics.Recorder
	log       *zap.Logger
	nowFunc   func() time.Time
	newID     func() string
}

// NewService wires the orchestrator dependencies.
func NewService(
	dynamo aws.DynamoDBAPI,
	carts *cart.Store,
	productStore *products.Store,
	voucherStore *vouchers.Store,
	orderStore *orders.Store,
	publisher ConfirmationPublisher,
	recorder *metrics.Recorder,
	log *zap.Logger,
) *Service {
	return &Service{
		dynamo:    dynamo,
		carts:     carts,
		products:  productStore,
		vouchers:  voucherStore,
		orders:    orderStore,
		publisher: publisher,
		recorder:  recorder,
		log:       log,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// Checkout runs the full pipeline: load cart, advisory stock check, subtotal
// over the cart's snapshot prices, voucher evaluation, then one
// TransactWriteItems that creates the order, debits stock, clears the cart,
// and counts the redemption. Any failed condition aborts the whole unit.
func (s *Service) Checkout(ctx context.Context, userID string, req Request) (*orders.Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil || len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Advisory pass: reject an obviously doomed checkout before building the
	// transaction. The conditional debit below is the authoritative check.
	lineProducts := make([]*products.Product, len(c.Lines))
	subtotal := money.Zero
	for i, line := range c.Lines {
		p, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}
		if p == nil {
			return nil, fmt.Errorf("product %s no longer exists", line.ProductID)
		}
		if p.Stock < line.Quantity {
			return nil, &InsufficientStockError{ProductName: p.Name}
		}
		lineProducts[i] = p
		subtotal = subtotal.Add(line.UnitPrice.MulInt(line.Quantity))
	}

	discount := money.Zero
	voucherCode := ""
	if req.VoucherCode != "" {
		v, err := s.vouchers.Get(ctx, req.VoucherCode)
		if err != nil {
			return nil, fmt.Errorf("load voucher: %w", err)
		}
		if v == nil {
			return nil, vouchers.ErrNotFound
		}
		discount, err = vouchers.Evaluate(v, subtotal, s.nowFunc())
		if err != nil {
			return nil, err
		}
		voucherCode = v.Code
	}

	now := s.nowFunc()
	order := orders.Order{
		OrderID:         s.newID(),
		UserID:          userID,
		Subtotal:        subtotal,
		VoucherCode:     voucherCode,
		VoucherDiscount: discount,
		TotalAmount:     subtotal.Sub(discount),
		Status:          orders.StatusPending,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, line := range c.Lines {
		order.Lines = append(order.Lines, orders.OrderLine{
			ProductID:   line.ProductID,
			ProductName: lineProducts[i].Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}

	// Transact item layout: [0] order put, [1..n] stock debits,
	// [n+1] cart delete, [n+2] voucher redemption (if any). The cancellation
	// reason index maps a lost race back to its step.
	orderPut, err := s.orders.PutTransactItem(order)
	if err != nil {
		return nil, err
	}
	items := []types.TransactWriteItem{orderPut}
	for _, line := range c.Lines {
		items = append(items, s.products.DebitTransactItem(line.ProductID, line.Quantity))
	}
	cartDelete, err := s.carts.DeleteTransactItem(c)
	if err != nil {
		return nil, err
	}
	items = append(items, cartDelete)
	if voucherCode != "" {
		items = append(items, s.vouchers.RedeemTransactItem(voucherCode))
	}

	_, err = s.dynamo.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		werr := s.mapTransactError(ctx, err, c, voucherCode)
		s.log.Info("checkout aborted",
			zap.String("user_id", userID),
			zap.Error(werr))
		_ = s.recorder.Count(ctx, metrics.MetricCheckout, "aborted")
		return nil, werr
	}

	s.log.Info("checkout committed",
		zap.String("user_id", userID),
		zap.String("order_id", order.OrderID),
		zap.String("total", order.TotalAmount.String()))
	_ = s.recorder.Count(ctx, metrics.MetricCheckout, "committed")

	s.publishConfirmation(ctx, &order)

	return &order, nil
}

// mapTransactError attributes a canceled transaction to the step whose
// condition failed: a stock debit maps to InsufficientStockError, a voucher
// redemption to ErrLimitReached, a changed cart (or any unattributed cancel)
// to ErrConflict.
func (s *Service) mapTransactError(ctx context.Context, err error, c *cart.Cart, voucherCode string) error {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return fmt.Errorf("transact write: %w", err)
	}
	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		switch {
		case i >= 1 && i <= len(c.Lines):
			// Stock debit for line i-1 lost a concurrent race.
			return &InsufficientStockError{ProductName: s.productNameForLine(ctx, c.Lines[i-1].ProductID)}
		case i == len(c.Lines)+1:
			// Cart changed between read and commit; the client retries
			// against the current cart.
			return ErrConflict
		case voucherCode != "" && i == len(c.Lines)+2:
			return vouchers.ErrLimitReached
		}
	}
	return ErrConflict
}

func (s *Service) productNameForLine(ctx context.Context, productID string) string {
	// Best effort outside the aborted transaction; the id is a usable
	// fallback for the error message.
	p, err := s.products.Get(ctx, productID)
	if err != nil || p == nil {
		return productID
	}
	return p.Name
}

// publishConfirmation enqueues the order-confirmation notification. Best
// effort: a publish failure is logged and never fails the committed checkout.
func (s *Service) publishConfirmation(ctx context.Context, o *orders.Order) {
	if s.publisher == nil {
		return
	}
	payload, _ := json.Marshal(ConfirmationMessage{OrderID: o.OrderID, UserID: o.UserID})
	attrs := map[string]string{
		"order_id": o.OrderID,
		"user_id":  o.UserID,
	}
	if err := s.publisher.Publish(ctx, string(payload), attrs); err != nil {
		s.log.Warn("order confirmation enqueue failed",
			zap.String("order_id", o.OrderID),
			zap.Error(err))
	}
}

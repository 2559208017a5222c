package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/vnpay"
)

// Service failures surfaced to the caller.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrAlreadyPaid     = errors.New("order already paid")
	ErrPaymentNotFound = errors.New("payment not found")
)

// Service creates payment attempts and answers payment reads.
type Service struct {
	payments *Store
	orders   *orders.Store
	gateway  *vnpay.Client
	log      *zap.Logger
	nowFunc  func() time.Time
}

// NewService wires the payment service dependencies.
func NewService(payments *Store, orderStore *orders.Store, gateway *vnpay.Client, log *zap.Logger) *Service {
	return &Service{
		payments: payments,
		orders:   orderStore,
		gateway:  gateway,
		log:      log,
		nowFunc:  time.Now,
	}
}

// PaymentURLResult is the outcome of starting a payment attempt.
type PaymentURLResult struct {
	PaymentURL string `json:"paymentUrl"`
	TxnRef     string `json:"txnRef"`
}

// CreatePaymentURL starts (or restarts) a payment attempt for an order the
// user owns. Each attempt gets a fresh transaction reference; the pending
// payment row is written before the user is redirected so the later callback
// has something to reconcile against.
func (s *Service) CreatePaymentURL(ctx context.Context, userID, orderID, bankCode, ipAddr string) (*PaymentURLResult, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil || order.UserID != userID {
		// Not leaking whether the order exists for another user.
		return nil, ErrOrderNotFound
	}

	existing, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if existing != nil && existing.Status == StatusSucceeded {
		return nil, ErrAlreadyPaid
	}

	now := s.nowFunc()
	txnRef := vnpay.NewTxnRef(orderID, now)

	payment := Payment{
		OrderID:       orderID,
		UserID:        userID,
		Amount:        order.TotalAmount,
		PaymentMethod: "VNPAY",
		TxnRef:        txnRef,
	}
	if err := s.payments.CreatePending(ctx, payment); err != nil {
		if errors.Is(err, ErrAlreadySucceeded) {
			return nil, ErrAlreadyPaid
		}
		return nil, fmt.Errorf("create pending payment: %w", err)
	}

	paymentURL := s.gateway.CreatePaymentURL(vnpay.CreateParams{
		Amount:    order.TotalAmount,
		TxnRef:    txnRef,
		OrderInfo: fmt.Sprintf("Payment for order %s", orderID),
		IPAddr:    ipAddr,
		BankCode:  bankCode,
	})

	s.log.Info("payment url created",
		zap.String("order_id", orderID),
		zap.String("txn_ref", txnRef))

	return &PaymentURLResult{PaymentURL: paymentURL, TxnRef: txnRef}, nil
}

// GetByOrder returns the user's payment for an order.
func (s *Service) GetByOrder(ctx context.Context, userID, orderID string) (*Payment, error) {
	p, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// ListByUser returns all the user's payments.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

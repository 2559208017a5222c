package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/checkout"
	"github.com/Huc06/Backend-Ecommerce/internal/email"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/users"
)

// OrderReader and UserReader are the narrow store views the processor needs.
type OrderReader interface {
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

type UserReader interface {
	Get(ctx context.Context, userID string) (*users.User, error)
}

// Processor consumes confirmation messages and dispatches order emails.
// Delivery is best effort: a missing order or user drops the message with a
// log line rather than poisoning the queue.
type Processor struct {
	orders OrderReader
	users  UserReader
	mailer email.Mailer
	log    *zap.Logger
}

// NewProcessor wires the worker processor.
func NewProcessor(orderReader OrderReader, userReader UserReader, mailer email.Mailer, log *zap.Logger) *Processor {
	return &Processor{
		orders: orderReader,
		users:  userReader,
		mailer: mailer,
		log:    log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.log.Error("worker error", zap.Error(err))
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg checkout.ConfirmationMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	p.log.Info("confirmation received",
		zap.String("order_id", msg.OrderID),
		zap.String("user_id", msg.UserID))

	order, err := p.orders.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}
	if order == nil {
		// Checkout committed before publishing, so this should not happen;
		// drop rather than retry forever.
		p.log.Warn("order missing for confirmation", zap.String("order_id", msg.OrderID))
		return nil
	}

	user, err := p.users.Get(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if user == nil || user.Email == "" {
		p.log.Warn("no recipient for confirmation", zap.String("order_id", msg.OrderID))
		return nil
	}

	m := email.ComposeOrderConfirmation(order, user.Email, user.FullName)
	if err := p.mailer.Send(ctx, m); err != nil {
		// Fire and forget: log and drop.
		p.log.Warn("confirmation send failed",
			zap.String("order_id", msg.OrderID),
			zap.Error(err))
		return nil
	}

	p.log.Info("confirmation sent", zap.String("order_id", msg.OrderID))
	return nil
}

package email

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/orders"
)

// Message is an outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound email boundary. Delivery is fire-and-forget at the
// call sites: a send failure is logged, never propagated.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ComposeOrderConfirmation renders the confirmation message for an order.
func ComposeOrderConfirmation(o *orders.Order, toEmail, fullName string) Message {
	shortID := o.OrderID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	shortID = strings.ToUpper(shortID)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order #%s.\n\n", fullName, shortID)
	for _, line := range o.Lines {
		fmt.Fprintf(&b, "  %s x%d @ %s = %s\n",
			line.ProductName, line.Quantity, line.UnitPrice.String(), line.UnitPrice.MulInt(line.Quantity).String())
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", o.Subtotal.String())
	if o.VoucherCode != "" {
		fmt.Fprintf(&b, "Voucher %s: -%s\n", o.VoucherCode, o.VoucherDiscount.String())
	}
	fmt.Fprintf(&b, "Total: %s\n\nShipping to: %s\n", o.TotalAmount.String(), o.ShippingAddress)

	return Message{
		To:      toEmail,
		Subject: fmt.Sprintf("Order Confirmation #%s", shortID),
		Body:    b.String(),
	}
}

// LogMailer logs messages instead of delivering them. Used where no real
// transport is configured (local runs, tests).
type LogMailer struct {
	Log *zap.Logger
}

// Send logs the message and reports success.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.Log.Info("email (log only)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

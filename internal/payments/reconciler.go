package payments

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/metrics"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/vnpay"
)

// IPN acknowledgment codes. The gateway retries delivery on anything but
// RspOK / RspAlreadyConfirmed.
const (
	RspOK               = "00"
	RspOrderNotFound    = "01"
	RspAlreadyConfirmed = "02"
	RspAmountMismatch   = "04"
	RspChecksumFailed   = "97"
	RspInternalError    = "99"
)

// Ack is the structured acknowledgment returned to the notification channel.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// DisplayResult is what the browser-redirect channel shows the user. It is
// informational only; reloading the return URL never mutates payment state.
type DisplayResult struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	TxnRef  string `json:"txnRef,omitempty"`
	OrderID string `json:"orderId,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

// Reconciler maps verified gateway callbacks onto local payment and order
// state. All transitions are idempotent: a replayed success is acknowledged
// without further writes, and the order transition is a compare-and-swap
// that never clobbers a later manual status change.
type Reconciler struct {
	payments *Store
	orders   *orders.Store
	gateway  *vnpay.Client
	recorder *metrics.Recorder
	log      *zap.Logger
}

// NewReconciler wires the reconciler dependencies.
func NewReconciler(payments *Store, orderStore *orders.Store, gateway *vnpay.Client, recorder *metrics.Recorder, log *zap.Logger) *Reconciler {
	return &Reconciler{
		payments: payments,
		orders:   orderStore,
		gateway:  gateway,
		recorder: recorder,
		log:      log,
	}
}

// HandleNotification processes the server-to-server (IPN) callback. This is
// the only channel that mutates payment/order state.
func (r *Reconciler) HandleNotification(ctx context.Context, query url.Values) Ack {
	cb := r.gateway.VerifyCallback(query)
	if !cb.IsValid {
		// Fail closed: no lookup, no echo of order details.
		r.log.Warn("ipn signature verification failed")
		return Ack{RspCode: RspChecksumFailed, Message: "Invalid checksum"}
	}

	payment, err := r.payments.GetByTxnRef(ctx, cb.TxnRef)
	if err != nil {
		r.log.Error("ipn payment lookup failed", zap.Error(err), zap.String("txn_ref", cb.TxnRef))
		return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
	}
	if payment == nil {
		return Ack{RspCode: RspOrderNotFound, Message: "Order not found"}
	}

	// Compare in minor units, the precision the gateway echoes back.
	if cb.Amount.MinorUnits() != payment.Amount.MinorUnits() {
		r.log.Warn("ipn amount mismatch",
			zap.String("txn_ref", cb.TxnRef),
			zap.String("got", cb.Amount.String()),
			zap.String("want", payment.Amount.String()))
		return Ack{RspCode: RspAmountMismatch, Message: "Invalid amount"}
	}

	// Success requires both gateway fields; one successful-looking field is
	// not sufficient.
	succeeded := cb.ResponseCode == vnpay.Success && cb.TransactionStatus == vnpay.Success

	// Expected replay from at-least-once delivery. The order transition may
	// still be owed if a previous delivery failed between the payment write
	// and the order write, so settle it before acknowledging.
	if payment.Status == StatusSucceeded && succeeded {
		if err := r.ensureOrderProcessing(ctx, payment.OrderID); err != nil {
			r.log.Error("ipn order transition failed", zap.Error(err), zap.String("order_id", payment.OrderID))
			return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
		}
		return Ack{RspCode: RspAlreadyConfirmed, Message: "Order already confirmed"}
	}

	fields := CallbackFields{
		TransactionNo:     cb.TransactionNo,
		ResponseCode:      cb.ResponseCode,
		TransactionStatus: cb.TransactionStatus,
		BankCode:          cb.BankCode,
		BankTranNo:        cb.BankTranNo,
		CardType:          cb.CardType,
		PayDate:           cb.PayDate,
	}

	if succeeded {
		if err := r.payments.MarkSucceeded(ctx, payment.OrderID, fields); err != nil {
			if errors.Is(err, ErrAlreadySucceeded) {
				// A racing delivery won the payment write; the order
				// transition may still be ours to finish.
				if uerr := r.ensureOrderProcessing(ctx, payment.OrderID); uerr != nil {
					r.log.Error("ipn order transition failed", zap.Error(uerr), zap.String("order_id", payment.OrderID))
					return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
				}
				return Ack{RspCode: RspAlreadyConfirmed, Message: "Order already confirmed"}
			}
			r.log.Error("ipn mark succeeded failed", zap.Error(err), zap.String("order_id", payment.OrderID))
			return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
		}
		if err := r.ensureOrderProcessing(ctx, payment.OrderID); err != nil {
			// Payment is recorded; let the gateway redeliver so the order
			// transition gets another chance.
			r.log.Error("ipn order transition failed", zap.Error(err), zap.String("order_id", payment.OrderID))
			return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
		}
		r.log.Info("payment reconciled",
			zap.String("order_id", payment.OrderID),
			zap.String("txn_ref", cb.TxnRef))
		_ = r.recorder.Count(ctx, metrics.MetricReconcile, "succeeded")
		return Ack{RspCode: RspOK, Message: "Confirm success"}
	}

	reason := vnpay.ResponseCodeMessage(cb.ResponseCode)
	if err := r.payments.MarkFailed(ctx, payment.OrderID, reason, fields); err != nil {
		if errors.Is(err, ErrAlreadySucceeded) {
			// A late failure callback must not undo a recorded success.
			if uerr := r.ensureOrderProcessing(ctx, payment.OrderID); uerr != nil {
				r.log.Error("ipn order transition failed", zap.Error(uerr), zap.String("order_id", payment.OrderID))
				return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
			}
			return Ack{RspCode: RspAlreadyConfirmed, Message: "Order already confirmed"}
		}
		r.log.Error("ipn mark failed failed", zap.Error(err), zap.String("order_id", payment.OrderID))
		return Ack{RspCode: RspInternalError, Message: "Temporary failure, retry later"}
	}
	r.log.Info("payment marked failed",
		zap.String("order_id", payment.OrderID),
		zap.String("txn_ref", cb.TxnRef),
		zap.String("response_code", cb.ResponseCode))
	_ = r.recorder.Count(ctx, metrics.MetricReconcile, "failed")
	return Ack{RspCode: RspOK, Message: "Confirm success"}
}

// ensureOrderProcessing settles the pending -> processing transition owed to
// a recorded payment success. ErrStatusMismatch means the order already moved
// on (here or manually) and is not an error.
func (r *Reconciler) ensureOrderProcessing(ctx context.Context, orderID string) error {
	err := r.orders.UpdateStatus(ctx, orderID, orders.StatusPending, orders.StatusProcessing)
	if err != nil && !errors.Is(err, orders.ErrStatusMismatch) {
		return err
	}
	return nil
}

// HandleReturn processes the browser-redirect callback: verify and display
// only. The user can reload this URL arbitrarily many times; the IPN channel
// owns all writes.
func (r *Reconciler) HandleReturn(ctx context.Context, query url.Values) DisplayResult {
	cb := r.gateway.VerifyCallback(query)
	if !cb.IsValid {
		return DisplayResult{
			Success: false,
			Code:    RspChecksumFailed,
			Message: "Payment verification failed",
		}
	}

	res := DisplayResult{
		Code:    cb.ResponseCode,
		Message: vnpay.ResponseCodeMessage(cb.ResponseCode),
		TxnRef:  cb.TxnRef,
		Amount:  cb.Amount.String(),
		Success: cb.ResponseCode == vnpay.Success && cb.TransactionStatus == vnpay.Success,
	}
	if payment, err := r.payments.GetByTxnRef(ctx, cb.TxnRef); err == nil && payment != nil {
		res.OrderID = payment.OrderID
	}
	return res
}

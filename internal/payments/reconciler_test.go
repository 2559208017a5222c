package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
	"github.com/Huc06/Backend-Ecommerce/internal/orders"
	"github.com/Huc06/Backend-Ecommerce/internal/vnpay"
)

const testSecret = "test-secret"

// signQuery appends vnp_SecureHash the way the gateway does: drop empty
// values, sort by key, HMAC-SHA512 over the encoded form.
func signQuery(q url.Values) url.Values {
	filtered := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				filtered.Add(k, v)
			}
		}
	}
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write([]byte(filtered.Encode()))
	q.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return q
}

func successQuery(txnRef string, minorUnits string) url.Values {
	q := url.Values{}
	q.Set("vnp_TxnRef", txnRef)
	q.Set("vnp_Amount", minorUnits)
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_TransactionStatus", "00")
	q.Set("vnp_TransactionNo", "14400996")
	q.Set("vnp_BankCode", "NCB")
	q.Set("vnp_PayDate", "20250314120000")
	return signQuery(q)
}

func newTestReconciler(mock *mockDynamo) *Reconciler {
	return NewReconciler(
		newTestStore(mock),
		orders.NewStore(mock, "orders", "user_id-index"),
		vnpay.New(vnpay.Config{TmnCode: "TESTTMN", SecretKey: testSecret}),
		nil,
		zap.NewNop(),
	)
}

func seedOrder(t *testing.T, m *mockDynamo, o orders.Order) {
	t.Helper()
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	m.ensureTable("orders")
	m.tables["orders"][o.OrderID] = item
}

func seedPendingAttempt(t *testing.T, m *mockDynamo) {
	t.Helper()
	seedOrder(t, m, orders.Order{
		OrderID: "o1", UserID: "u1",
		TotalAmount: money.New(200), Status: orders.StatusPending,
	})
	seedPayment(t, m, "payments", Payment{
		OrderID: "o1", UserID: "u1", Amount: money.New(200),
		Status: StatusPending, TxnRef: "ref-1",
	})
}

func TestHandleNotification_Success(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	ack := r.HandleNotification(context.Background(), successQuery("ref-1", "20000"))
	if ack.RspCode != RspOK {
		t.Fatalf("expected 00, got %s (%s)", ack.RspCode, ack.Message)
	}

	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusSucceeded {
		t.Fatalf("expected payment succeeded, got %s", got)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "transaction_no"); got != "14400996" {
		t.Fatalf("gateway fields not recorded, transaction_no=%q", got)
	}
	if got := strAttr(mock.tables["orders"]["o1"], "status"); got != orders.StatusProcessing {
		t.Fatalf("expected order processing, got %s", got)
	}
}

func TestHandleNotification_ReplayAcknowledgedWithoutWrites(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	q := successQuery("ref-1", "20000")
	if ack := r.HandleNotification(context.Background(), q); ack.RspCode != RspOK {
		t.Fatalf("first delivery: expected 00, got %s", ack.RspCode)
	}

	// manual fulfilment moves the order on; a replay must not touch it
	seedOrder(t, mock, orders.Order{
		OrderID: "o1", UserID: "u1",
		TotalAmount: money.New(200), Status: orders.StatusShipped,
	})

	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspAlreadyConfirmed {
		t.Fatalf("expected 02, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["orders"]["o1"], "status"); got != orders.StatusShipped {
		t.Fatalf("replay clobbered order status: %s", got)
	}
}

func TestHandleNotification_OrderTransitionRecoveredOnRedelivery(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	// payment write lands, then the order write is throttled
	mock.updateErrs = map[string]int{"orders": 1}
	q := successQuery("ref-1", "20000")
	if ack := r.HandleNotification(context.Background(), q); ack.RspCode != RspInternalError {
		t.Fatalf("expected 99 on order write failure, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusSucceeded {
		t.Fatalf("payment should be recorded, got %s", got)
	}
	if got := strAttr(mock.tables["orders"]["o1"], "status"); got != orders.StatusPending {
		t.Fatalf("order should still be pending, got %s", got)
	}

	// the gateway redelivers; the replay must settle the owed transition
	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspAlreadyConfirmed {
		t.Fatalf("expected 02 on redelivery, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["orders"]["o1"], "status"); got != orders.StatusProcessing {
		t.Fatalf("redelivery left the order behind: %s", got)
	}
}

func TestHandleNotification_TamperRejectedBeforeLookup(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	q := successQuery("ref-1", "20000")
	q.Set("vnp_ResponseCode", "07") // tampered field, hash unchanged

	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspChecksumFailed {
		t.Fatalf("expected 97, got %s", ack.RspCode)
	}
	if mock.queryCalls != 0 {
		t.Fatal("invalid signature must fail closed, before any lookup")
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusPending {
		t.Fatalf("payment mutated: %s", got)
	}
}

func TestHandleNotification_UnknownRef(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)

	ack := r.HandleNotification(context.Background(), successQuery("ghost-ref", "20000"))
	if ack.RspCode != RspOrderNotFound {
		t.Fatalf("expected 01, got %s", ack.RspCode)
	}
}

func TestHandleNotification_AmountMismatch(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	// validly signed, but for the wrong amount
	ack := r.HandleNotification(context.Background(), successQuery("ref-1", "100"))
	if ack.RspCode != RspAmountMismatch {
		t.Fatalf("expected 04, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusPending {
		t.Fatalf("payment mutated on amount mismatch: %s", got)
	}
}

func TestHandleNotification_SubCentAmountReconciles(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	// a seeded price with sub-cent precision leaks into the totals; the
	// gateway only ever sees whole minor units
	seedOrder(t, mock, orders.Order{
		OrderID: "o1", UserID: "u1",
		TotalAmount: money.MustParse("19.999"), Status: orders.StatusPending,
	})
	seedPayment(t, mock, "payments", Payment{
		OrderID: "o1", UserID: "u1", Amount: money.MustParse("19.999"),
		Status: StatusPending, TxnRef: "ref-1",
	})

	ack := r.HandleNotification(context.Background(), successQuery("ref-1", "2000"))
	if ack.RspCode != RspOK {
		t.Fatalf("expected 00, got %s (%s)", ack.RspCode, ack.Message)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusSucceeded {
		t.Fatalf("expected succeeded, got %s", got)
	}
}

func TestHandleNotification_GatewayFailureCode(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	q := url.Values{}
	q.Set("vnp_TxnRef", "ref-1")
	q.Set("vnp_Amount", "20000")
	q.Set("vnp_ResponseCode", "51")
	q.Set("vnp_TransactionStatus", "02")
	q = signQuery(q)

	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspOK {
		t.Fatalf("a recorded failure still acks 00, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "failure_reason"); got != "Insufficient account balance" {
		t.Fatalf("unexpected failure reason %q", got)
	}
	// the order stays pending so the user can retry payment
	if got := strAttr(mock.tables["orders"]["o1"], "status"); got != orders.StatusPending {
		t.Fatalf("order must stay pending, got %s", got)
	}
}

func TestHandleNotification_SuccessRequiresBothFields(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	// response code 00 but transaction status not 00: not a success
	q := url.Values{}
	q.Set("vnp_TxnRef", "ref-1")
	q.Set("vnp_Amount", "20000")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_TransactionStatus", "02")
	q = signQuery(q)

	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspOK {
		t.Fatalf("expected 00, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}

func TestHandleNotification_LateFailureAfterSuccess(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedOrder(t, mock, orders.Order{
		OrderID: "o1", UserID: "u1",
		TotalAmount: money.New(200), Status: orders.StatusProcessing,
	})
	seedPayment(t, mock, "payments", Payment{
		OrderID: "o1", UserID: "u1", Amount: money.New(200),
		Status: StatusSucceeded, TxnRef: "ref-1",
	})

	q := url.Values{}
	q.Set("vnp_TxnRef", "ref-1")
	q.Set("vnp_Amount", "20000")
	q.Set("vnp_ResponseCode", "51")
	q.Set("vnp_TransactionStatus", "02")
	q = signQuery(q)

	ack := r.HandleNotification(context.Background(), q)
	if ack.RspCode != RspAlreadyConfirmed {
		t.Fatalf("expected 02, got %s", ack.RspCode)
	}
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusSucceeded {
		t.Fatalf("late failure undid a success: %s", got)
	}
}

func TestHandleReturn_DisplaysWithoutWrites(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)
	seedPendingAttempt(t, mock)

	res := r.HandleReturn(context.Background(), successQuery("ref-1", "20000"))
	if !res.Success {
		t.Fatalf("expected success display, got %+v", res)
	}
	if res.OrderID != "o1" {
		t.Fatalf("expected order id resolved, got %q", res.OrderID)
	}
	// display only: the IPN channel owns the writes
	if got := strAttr(mock.tables["payments"]["o1"], "status"); got != StatusPending {
		t.Fatalf("return channel mutated payment: %s", got)
	}
}

func TestHandleReturn_InvalidSignature(t *testing.T) {
	mock := newMockDynamo()
	r := newTestReconciler(mock)

	q := successQuery("ref-1", "20000")
	q.Set("vnp_ResponseCode", "99")

	res := r.HandleReturn(context.Background(), q)
	if res.Success || res.Code != RspChecksumFailed {
		t.Fatalf("expected checksum failure display, got %+v", res)
	}
}

package payments

import (
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Payment statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusRefunded   = "refunded"
)

// Payment is the item stored in the payments DynamoDB table. Exactly one
// payment row exists per order; a re-attempt after failure reuses the row
// with a fresh TxnRef.
type Payment struct {
	OrderID           string       `dynamodbav:"order_id" json:"orderId"` // PK
	UserID            string       `dynamodbav:"user_id" json:"userId"`   // GSI user_id-index
	Amount            money.Amount `dynamodbav:"amount" json:"amount"`
	Status            string       `dynamodbav:"status" json:"status"`
	PaymentMethod     string       `dynamodbav:"payment_method" json:"paymentMethod"`
	TxnRef            string       `dynamodbav:"txn_ref" json:"txnRef"` // GSI txn_ref-index, unique per attempt
	TransactionNo     string       `dynamodbav:"transaction_no,omitempty" json:"transactionNo,omitempty"`
	ResponseCode      string       `dynamodbav:"response_code,omitempty" json:"responseCode,omitempty"`
	TransactionStatus string       `dynamodbav:"transaction_status,omitempty" json:"transactionStatus,omitempty"`
	BankCode          string       `dynamodbav:"bank_code,omitempty" json:"bankCode,omitempty"`
	BankTranNo        string       `dynamodbav:"bank_tran_no,omitempty" json:"bankTranNo,omitempty"`
	CardType          string       `dynamodbav:"card_type,omitempty" json:"cardType,omitempty"`
	PayDate           string       `dynamodbav:"pay_date,omitempty" json:"payDate,omitempty"`
	FailureReason     string       `dynamodbav:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt         time.Time    `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt         time.Time    `dynamodbav:"updated_at" json:"updatedAt"`
}

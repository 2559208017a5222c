package config

import (
	"os"

	"github.com/Huc06/Backend-Ecommerce/internal/vnpay"
)

// Config gathers everything read from the environment at process start.
type Config struct {
	ProductsTable string
	CartsTable    string
	OrdersTable   string
	VouchersTable string
	PaymentsTable string
	UsersTable    string

	OrdersUserIndex     string
	PaymentsTxnRefIndex string
	PaymentsUserIndex   string

	ConfirmationQueueURL string
	MetricsNamespace     string

	VNPay vnpay.Config
}

// FromEnv reads the configuration. Defaults cover local runs; production
// deployments set everything explicitly.
func FromEnv() Config {
	return Config{
		ProductsTable: envOr("PRODUCTS_TABLE", "products"),
		CartsTable:    envOr("CARTS_TABLE", "carts"),
		OrdersTable:   envOr("ORDERS_TABLE", "orders"),
		VouchersTable: envOr("VOUCHERS_TABLE", "vouchers"),
		PaymentsTable: envOr("PAYMENTS_TABLE", "payments"),
		UsersTable:    envOr("USERS_TABLE", "users"),

		OrdersUserIndex:     envOr("ORDERS_USER_INDEX", "user_id-index"),
		PaymentsTxnRefIndex: envOr("PAYMENTS_TXNREF_INDEX", "txn_ref-index"),
		PaymentsUserIndex:   envOr("PAYMENTS_USER_INDEX", "user_id-index"),

		ConfirmationQueueURL: os.Getenv("CONFIRMATION_QUEUE_URL"),
		MetricsNamespace:     envOr("METRICS_NAMESPACE", "Ecommerce/Backend"),

		VNPay: vnpay.Config{
			TmnCode:   os.Getenv("VNPAY_TMN_CODE"),
			SecretKey: os.Getenv("VNPAY_SECRET_KEY"),
			PayURL:    envOr("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL: envOr("VNPAY_RETURN_URL", "http://localhost:8080/payments/vnpay-return"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

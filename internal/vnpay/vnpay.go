// Package vnpay is the signing/verification boundary with the external
// payment processor. Building a payment URL is pure local work (no network
// round-trip); the processor answers later through the return-redirect and
// IPN callbacks, which must be verified here before anything downstream
// trusts them.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Huc06/Backend-Ecommerce/internal/money"
)

// Canonical parameter names. vnp_SecureHash and vnp_SecureHashType are never
// part of the signed payload.
const (
	paramVersion     = "vnp_Version"
	paramCommand     = "vnp_Command"
	paramTmnCode     = "vnp_TmnCode"
	paramAmount      = "vnp_Amount"
	paramCurrCode    = "vnp_CurrCode"
	paramTxnRef      = "vnp_TxnRef"
	paramOrderInfo   = "vnp_OrderInfo"
	paramOrderType   = "vnp_OrderType"
	paramLocale      = "vnp_Locale"
	paramReturnURL   = "vnp_ReturnUrl"
	paramIPAddr      = "vnp_IpAddr"
	paramCreateDate  = "vnp_CreateDate"
	paramBankCode    = "vnp_BankCode"
	paramSecureHash  = "vnp_SecureHash"
	paramHashType    = "vnp_SecureHashType"
	paramRespCode    = "vnp_ResponseCode"
	paramTxnStatus   = "vnp_TransactionStatus"
	paramTxnNo       = "vnp_TransactionNo"
	paramBankTranNo  = "vnp_BankTranNo"
	paramCardType    = "vnp_CardType"
	paramPayDate     = "vnp_PayDate"
)

// Success is the gateway code meaning an approved transaction, for both the
// response code and the transaction status fields.
const Success = "00"

const dateLayout = "20060102150405" // yyyyMMddHHmmss

// Config holds the merchant credentials shared with the gateway.
type Config struct {
	TmnCode   string
	SecretKey string
	PayURL    string
	ReturnURL string
}

// Client signs outbound payment URLs and verifies inbound callbacks.
type Client struct {
	cfg     Config
	nowFunc func() time.Time
}

// New returns a Client for the given merchant config.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, nowFunc: time.Now}
}

// CreateParams are the inputs for one payment attempt.
type CreateParams struct {
	Amount    money.Amount
	TxnRef    string
	OrderInfo string
	IPAddr    string
	BankCode  string
}

// NewTxnRef derives a transaction reference unique per attempt from the
// order id and the attempt timestamp.
func NewTxnRef(orderID string, now time.Time) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s", short, now.Format(dateLayout))
}

// CreatePaymentURL builds the redirect URL for one payment attempt: fixed
// field names, amount in minor units, sorted and URL-encoded parameters,
// HMAC-SHA512 digest appended as vnp_SecureHash (excluded from the signed
// payload).
func (c *Client) CreatePaymentURL(p CreateParams) string {
	params := url.Values{}
	params.Set(paramVersion, "2.1.0")
	params.Set(paramCommand, "pay")
	params.Set(paramTmnCode, c.cfg.TmnCode)
	params.Set(paramAmount, strconv.FormatInt(p.Amount.MinorUnits(), 10))
	params.Set(paramCurrCode, "VND")
	params.Set(paramTxnRef, p.TxnRef)
	params.Set(paramOrderInfo, p.OrderInfo)
	params.Set(paramOrderType, "other")
	params.Set(paramLocale, "vn")
	params.Set(paramReturnURL, c.cfg.ReturnURL)
	params.Set(paramIPAddr, p.IPAddr)
	params.Set(paramCreateDate, c.nowFunc().Format(dateLayout))
	if p.BankCode != "" {
		params.Set(paramBankCode, p.BankCode)
	}

	signed := canonicalize(params)
	digest := c.sign(signed)
	return fmt.Sprintf("%s?%s&%s=%s", c.cfg.PayURL, signed, paramSecureHash, digest)
}

// VerifyResult is the parsed, authenticity-checked callback payload.
// IsValid=false means the signature failed and nothing else in the result
// may be trusted.
type VerifyResult struct {
	IsValid           bool
	TxnRef            string
	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	BankTranNo        string
	CardType          string
	PayDate           string
	OrderInfo         string
	Amount            money.Amount
}

// VerifyCallback checks a callback's signature by re-deriving the digest
// over the same canonical form used at URL-construction time. Both delivery
// channels (browser return and IPN) go through here.
func (c *Client) VerifyCallback(query url.Values) VerifyResult {
	received := query.Get(paramSecureHash)

	params := url.Values{}
	for k, vs := range query {
		if k == paramSecureHash || k == paramHashType {
			continue
		}
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	expected := c.sign(canonicalize(params))
	valid := received != "" && hmac.Equal([]byte(received), []byte(expected))

	res := VerifyResult{
		IsValid:           valid,
		TxnRef:            query.Get(paramTxnRef),
		ResponseCode:      query.Get(paramRespCode),
		TransactionStatus: query.Get(paramTxnStatus),
		TransactionNo:     query.Get(paramTxnNo),
		BankCode:          query.Get(paramBankCode),
		BankTranNo:        query.Get(paramBankTranNo),
		CardType:          query.Get(paramCardType),
		PayDate:           query.Get(paramPayDate),
		OrderInfo:         query.Get(paramOrderInfo),
	}
	if raw := query.Get(paramAmount); raw != "" {
		if minor, err := strconv.ParseInt(raw, 10, 64); err == nil {
			res.Amount = money.FromMinorUnits(minor)
		}
	}
	return res
}

// canonicalize drops empty values, sorts the remaining fields by key
// ascending, and URL-encodes the key=value pairs. url.Values.Encode sorts by
// key, which gives the fixed signing order.
func canonicalize(params url.Values) string {
	filtered := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				filtered.Add(k, v)
			}
		}
	}
	return filtered.Encode()
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha512.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// ResponseCodeMessage maps a gateway response code to a human-readable
// failure reason.
func ResponseCodeMessage(code string) string {
	switch code {
	case "00":
		return "Transaction successful"
	case "07":
		return "Amount deducted; transaction flagged as suspicious"
	case "09":
		return "Card/account not registered for online banking"
	case "10":
		return "Card/account verification failed more than 3 times"
	case "11":
		return "Payment window expired; please retry the transaction"
	case "12":
		return "Card/account is locked"
	case "13":
		return "Incorrect transaction password (OTP)"
	case "51":
		return "Insufficient account balance"
	case "65":
		return "Daily transaction limit exceeded"
	case "75":
		return "Issuing bank under maintenance"
	case "79":
		return "Incorrect payment password entered too many times"
	case "99":
		return "Unknown error"
	}
	return "Unrecognized response code"
}

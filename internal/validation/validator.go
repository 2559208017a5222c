package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// Reject a voucher code that is only whitespace before it reaches the
	// evaluator.
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)
	if req.VoucherCode == "" {
		return
	}
	for _, r := range req.VoucherCode {
		if r != ' ' && r != '\t' {
			return
		}
	}
	sl.ReportError(req.VoucherCode, "voucherCode", "VoucherCode", "voucher_code_blank", "")
}

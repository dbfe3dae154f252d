package enums

import "fmt"

// PaymentTerm is the supplier settlement term agreed on a goods receipt.
type PaymentTerm string

const (
	PaymentTermCash     PaymentTerm = "CASH"
	PaymentTermCredit15 PaymentTerm = "CREDIT_15"
	PaymentTermCredit30 PaymentTerm = "CREDIT_30"
	PaymentTermCredit60 PaymentTerm = "CREDIT_60"
)

var validPaymentTerms = []PaymentTerm{
	PaymentTermCash,
	PaymentTermCredit15,
	PaymentTermCredit30,
	PaymentTermCredit60,
}

// String implements fmt.Stringer.
func (p PaymentTerm) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentTerm.
func (p PaymentTerm) IsValid() bool {
	for _, candidate := range validPaymentTerms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentTerm converts raw input into a PaymentTerm.
func ParsePaymentTerm(value string) (PaymentTerm, error) {
	for _, candidate := range validPaymentTerms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment term %q", value)
}

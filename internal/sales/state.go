package sales

import (
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// StatusFor derives the payment status from the invoice total and the
// cumulative paid amount. Paid amounts never exceed the total, so a zero
// total invoice is PAID from the start.
func StatusFor(total, paid decimal.Decimal) enums.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return enums.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return enums.PaymentStatusPartial
	default:
		return enums.PaymentStatusUnpaid
	}
}

// CheckAddPayment guards the payment transition: a fully paid invoice takes
// no further payments, and a payment never pushes the paid amount past the
// total.
func CheckAddPayment(invoice *models.SalesInvoice, amount decimal.Decimal) error {
	if invoice.PaymentStatus == enums.PaymentStatusPaid {
		return apperrors.New(apperrors.CodeStateConflict, "invoice is already fully paid")
	}
	if !amount.GreaterThan(decimal.Zero) {
		return apperrors.New(apperrors.CodeValidation, "payment amount must be positive")
	}
	if amount.GreaterThan(invoice.RemainingAmount) {
		return apperrors.New(apperrors.CodeValidation, "payment exceeds the remaining balance").
			WithDetails(map[string]string{
				"remaining": invoice.RemainingAmount.StringFixed(2),
				"amount":    amount.StringFixed(2),
			})
	}
	return nil
}

// CheckDeliver guards the delivery transition: stock leaves the shelf
// exactly once, and only after the invoice is fully paid.
func CheckDeliver(invoice *models.SalesInvoice) error {
	if invoice.Delivered {
		return apperrors.New(apperrors.CodeStateConflict, "invoice is already delivered")
	}
	if invoice.PaymentStatus != enums.PaymentStatusPaid {
		return apperrors.New(apperrors.CodeStateConflict, "only fully paid invoices can be delivered")
	}
	return nil
}

package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// CreateSaleLineInput is one sold product at an agreed unit price. The tax
// rate is a percentage applied to the line's discounted amount.
type CreateSaleLineInput struct {
	ProductID      uuid.UUID
	Qty            int
	UnitPrice      decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// CreateSaleInput captures a sale. InvoiceDiscount is spread across lines
// in proportion to their raw amounts. A nil PaidAmount means the customer
// settles the full total immediately. DeliverNow hands the goods over at
// creation regardless of payment status; otherwise stock stays put until
// the invoice is paid in full or delivered explicitly.
type CreateSaleInput struct {
	BranchID           uuid.UUID
	CustomerID         *uuid.UUID
	Lines              []CreateSaleLineInput
	InvoiceDiscount    decimal.Decimal
	PaymentMethod      enums.PaymentMethod
	PaidAmount         *decimal.Decimal
	DeliverNow         bool
	Channel            *enums.SalesChannel
	PlatformCommission decimal.Decimal
	ShippingFee        decimal.Decimal
	Notes              *string
	CreatedBy          uuid.UUID
}

// AddPaymentInput records one settlement against an open invoice.
type AddPaymentInput struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Method    enums.PaymentMethod
	Notes     *string
	CreatedBy uuid.UUID
}

// DailySummary aggregates one day of invoicing for a branch, or for all
// branches when none is given.
type DailySummary struct {
	Date             string          `json:"date"`
	InvoiceCount     int             `json:"invoice_count"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalDiscount    decimal.Decimal `json:"total_discount"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	TotalCostOfGoods decimal.Decimal `json:"total_cost_of_goods"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// PendingPayments lists a customer's open invoices and what they owe.
type PendingPayments struct {
	CustomerID       uuid.UUID             `json:"customer_id"`
	TotalOutstanding decimal.Decimal       `json:"total_outstanding"`
	Invoices         []models.SalesInvoice `json:"invoices"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesReturn is immutable once created. Cumulative returned quantity per
// invoice/product, summed across all of an invoice's returns, never exceeds
// the originally sold quantity.
type SalesReturn struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnNo       string          `gorm:"column:return_no;uniqueIndex;not null"`
	SalesInvoiceID uuid.UUID       `gorm:"column:sales_invoice_id;type:uuid;not null;index"`
	BranchID       uuid.UUID       `gorm:"column:branch_id;type:uuid;not null;index"`
	TotalRefund    decimal.Decimal `gorm:"column:total_refund;type:numeric(20,4);not null;default:0"`
	Reason         *string         `gorm:"column:reason"`
	CreatedBy      uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`

	Invoice *SalesInvoice     `gorm:"foreignKey:SalesInvoiceID"`
	Lines   []SalesReturnLine `gorm:"foreignKey:SalesReturnID;constraint:OnDelete:CASCADE"`
}

// SalesReturnLine records a returned quantity and its caller-supplied
// refund amount; refunds are negotiated, not recomputed from price.
type SalesReturnLine struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SalesReturnID uuid.UUID       `gorm:"column:sales_return_id;type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	QtyReturned   int             `gorm:"column:qty_returned;not null"`
	RefundAmount  decimal.Decimal `gorm:"column:refund_amount;type:numeric(20,4);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

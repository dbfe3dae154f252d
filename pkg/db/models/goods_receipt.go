package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// GoodsReceipt is the GRN header. Immutable once created; each line
// triggered one costing update and one RECEIPT ledger entry at creation.
type GoodsReceipt struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GRNNo       string            `gorm:"column:grn_no;uniqueIndex;not null"`
	SupplierID  uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null;index"`
	BranchID    uuid.UUID         `gorm:"column:branch_id;type:uuid;not null;index"`
	PaymentTerm enums.PaymentTerm `gorm:"column:payment_term;not null"`
	TaxRate     decimal.Decimal   `gorm:"column:tax_rate;type:numeric(20,4);not null;default:0"`
	Subtotal    decimal.Decimal   `gorm:"column:subtotal;type:numeric(20,4);not null;default:0"`
	TaxAmount   decimal.Decimal   `gorm:"column:tax_amount;type:numeric(20,4);not null;default:0"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(20,4);not null;default:0"`
	Notes       *string           `gorm:"column:notes"`
	CreatedBy   uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`

	Supplier *Supplier          `gorm:"foreignKey:SupplierID"`
	Branch   *Branch            `gorm:"foreignKey:BranchID"`
	Lines    []GoodsReceiptLine `gorm:"foreignKey:GoodsReceiptID;constraint:OnDelete:CASCADE"`
}

// GoodsReceiptLine is one received product batch.
type GoodsReceiptLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GoodsReceiptID uuid.UUID       `gorm:"column:goods_receipt_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Qty            int             `gorm:"column:qty;not null"`
	Cost           decimal.Decimal `gorm:"column:cost;type:numeric(20,4);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

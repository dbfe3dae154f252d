package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// Payment is an append-only settlement record. The sum of an invoice's
// payments always equals its paid amount.
type Payment struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SalesInvoiceID uuid.UUID           `gorm:"column:sales_invoice_id;type:uuid;not null;index"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(20,4);not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null"`
	Notes          *string             `gorm:"column:notes"`
	CreatedBy      uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

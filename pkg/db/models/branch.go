package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical shop. Its code seeds document numbers and its
// invoice prefix (defaulting to the code) leads every sales invoice number.
type Branch struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Code          string    `gorm:"column:code;uniqueIndex;not null"`
	InvoicePrefix string    `gorm:"column:invoice_prefix;not null"`
	Address       *string   `gorm:"column:address"`
	Phone         *string   `gorm:"column:phone"`
	Active        bool      `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SeriesPrefix returns the leading token for this branch's sales invoices.
func (b Branch) SeriesPrefix() string {
	if b.InvoicePrefix != "" {
		return b.InvoicePrefix
	}
	return b.Code
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog row referenced by ledger, receipt, and invoice
// lines. CostAvg is the weighted average cost and is written exclusively by
// the costing engine; Cost mirrors it as the figure shown to sales.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string          `gorm:"column:code;uniqueIndex;not null"`
	Barcode        string          `gorm:"column:barcode;uniqueIndex;not null"`
	Name           string          `gorm:"column:name;not null"`
	LocalName      *string         `gorm:"column:local_name"`
	Cost           decimal.Decimal `gorm:"column:cost;type:numeric(20,4);not null;default:0"`
	CostAvg        decimal.Decimal `gorm:"column:cost_avg;type:numeric(20,4);not null;default:0"`
	RetailPrice    decimal.Decimal `gorm:"column:retail_price;type:numeric(20,4);not null;default:0"`
	WholesalePrice decimal.Decimal `gorm:"column:wholesale_price;type:numeric(20,4);not null;default:0"`
	ReorderLevel   int             `gorm:"column:reorder_level;not null;default:0"`
	Active         bool            `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

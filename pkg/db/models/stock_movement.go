package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// StockMovement is an immutable ledger entry. On-hand quantity for any
// product/location pair is always the signed sum of its movements; there is
// no cached counter anywhere.
type StockMovement struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index:idx_stock_movements_product"`
	StockLocationID uuid.UUID          `gorm:"column:stock_location_id;type:uuid;not null;index"`
	QtyChange       int                `gorm:"column:qty_change;not null"`
	MovementType    enums.MovementType `gorm:"column:movement_type;not null"`
	RefTable        string             `gorm:"column:ref_table;not null"`
	RefID           uuid.UUID          `gorm:"column:ref_id;type:uuid;not null"`
	Notes           *string            `gorm:"column:notes"`
	CreatedBy       uuid.UUID          `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// ProductAudit is the append-only compliance trail: before/after snapshots
// of product-level changes, written by the ledger workflows and read by
// external reporting.
type ProductAudit struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	Action    enums.AuditAction `gorm:"column:action;not null"`
	OldData   json.RawMessage   `gorm:"column:old_data;type:jsonb"`
	NewData   json.RawMessage   `gorm:"column:new_data;type:jsonb"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

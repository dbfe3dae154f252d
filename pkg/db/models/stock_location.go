package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLocation is the physical bucket ledger entries post against.
// A location belongs to exactly one branch.
type StockLocation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID `gorm:"column:branch_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Branch *Branch `gorm:"foreignKey:BranchID"`
}

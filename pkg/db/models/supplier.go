package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is owned by the purchasing directory; the ledger only checks
// existence when receiving goods.
type Supplier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Contact   *string   `gorm:"column:contact"`
	Phone     *string   `gorm:"column:phone"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

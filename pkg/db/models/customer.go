package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is owned by the customer directory; invoices reference it
// optionally (walk-in sales carry no customer).
type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Phone     *string   `gorm:"column:phone"`
	Type      *string   `gorm:"column:type"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// User exists for audit attribution; authentication lives elsewhere.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username  string    `gorm:"column:username;uniqueIndex;not null"`
	FullName  string    `gorm:"column:full_name;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

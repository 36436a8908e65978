package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is owned by the catalog; this service only mutates Quantity,
// and only through the conditional decrement/restore in the product
// repository.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Price     int64     `gorm:"not null" json:"price"` // rupees
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

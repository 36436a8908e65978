package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReservationActive    = "ACTIVE"
	ReservationCompleted = "COMPLETED"
	ReservationExpired   = "EXPIRED"
)

// Reservation is a time-boxed claim on stock. It is created with the stock
// already decremented; COMPLETED and EXPIRED are terminal.
type Reservation struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	PaymentID *uuid.UUID `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	Status    string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

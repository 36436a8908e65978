package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderPaymentPending           = "PENDING"
	OrderPaymentPaid              = "PAID"
	OrderPaymentPartiallyRefunded = "PARTIALLY_REFUNDED"
	OrderPaymentRefunded          = "REFUNDED"
)

const (
	FulfillmentPending   = "PENDING"
	FulfillmentShipped   = "SHIPPED"
	FulfillmentDelivered = "DELIVERED"
	FulfillmentCancelled = "CANCELLED"
)

// Order is materialized exactly once, by the webhook reconciler, on the
// first successful payment confirmation. Line items are immutable snapshots.
type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount       int64       `gorm:"not null" json:"total_amount"` // rupees
	PaymentStatus     string      `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"payment_status"`
	FulfillmentStatus string      `gorm:"type:varchar(20);not null;default:'PENDING'" json:"fulfillment_status"`
	OrderItems        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Title     string    `gorm:"not null" json:"title"`
	Price     int64     `gorm:"not null" json:"price"` // rupees, at reservation time
	Quantity  int       `gorm:"not null" json:"quantity"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RefundRequested  = "REQUESTED"
	RefundProcessing = "PROCESSING"
	RefundCompleted  = "COMPLETED"
	RefundFailed     = "FAILED"
)

type Refund struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentID        uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	Amount           int64     `gorm:"not null" json:"amount"` // rupees
	ProviderRefundID *string   `gorm:"index" json:"provider_refund_id,omitempty"`
	Status           string    `gorm:"type:varchar(20);not null;default:'REQUESTED';index" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

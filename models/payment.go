package models

import (
	"time"

	"github.com/google/uuid"
)

const ProviderRazorpay = "RAZORPAY"

const (
	PaymentInitiated         = "INITIATED"
	PaymentProcessing        = "PROCESSING"
	PaymentSuccess           = "SUCCESS"
	PaymentFailed            = "FAILED"
	PaymentPartiallyRefunded = "PARTIALLY_REFUNDED"
	PaymentRefunded          = "REFUNDED"
	PaymentDisputed          = "DISPUTED"
)

// Payment tracks one attempt to collect money for a reservation. OrderID
// stays NULL until the webhook materializes an order; a SUCCESS payment with
// a NULL order is the manual-reconciliation case.
type Payment struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID           *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Provider          string     `gorm:"type:varchar(20);not null;default:'RAZORPAY'" json:"provider"`
	ProviderOrderID   *string    `gorm:"uniqueIndex" json:"provider_order_id,omitempty"`
	ProviderPaymentID *string    `gorm:"index" json:"provider_payment_id,omitempty"`
	Amount            int64      `gorm:"not null" json:"amount"` // rupees
	RefundedAmount    int64      `gorm:"not null;default:0" json:"refunded_amount"`
	Status            string     `gorm:"type:varchar(20);not null;default:'INITIATED';index" json:"status"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

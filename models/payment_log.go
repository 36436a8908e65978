package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditPaymentIntentCreated = "PAYMENT_INTENT_CREATED"
	AuditPaymentSuccess       = "PAYMENT_SUCCESS"
	AuditPaymentFailed        = "PAYMENT_FAILED"
	AuditRefundRequested      = "REFUND_REQUESTED"
	AuditRefundSuccess        = "REFUND_SUCCESS"
	AuditRefundFailed         = "REFUND_FAILED"
	AuditDisputeOpened        = "DISPUTE_OPENED"
	AuditDisputeClosed        = "DISPUTE_CLOSED"
)

// PaymentLog is append-only. Rows are never updated or deleted.
type PaymentLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	EventType   string     `gorm:"type:varchar(40);not null;index" json:"event_type"`
	Provider    string     `gorm:"type:varchar(20);not null;default:'RAZORPAY'" json:"provider"`
	ProviderRef *string    `json:"provider_ref,omitempty"`
	Amount      *int64     `json:"amount,omitempty"` // rupees
	Metadata    *string    `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

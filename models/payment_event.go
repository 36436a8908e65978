package models

import "time"

// PaymentEvent is the record published to Kafka after a reconciled webhook.
// Publication is best-effort; consumers must tolerate duplicates.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment_succeeded", "payment_failed", "refund_succeeded"
	OrderID   string    `json:"order_id,omitempty"`
	UserID    string    `json:"user_id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`   // rupees
	Currency  string    `json:"currency"` // "INR"
	Timestamp time.Time `json:"timestamp"`
}

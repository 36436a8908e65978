package models

import "encoding/json"

// Razorpay webhook event names handled by the reconciler. Anything else is
// acknowledged and ignored.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
	EventDisputeCreated  = "dispute.created"
	EventDisputeClosed   = "dispute.closed"
)

// WebhookEvent mirrors the Razorpay webhook envelope. Only the entities the
// reconciler needs are typed; the rest stays raw for audit metadata.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity RefundEntity `json:"entity"`
		} `json:"refund"`
		Dispute struct {
			Entity json.RawMessage `json:"entity"`
		} `json:"dispute"`
	} `json:"payload"`
}

// PaymentEntity is the payment object inside payment.* events. Notes carry
// the reservation id round-tripped through the gateway at intent creation.
type PaymentEntity struct {
	ID      string            `json:"id"`
	OrderID string            `json:"order_id"`
	Amount  int64             `json:"amount"` // paise
	Notes   map[string]string `json:"notes"`
}

type RefundEntity struct {
	ID        string            `json:"id"`
	PaymentID string            `json:"payment_id"`
	Amount    int64             `json:"amount"` // paise
	Notes     map[string]string `json:"notes"`
}

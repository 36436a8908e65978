package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway abstracts the payment provider so services and tests don't touch
// the SDK directly.
type Gateway interface {
	// CreateOrder opens a payable intent and returns the provider order id.
	// Amount is in paise.
	CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error)
	// CreateRefund asks the provider to refund part of a captured payment
	// and returns the provider refund id. Amount is in paise.
	CreateRefund(providerPaymentID string, amount int64, notes map[string]interface{}) (string, error)
}

type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay order create: missing id in response")
	}
	return id, nil
}

func (g *RazorpayGateway) CreateRefund(providerPaymentID string, amount int64, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"notes": notes,
	}
	body, err := g.client.Payment.Refund(providerPaymentID, int(amount), data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay refund create: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay refund create: missing id in response")
	}
	return id, nil
}

// VerifyWebhookSignature recomputes the HMAC-SHA256 of the raw request body
// and compares it to the hex signature from the X-Razorpay-Signature header.
// It must run over the exact bytes received, before any parsing.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write(body); err != nil {
		return false
	}
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

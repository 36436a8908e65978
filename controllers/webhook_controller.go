package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookController struct {
	Service       *services.WebhookService
	WebhookSecret string
	Logger        *zap.Logger
}

// RazorpayWebhook handles POST /razorpay/webhook. The signature check runs
// over the raw body before any parsing; a bad signature or unparseable body
// is the only case that gets a non-200, so the provider keeps retrying those
// and nothing else.
func (wc *WebhookController) RazorpayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !services.VerifyWebhookSignature(body, signature, wc.WebhookSecret) {
		wc.Logger.Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		wc.Logger.Warn("Webhook body parse failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	eventID := c.GetHeader("x-razorpay-event-id")
	wc.Service.Process(c.Request.Context(), eventID, &event)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

package services

import (
	"context"
	"encoding/json"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntry is one payment-domain event to record. Metadata is marshalled
// to JSON as-is.
type AuditEntry struct {
	OrderID     *uuid.UUID
	UserID      *uuid.UUID
	EventType   string
	ProviderRef string
	Amount      *int64
	Metadata    interface{}
}

// AuditService appends to the payment log. Writes are fire-and-forget: a
// failed audit write is logged locally and never propagated to the caller.
type AuditService struct {
	repo   repository.PaymentLogRepository
	logger *zap.Logger
}

func NewAuditService(repo repository.PaymentLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

func (a *AuditService) Log(ctx context.Context, entry AuditEntry) {
	record := &models.PaymentLog{
		OrderID:   entry.OrderID,
		UserID:    entry.UserID,
		EventType: entry.EventType,
		Provider:  models.ProviderRazorpay,
		Amount:    entry.Amount,
	}
	if entry.ProviderRef != "" {
		ref := entry.ProviderRef
		record.ProviderRef = &ref
	}
	if entry.Metadata != nil {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			s := string(b)
			record.Metadata = &s
		}
	}

	if err := a.repo.Create(ctx, record); err != nil {
		a.logger.Error("Payment audit log write failed",
			zap.String("event_type", entry.EventType),
			zap.Error(err),
		)
	}
}

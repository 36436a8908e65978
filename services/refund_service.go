package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RefundResponse acknowledges a submitted refund. The refund settles later
// via the provider's webhook.
type RefundResponse struct {
	RefundID  uuid.UUID `json:"refund_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
}

// RefundService validates and submits refunds to the gateway. It never
// applies money or stock effects itself; that is the webhook's job once the
// provider confirms the refund.
type RefundService struct {
	payments repository.PaymentRepository
	refunds  repository.RefundRepository
	gateway  Gateway
	audit    *AuditService
	logger   *zap.Logger
}

func NewRefundService(
	payments repository.PaymentRepository,
	refunds repository.RefundRepository,
	gateway Gateway,
	audit *AuditService,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		payments: payments,
		refunds:  refunds,
		gateway:  gateway,
		audit:    audit,
		logger:   logger,
	}
}

// RequestRefund submits a refund of amount rupees against a captured
// payment. Partial refunds are allowed up to the remaining refundable
// balance.
func (s *RefundService) RequestRefund(ctx context.Context, paymentID uuid.UUID, amount int64) (*RefundResponse, *ServiceError) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Payment not found"}
		}
		s.logger.Error("Payment lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to request refund"}
	}

	if payment.Status != models.PaymentSuccess && payment.Status != models.PaymentPartiallyRefunded {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Payment not refundable"}
	}
	if payment.ProviderPaymentID == nil {
		s.logger.Error("Refundable payment has no provider payment id",
			zap.String("payment_id", payment.ID.String()),
		)
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Payment not refundable"}
	}

	refundable := payment.Amount - payment.RefundedAmount
	if amount <= 0 || amount > refundable {
		return nil, &ServiceError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("Invalid refund amount. Max refundable: ₹%d", refundable),
		}
	}

	refund := &models.Refund{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		Amount:    amount,
		Status:    models.RefundRequested,
	}
	if err := s.refunds.Create(ctx, refund); err != nil {
		s.logger.Error("Refund create failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to request refund"}
	}

	providerRefundID, err := s.gateway.CreateRefund(*payment.ProviderPaymentID, amount*100, map[string]interface{}{
		"refund_id":  refund.ID.String(),
		"payment_id": payment.ID.String(),
	})
	if err != nil {
		s.logger.Error("Gateway refund create failed",
			zap.String("refund_id", refund.ID.String()),
			zap.Error(err),
		)
		if ferr := s.refunds.MarkFailed(ctx, refund.ID); ferr != nil {
			s.logger.Error("Refund fail mark failed", zap.Error(ferr))
		}
		s.audit.Log(ctx, AuditEntry{
			OrderID:   payment.OrderID,
			UserID:    &payment.UserID,
			EventType: models.AuditRefundFailed,
			Amount:    &amount,
			Metadata:  map[string]string{"refund_id": refund.ID.String()},
		})
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to submit refund"}
	}

	if err := s.refunds.MarkProcessing(ctx, refund.ID, providerRefundID); err != nil {
		// The provider accepted the refund; the webhook will still find the
		// row by provider refund id once this write is retried manually.
		s.logger.Error("Refund processing mark failed",
			zap.String("refund_id", refund.ID.String()),
			zap.String("provider_refund_id", providerRefundID),
			zap.Error(err),
		)
	}

	s.audit.Log(ctx, AuditEntry{
		OrderID:     payment.OrderID,
		UserID:      &payment.UserID,
		EventType:   models.AuditRefundRequested,
		ProviderRef: providerRefundID,
		Amount:      &amount,
		Metadata:    map[string]string{"refund_id": refund.ID.String()},
	})

	return &RefundResponse{
		RefundID:  refund.ID,
		PaymentID: payment.ID,
		Amount:    amount,
		Status:    models.RefundProcessing,
	}, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher pushes reconciled payment events downstream. Publication is
// best-effort; a nil publisher disables it.
type EventPublisher interface {
	Publish(event models.PaymentEvent) error
}

// DedupStore is an optional fast-path for discarding redelivered webhook
// bodies by provider event id. Database state stays authoritative; the store
// only short-circuits obvious duplicates.
type DedupStore interface {
	Seen(ctx context.Context, eventID string) bool
	MarkSeen(ctx context.Context, eventID string)
}

// WebhookService applies gateway notifications to the payment domain. Every
// handler is idempotent: "already in target state" is success, and the
// status CAS on each record decides which of the racing actors (this
// handler, a duplicate delivery, the reclaimer) performs the compensating
// stock movement.
type WebhookService struct {
	products     repository.ProductRepository
	reservations repository.ReservationRepository
	payments     repository.PaymentRepository
	refunds      repository.RefundRepository
	orders       repository.OrderRepository
	audit        *AuditService
	events       EventPublisher
	dedup        DedupStore
	logger       *zap.Logger
}

func NewWebhookService(
	products repository.ProductRepository,
	reservations repository.ReservationRepository,
	payments repository.PaymentRepository,
	refunds repository.RefundRepository,
	orders repository.OrderRepository,
	audit *AuditService,
	events EventPublisher,
	dedup DedupStore,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		products:     products,
		reservations: reservations,
		payments:     payments,
		refunds:      refunds,
		orders:       orders,
		audit:        audit,
		events:       events,
		dedup:        dedup,
		logger:       logger,
	}
}

// Process dispatches one verified webhook event. It never returns an error:
// processing failures are logged and the delivery is acknowledged, so the
// gateway's retry schedule replays the event against idempotent handlers
// instead of being driven by our internal failures.
func (s *WebhookService) Process(ctx context.Context, eventID string, event *models.WebhookEvent) {
	if s.dedup != nil && eventID != "" {
		if s.dedup.Seen(ctx, eventID) {
			s.logger.Debug("Skipping already-seen webhook delivery", zap.String("event_id", eventID))
			return
		}
	}

	switch event.Event {
	case models.EventPaymentCaptured:
		s.handlePaymentCaptured(ctx, &event.Payload.Payment.Entity)
	case models.EventPaymentFailed:
		s.handlePaymentFailed(ctx, &event.Payload.Payment.Entity)
	case models.EventRefundProcessed:
		s.handleRefundProcessed(ctx, &event.Payload.Refund.Entity)
	case models.EventDisputeCreated:
		s.audit.Log(ctx, AuditEntry{EventType: models.AuditDisputeOpened, Metadata: event.Payload.Dispute.Entity})
	case models.EventDisputeClosed:
		s.audit.Log(ctx, AuditEntry{EventType: models.AuditDisputeClosed, Metadata: event.Payload.Dispute.Entity})
	default:
		s.logger.Info("Ignoring unhandled webhook event", zap.String("event", event.Event))
	}

	if s.dedup != nil && eventID != "" {
		s.dedup.MarkSeen(ctx, eventID)
	}
}

func (s *WebhookService) handlePaymentCaptured(ctx context.Context, entity *models.PaymentEntity) {
	payment, err := s.payments.GetByProviderOrderID(ctx, entity.OrderID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Payment lookup failed", zap.String("provider_order_id", entity.OrderID), zap.Error(err))
		}
		return
	}
	if payment.Status == models.PaymentSuccess {
		return
	}

	won, err := s.payments.MarkCaptured(ctx, payment.ID, entity.ID)
	if err != nil {
		s.logger.Error("Payment capture failed", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return
	}
	if !won {
		return
	}

	reservation := s.recoverReservation(ctx, payment.ID, entity.Notes)
	if reservation == nil {
		// Captured money with no live reservation: stock was already
		// reclaimed. No order is created; operators find these as SUCCESS
		// payments with a NULL order id.
		s.logger.Warn("Payment captured but reservation not active",
			zap.String("payment_id", payment.ID.String()),
		)
		s.audit.Log(ctx, AuditEntry{
			UserID:      &payment.UserID,
			EventType:   models.AuditPaymentSuccess,
			ProviderRef: entity.ID,
			Amount:      &payment.Amount,
			Metadata:    map[string]string{"note": "reservation expired before capture; manual reconciliation required"},
		})
		return
	}

	won, err = s.reservations.MarkCompleted(ctx, reservation.ID)
	if err != nil || !won {
		if err != nil {
			s.logger.Error("Reservation completion failed", zap.String("reservation_id", reservation.ID.String()), zap.Error(err))
		}
		return
	}

	order := s.materializeOrder(ctx, payment, reservation)
	if order != nil {
		if err := s.payments.LinkOrder(ctx, payment.ID, order.ID); err != nil {
			s.logger.Error("Payment-order link failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	var orderID *uuid.UUID
	var orderRef string
	if order != nil {
		orderID = &order.ID
		orderRef = order.ID.String()
	}
	s.audit.Log(ctx, AuditEntry{
		OrderID:     orderID,
		UserID:      &payment.UserID,
		EventType:   models.AuditPaymentSuccess,
		ProviderRef: entity.ID,
		Amount:      &payment.Amount,
		Metadata:    entity,
	})
	s.publish(models.PaymentEvent{
		Type:      "payment_succeeded",
		OrderID:   orderRef,
		UserID:    payment.UserID.String(),
		PaymentID: payment.ID.String(),
		Amount:    payment.Amount,
		Currency:  currencyINR,
		Timestamp: time.Now().UTC(),
	})
}

func (s *WebhookService) handlePaymentFailed(ctx context.Context, entity *models.PaymentEntity) {
	payment, err := s.payments.GetByProviderOrderID(ctx, entity.OrderID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Payment lookup failed", zap.String("provider_order_id", entity.OrderID), zap.Error(err))
		}
		return
	}

	won, err := s.payments.MarkFailed(ctx, payment.ID)
	if err != nil {
		s.logger.Error("Payment fail mark failed", zap.String("payment_id", payment.ID.String()), zap.Error(err))
		return
	}

	// Release the held stock. The ACTIVE guard on the transition means
	// exactly one of {this handler, a duplicate delivery, the reclaimer}
	// restores it.
	reservation, err := s.reservations.FindActiveByPaymentID(ctx, payment.ID)
	if err == nil {
		expired, terr := s.reservations.MarkExpired(ctx, reservation.ID)
		if terr != nil {
			s.logger.Error("Reservation expire failed", zap.String("reservation_id", reservation.ID.String()), zap.Error(terr))
		} else if expired {
			if rerr := s.products.RestoreStock(ctx, reservation.ProductID, reservation.Quantity); rerr != nil {
				s.logger.Error("Stock restore failed", zap.String("reservation_id", reservation.ID.String()), zap.Error(rerr))
			}
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Reservation lookup failed", zap.String("payment_id", payment.ID.String()), zap.Error(err))
	}

	// A redelivery that lost the FAILED transition still retried the stock
	// release above, but it does not re-announce the failure.
	if !won {
		return
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:      &payment.UserID,
		EventType:   models.AuditPaymentFailed,
		ProviderRef: entity.ID,
		Metadata:    entity,
	})
	s.publish(models.PaymentEvent{
		Type:      "payment_failed",
		UserID:    payment.UserID.String(),
		PaymentID: payment.ID.String(),
		Amount:    payment.Amount,
		Currency:  currencyINR,
		Timestamp: time.Now().UTC(),
	})
}

func (s *WebhookService) handleRefundProcessed(ctx context.Context, entity *models.RefundEntity) {
	refund, err := s.refunds.GetByProviderRefundID(ctx, entity.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Refund lookup failed", zap.String("provider_refund_id", entity.ID), zap.Error(err))
		}
		return
	}
	if refund.Status == models.RefundCompleted {
		return
	}

	won, err := s.refunds.MarkCompleted(ctx, refund.ID)
	if err != nil {
		s.logger.Error("Refund completion failed", zap.String("refund_id", refund.ID.String()), zap.Error(err))
		return
	}
	if !won {
		return
	}

	payment, err := s.payments.ApplyRefund(ctx, refund.PaymentID, refund.Amount)
	if err != nil {
		s.logger.Error("Refund application failed", zap.String("refund_id", refund.ID.String()), zap.Error(err))
		return
	}

	var orderID *uuid.UUID
	var orderRef string
	if payment.OrderID != nil {
		orderID = payment.OrderID
		orderRef = payment.OrderID.String()

		orderStatus := models.OrderPaymentPartiallyRefunded
		if payment.Status == models.PaymentRefunded {
			orderStatus = models.OrderPaymentRefunded
		}
		if err := s.orders.SetPaymentStatus(ctx, *payment.OrderID, orderStatus); err != nil {
			s.logger.Error("Order payment status update failed", zap.String("order_id", orderRef), zap.Error(err))
		}

		// Refund implies the goods come back to sellable inventory.
		if order, oerr := s.orders.GetByID(ctx, *payment.OrderID); oerr == nil {
			for _, item := range order.OrderItems {
				if rerr := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); rerr != nil {
					s.logger.Error("Stock restore failed",
						zap.String("product_id", item.ProductID.String()),
						zap.Error(rerr),
					)
				}
			}
		} else {
			s.logger.Error("Order lookup failed", zap.String("order_id", orderRef), zap.Error(oerr))
		}
	}

	s.audit.Log(ctx, AuditEntry{
		OrderID:     orderID,
		UserID:      &payment.UserID,
		EventType:   models.AuditRefundSuccess,
		ProviderRef: entity.ID,
		Amount:      &refund.Amount,
		Metadata:    entity,
	})
	s.publish(models.PaymentEvent{
		Type:      "refund_succeeded",
		OrderID:   orderRef,
		UserID:    payment.UserID.String(),
		PaymentID: payment.ID.String(),
		Amount:    refund.Amount,
		Currency:  currencyINR,
		Timestamp: time.Now().UTC(),
	})
}

// recoverReservation resolves the reservation for a captured payment, first
// from the gateway notes and then by the payment link. Only an ACTIVE
// reservation is returned.
func (s *WebhookService) recoverReservation(ctx context.Context, paymentID uuid.UUID, notes map[string]string) *models.Reservation {
	if raw, ok := notes["reservation_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			if reservation, err := s.reservations.GetByID(ctx, id); err == nil {
				if reservation.Status == models.ReservationActive {
					return reservation
				}
				return nil
			}
		}
	}
	if reservation, err := s.reservations.FindActiveByPaymentID(ctx, paymentID); err == nil {
		return reservation
	}
	return nil
}

// materializeOrder creates the one durable order for a completed
// reservation from its product snapshot. Stock is NOT decremented here; that
// happened at reservation time.
func (s *WebhookService) materializeOrder(ctx context.Context, payment *models.Payment, reservation *models.Reservation) *models.Order {
	product, err := s.products.GetByID(ctx, reservation.ProductID)
	if err != nil {
		s.logger.Error("Product snapshot lookup failed",
			zap.String("product_id", reservation.ProductID.String()),
			zap.Error(err),
		)
		return nil
	}

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            payment.UserID,
		TotalAmount:       payment.Amount,
		PaymentStatus:     models.OrderPaymentPaid,
		FulfillmentStatus: models.FulfillmentPending,
		OrderItems: []models.OrderItem{{
			ID:        uuid.New(),
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Quantity:  reservation.Quantity,
		}},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Order materialization failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	return order
}

func (s *WebhookService) publish(event models.PaymentEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.logger.Error("Payment event publish failed",
			zap.String("type", event.Type),
			zap.String("payment_id", event.PaymentID),
			zap.Error(err),
		)
	}
}

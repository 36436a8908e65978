package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationTTL bounds how long an unconfirmed reservation may hold stock.
const ReservationTTL = 15 * time.Minute

const currencyINR = "INR"

// CheckoutResponse carries the gateway-facing fields the buyer's payment UI
// needs. No internal ids beyond what the client already has.
type CheckoutResponse struct {
	Key             string `json:"key"`
	RazorpayOrderID string `json:"razorpay_order_id"`
	Amount          int64  `json:"amount"` // paise
	Currency        string `json:"currency"`
}

// CheckoutService is the checkout initiator: it claims stock, opens a
// payment and asks the gateway for a payable intent.
type CheckoutService struct {
	products     repository.ProductRepository
	reservations repository.ReservationRepository
	payments     repository.PaymentRepository
	gateway      Gateway
	audit        *AuditService
	keyID        string
	logger       *zap.Logger
	now          func() time.Time
}

func NewCheckoutService(
	products repository.ProductRepository,
	reservations repository.ReservationRepository,
	payments repository.PaymentRepository,
	gateway Gateway,
	audit *AuditService,
	keyID string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		products:     products,
		reservations: reservations,
		payments:     payments,
		gateway:      gateway,
		audit:        audit,
		keyID:        keyID,
		logger:       logger,
		now:          time.Now,
	}
}

// InitiateCheckout reserves stock for (user, product, quantity) and opens a
// payable intent at the gateway. The stock decrement happens before the
// reservation row exists; everything after it is compensated on failure so
// no decremented stock is stranded beyond the TTL window.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CheckoutResponse, *ServiceError) {
	if quantity < 1 {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Quantity must be at least 1"}
	}

	active, err := s.reservations.HasActive(ctx, userID, productID)
	if err != nil {
		s.logger.Error("Reservation lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}
	if active {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Checkout already in progress for this product"}
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Product not found"}
		}
		s.logger.Error("Product lookup failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}
	if !product.IsActive {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Product unavailable"}
	}

	// The single atomic claim. Exactly one of any set of concurrent
	// checkouts for the last unit gets past this line.
	if err := s.products.DecrementStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Insufficient stock"}
		}
		s.logger.Error("Stock decrement failed", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}

	reservation := &models.Reservation{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    models.ReservationActive,
		ExpiresAt: s.now().Add(ReservationTTL),
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		s.logger.Error("Reservation create failed", zap.Error(err))
		s.restoreStock(ctx, productID, quantity)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}

	amount := product.Price * int64(quantity)
	payment := &models.Payment{
		ID:       uuid.New(),
		UserID:   userID,
		Provider: models.ProviderRazorpay,
		Amount:   amount,
		Status:   models.PaymentProcessing,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.logger.Error("Payment create failed", zap.Error(err))
		s.compensate(ctx, reservation)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}
	if err := s.reservations.LinkPayment(ctx, reservation.ID, payment.ID); err != nil {
		s.logger.Error("Reservation-payment link failed", zap.Error(err))
		s.compensate(ctx, reservation)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}

	// The reservation id rides along as gateway notes so the webhook can
	// recover it without any local mapping table.
	providerOrderID, err := s.gateway.CreateOrder(amount*100, currencyINR, payment.ID.String(), map[string]interface{}{
		"reservation_id": reservation.ID.String(),
		"payment_id":     payment.ID.String(),
	})
	if err != nil {
		s.logger.Error("Gateway order create failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		if _, ferr := s.payments.MarkFailed(ctx, payment.ID); ferr != nil {
			s.logger.Error("Payment fail mark failed", zap.Error(ferr))
		}
		s.compensate(ctx, reservation)
		return nil, &ServiceError{StatusCode: http.StatusBadGateway, Message: "Failed to create payment order"}
	}

	if err := s.payments.SetProviderOrderID(ctx, payment.ID, providerOrderID); err != nil {
		// The intent exists at the gateway but the local link write failed.
		// The reservation's TTL is the backstop; don't strand the stock
		// silently, just log loudly.
		s.logger.Error("Provider order id write failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("provider_order_id", providerOrderID),
			zap.Error(err),
		)
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to start checkout"}
	}

	s.audit.Log(ctx, AuditEntry{
		UserID:      &userID,
		EventType:   models.AuditPaymentIntentCreated,
		ProviderRef: providerOrderID,
		Amount:      &amount,
		Metadata: map[string]interface{}{
			"reservation_id": reservation.ID.String(),
			"product_id":     productID.String(),
			"quantity":       quantity,
		},
	})

	return &CheckoutResponse{
		Key:             s.keyID,
		RazorpayOrderID: providerOrderID,
		Amount:          amount * 100,
		Currency:        currencyINR,
	}, nil
}

// compensate undoes a half-built checkout: whoever wins the ACTIVE→EXPIRED
// CAS owns the stock restore, so a concurrently firing reclaimer can't
// double-restore.
func (s *CheckoutService) compensate(ctx context.Context, reservation *models.Reservation) {
	won, err := s.reservations.MarkExpired(ctx, reservation.ID)
	if err != nil {
		s.logger.Error("Reservation expire during compensation failed", zap.Error(err))
		return
	}
	if won {
		s.restoreStock(ctx, reservation.ProductID, reservation.Quantity)
	}
}

func (s *CheckoutService) restoreStock(ctx context.Context, productID uuid.UUID, quantity int) {
	if err := s.products.RestoreStock(ctx, productID, quantity); err != nil {
		s.logger.Error("Stock restore failed",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
	}
}

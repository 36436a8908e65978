package services

import (
	"context"
	"errors"
	"net/http"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderPage is one page of a user's order history.
type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

type OrderService struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, logger: logger}
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderPage, *ServiceError) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Order list failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("Order lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}
	return order, nil
}

// CancelOrder cancels fulfillment while it is still pending. It does not
// touch the payment; money moves back through the refund flow.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) *ServiceError {
	won, err := s.orders.CancelFulfillment(ctx, orderID, userID)
	if err != nil {
		s.logger.Error("Order cancel failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to cancel order"}
	}
	if !won {
		if _, gerr := s.orders.FindByIDAndUserID(ctx, orderID, userID); gerr != nil {
			if errors.Is(gerr, repository.ErrNotFound) {
				return &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
			}
		}
		return &ServiceError{StatusCode: http.StatusBadRequest, Message: "Order can no longer be cancelled"}
	}
	return nil
}

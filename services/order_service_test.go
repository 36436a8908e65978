package services

import (
	"context"
	"net/http"
	"testing"

	"checkout-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newOrderEnv(t *testing.T) (*fakeOrderRepo, *OrderService) {
	t.Helper()
	orders := newFakeOrderRepo()
	return orders, NewOrderService(orders, zap.NewNop())
}

func seedOrder(orders *fakeOrderRepo, userID uuid.UUID, fulfillment string) uuid.UUID {
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		TotalAmount:       4500,
		PaymentStatus:     models.OrderPaymentPaid,
		FulfillmentStatus: fulfillment,
	}
	_ = orders.Create(context.Background(), order)
	return order.ID
}

func TestGetUserOrders_ScopedToUser(t *testing.T) {
	orders, svc := newOrderEnv(t)
	userID := uuid.New()
	seedOrder(orders, userID, models.FulfillmentPending)
	seedOrder(orders, uuid.New(), models.FulfillmentPending)

	page, svcErr := svc.GetUserOrders(context.Background(), userID, 1, 20)
	assert.Nil(t, svcErr)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, userID, page.Orders[0].UserID)
}

func TestGetUserOrders_EmptyListNotNil(t *testing.T) {
	_, svc := newOrderEnv(t)

	page, svcErr := svc.GetUserOrders(context.Background(), uuid.New(), 0, -5)
	assert.Nil(t, svcErr)
	assert.NotNil(t, page.Orders)
	assert.Empty(t, page.Orders)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestGetOrderByID_OtherUsersOrderHidden(t *testing.T) {
	orders, svc := newOrderEnv(t)
	orderID := seedOrder(orders, uuid.New(), models.FulfillmentPending)

	_, svcErr := svc.GetOrderByID(context.Background(), uuid.New(), orderID)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

func TestCancelOrder_PendingFulfillment(t *testing.T) {
	orders, svc := newOrderEnv(t)
	userID := uuid.New()
	orderID := seedOrder(orders, userID, models.FulfillmentPending)

	svcErr := svc.CancelOrder(context.Background(), userID, orderID)
	assert.Nil(t, svcErr)

	order, err := orders.GetByID(context.Background(), orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.FulfillmentCancelled, order.FulfillmentStatus)
}

func TestCancelOrder_ShippedOrderRejected(t *testing.T) {
	orders, svc := newOrderEnv(t)
	userID := uuid.New()
	orderID := seedOrder(orders, userID, models.FulfillmentShipped)

	svcErr := svc.CancelOrder(context.Background(), userID, orderID)
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "Order can no longer be cancelled", svcErr.Message)
}

func TestCancelOrder_NotFound(t *testing.T) {
	_, svc := newOrderEnv(t)

	svcErr := svc.CancelOrder(context.Background(), uuid.New(), uuid.New())
	assert.NotNil(t, svcErr)
	assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
}

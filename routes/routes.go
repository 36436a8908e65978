package routes

import (
	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	checkout *controllers.CheckoutController,
	webhook *controllers.WebhookController,
	refund *controllers.RefundController,
	order *controllers.OrderController,
	admin *controllers.AdminController,
) {
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())
	authed.POST("/checkout", checkout.InitiateCheckout)
	authed.GET("/orders", order.ListOrders)
	authed.GET("/orders/:id", order.GetOrder)
	authed.PATCH("/orders/:id/cancel", order.CancelOrder)
	authed.POST("/payments/:id/refund", refund.RequestRefund)
	authed.GET("/admin/reservations", admin.ListReservations)

	// Razorpay webhook is authenticated by its signature, not by the gateway.
	r.POST("/razorpay/webhook", webhook.RazorpayWebhook)
}

package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"checkout-service/cache"
	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/kafka"
	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[CheckoutService] No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := database.ConnectPostgres(cfg, logger,
		&models.Product{},
		&models.Reservation{},
		&models.Payment{},
		&models.Refund{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentLog{},
	)
	if err != nil {
		log.Fatal("[CheckoutService] ❌ Failed to connect to DB:", err)
	}
	defer database.Close(db)

	productRepo := repository.NewGormProductRepository(db)
	reservationRepo := repository.NewGormReservationRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	refundRepo := repository.NewGormRefundRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	paymentLogRepo := repository.NewGormPaymentLogRepository(db)

	gateway := services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	audit := services.NewAuditService(paymentLogRepo, logger)

	var publisher services.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewPaymentEventProducer(
			strings.Split(cfg.KafkaBrokers, ","),
			cfg.PaymentEventsTopic,
			logger,
		)
		defer producer.Close()
		publisher = producer
	}

	var dedup services.DedupStore
	if cfg.RedisAddr != "" {
		store := cache.NewWebhookDedup(cfg.RedisAddr, logger)
		defer store.Close()
		dedup = store
	}

	checkoutSvc := services.NewCheckoutService(
		productRepo, reservationRepo, paymentRepo,
		gateway, audit, cfg.RazorpayKeyID, logger,
	)
	webhookSvc := services.NewWebhookService(
		productRepo, reservationRepo, paymentRepo, refundRepo, orderRepo,
		audit, publisher, dedup, logger,
	)
	refundSvc := services.NewRefundService(paymentRepo, refundRepo, gateway, audit, logger)
	orderSvc := services.NewOrderService(orderRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reclaimer := services.NewReservationReclaimer(
		productRepo, reservationRepo,
		cfg.ReclaimInterval, cfg.ReclaimBatch, logger,
	)
	go reclaimer.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r,
		&controllers.CheckoutController{Service: checkoutSvc},
		&controllers.WebhookController{Service: webhookSvc, WebhookSecret: cfg.RazorpayWebhookSecret, Logger: logger},
		&controllers.RefundController{Service: refundSvc},
		&controllers.OrderController{Service: orderSvc},
		&controllers.AdminController{Reservations: reservationRepo, Logger: logger},
	)

	log.Println("[CheckoutService] ✅ Running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("[CheckoutService] ❌ Server failed:", err)
	}
}

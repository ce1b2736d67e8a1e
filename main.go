package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otoor/marketplace-backend/cache"
	"github.com/otoor/marketplace-backend/common/logger"
	"github.com/otoor/marketplace-backend/config"
	"github.com/otoor/marketplace-backend/controllers"
	"github.com/otoor/marketplace-backend/database"
	"github.com/otoor/marketplace-backend/gateways/courier"
	"github.com/otoor/marketplace-backend/gateways/payment"
	"github.com/otoor/marketplace-backend/kafka"
	"github.com/otoor/marketplace-backend/middleware"
	"github.com/otoor/marketplace-backend/models"
	"github.com/otoor/marketplace-backend/repository"
	"github.com/otoor/marketplace-backend/routes"
	"github.com/otoor/marketplace-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger.Initialize(cfg.Env)
	zlog := logger.Log
	defer zlog.Sync()

	// --- Database ---
	if err := database.Connect(cfg, zlog,
		&models.User{},
		&models.Product{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.SellerWarehouse{},
		&models.Notification{},
	); err != nil {
		zlog.Fatal("DB connection failed", zap.Error(err))
	}

	// --- Redis ---
	redisClient, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zlog.Fatal("Redis connection failed", zap.Error(err))
	}
	quoteCache := cache.NewQuoteCache(redisClient, 10*time.Minute)

	// --- Kafka ---
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.KafkaNotificationTopic, zlog)

	// --- External gateways ---
	courierClient := courier.NewClient(cfg.CourierBaseURL, cfg.CourierClientID, cfg.CourierClientSecret, zlog)
	courierGateway := courier.NewHTTPGateway(courierClient)

	paymentClient := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAPIKey, zlog)
	paymentGateway := payment.NewHTTPGateway(paymentClient, cfg.PaymentCallbackURL, cfg.PaymentErrorURL)

	// --- Dependency injection ---
	orderRepo := repository.NewGormOrderRepository(database.DB)
	productRepo := repository.NewGormProductRepository(database.DB)
	userRepo := repository.NewGormUserRepository(database.DB)
	couponRepo := repository.NewGormCouponRepository(database.DB)
	warehouseRepo := repository.NewGormWarehouseRepository(database.DB)
	notificationRepo := repository.NewGormNotificationRepository(database.DB)

	couponService := services.NewCouponService(couponRepo, productRepo, zlog)
	shippingService := services.NewShippingService(courierGateway, warehouseRepo, quoteCache, cfg, zlog)
	notificationService := services.NewNotificationService(notificationRepo, producer, zlog)
	warehouseService := services.NewWarehouseService(warehouseRepo, zlog)
	orderService := services.NewOrderService(
		orderRepo,
		productRepo,
		userRepo,
		couponService,
		shippingService,
		courierGateway,
		paymentGateway,
		notificationService,
		producer,
		cfg,
		zlog,
	)
	paymentService := services.NewPaymentService(paymentGateway, orderService, cfg.Currency, zlog)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(logger.RequestLogger())

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.Register(r, routes.Controllers{
		Orders:        controllers.NewOrderController(orderService),
		Coupons:       controllers.NewCouponController(couponService),
		Payments:      controllers.NewPaymentController(paymentService),
		Shipping:      controllers.NewShippingController(shippingService),
		Warehouses:    controllers.NewWarehouseController(warehouseService),
		Notifications: controllers.NewNotificationController(notificationService),
	}, cfg.JWTSecret)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "marketplace-backend"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zlog.Info("Marketplace backend started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown error", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		zlog.Error("Kafka producer close error", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		zlog.Error("Redis close error", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		zlog.Error("Database close error", zap.Error(err))
	}

	log.Println("Marketplace backend stopped gracefully")
}

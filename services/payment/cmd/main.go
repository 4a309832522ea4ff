package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/config"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/db"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/kafka"
	outbox "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/repository"
	outboxWorker "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/worker"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/provider"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/service"
	paymentHttp "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "payment-service")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: "info",
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("payment service started!")

	gateway := provider.NewRazorpayProvider(cfg.Razorpay, logger)

	paymentRepository := repository.NewPaymentRepository(pool, logger)
	webhookEventRepository := repository.NewWebhookEventRepository(pool, logger)
	outboxRepository := outbox.NewOutboxRepository(pool, logger)

	orderClient := client.NewOrderClient(cfg.Services.OrderURL, cfg.Services.Timeout, logger)
	inventoryClient := client.NewInventoryClient(cfg.Services.ProductURL, cfg.Services.Timeout, logger)

	paymentService := service.NewPaymentService(paymentRepository, outboxRepository, gateway, pool, logger)
	webhookService := service.NewWebhookService(
		gateway,
		paymentRepository,
		webhookEventRepository,
		orderClient,
		inventoryClient,
		pool,
		logger,
	)

	handler := paymentHttp.NewPaymentHandler(paymentService, webhookService, logger)

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := outboxWorker.NewOutboxProcessor(pool, outboxRepository, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Payment Service is alive!")
	})
	paymentHttp.RegisterRoutes(app, handler)

	go func() {
		log.Println("HTTP Payment service listening on port: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening HTTP on port %v: %v", cfg.HTTP.Port, err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("Stopped HTTP server successfully")
	}

	if err := kafkaProducer.Close(); err != nil {
		log.Printf("Error closing kafka producer: %v", err)
	}

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}

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
	"github.com/redis/go-redis/v9"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/config"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/db"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/kafka"
	outbox "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/repository"
	outboxWorker "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/worker"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
	orderHttp "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/transport/http"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "order-service")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

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

	logger.Info("order service started!")

	orderRepository := repository.NewOrderRepository(pool, logger)
	cartRepository := repository.NewCartRepository(rdb, logger)
	outboxRepository := outbox.NewOutboxRepository(pool, logger)

	inventoryClient := client.NewInventoryClient(cfg.Services.ProductURL, cfg.Services.Timeout, logger)
	paymentClient := client.NewPaymentClient(cfg.Services.PaymentURL, cfg.Services.Timeout, logger)

	checkoutService := service.NewCheckoutService(
		orderRepository,
		cartRepository,
		outboxRepository,
		inventoryClient,
		paymentClient,
		pool,
		logger,
	)
	orderService := service.NewOrderService(orderRepository, outboxRepository, pool, logger)

	handler := orderHttp.NewOrderHandler(checkoutService, orderService, cartRepository, logger)

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("error creating kafka producer: %v", err)
	}

	outboxProcessor := outboxWorker.NewOutboxProcessor(pool, outboxRepository, kafkaProducer, logger)
	go outboxProcessor.Start(ctx)

	reaper := worker.NewReservationReaper(
		orderRepository,
		inventoryClient,
		pool,
		logger,
		cfg.Reaper.Interval,
		cfg.Reaper.MaxAge,
	)
	go reaper.Start(ctx)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Order Service is alive!")
	})
	orderHttp.RegisterRoutes(app, handler)

	go func() {
		log.Println("HTTP Order service listening on port: " + cfg.HTTP.Port)
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

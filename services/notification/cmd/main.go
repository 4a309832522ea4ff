package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/config"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/db"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/notification/internal/infrastructure/email"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/notification/internal/service"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/notification/transport/kafka"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	tp, err := utils.InitTracer(ctx, "notification-service")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
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

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error creating new postgres DB: %v", err)
	}

	logger.Info("notification service started!")

	emailSender := email.NewSMTPSender(cfg.SMTP, logger)
	notificationService := service.NewNotificationService(emailSender, logger, pool)

	consumer := kafka.NewConsumer(notificationService, logger)
	consumer.Start(ctx, cfg.Kafka.Brokers)

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool.Close()
	log.Println("Closed db pool successfully")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping telemetry: %v\n", err)
	} else {
		log.Println("Telemetry closed correctly")
	}
}

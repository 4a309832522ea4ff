package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/config"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Sender interface {
	SendOrderPlacedEmail(ctx context.Context, to string, event domain.OrderPlacedEvent) error
	SendOrderConfirmedEmail(ctx context.Context, to string, event domain.OrderConfirmedEvent) error
	SendPaymentFailedEmail(ctx context.Context, to string, event domain.OrderPaymentFailedEvent) error
}

type smtpSender struct {
	from     string
	password string
	user     string
	host     string
	port     string
	logger   *zap.Logger
	tracer   trace.Tracer
}

func NewSMTPSender(cfg config.SMTP, logger *zap.Logger) Sender {
	return &smtpSender{
		from:     cfg.From,
		password: cfg.Password,
		user:     cfg.User,
		host:     cfg.Host,
		port:     cfg.Port,
		logger:   logger,
		tracer:   otel.Tracer("notification/infrastructure/email"),
	}
}

func (s *smtpSender) SendOrderPlacedEmail(ctx context.Context, to string, event domain.OrderPlacedEvent) error {
	ctx, span := s.tracer.Start(ctx, "smtp.SendOrderPlacedEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
		attribute.String("order_id", event.OrderID),
	)

	var lines strings.Builder
	for _, item := range event.Items {
		fmt.Fprintf(&lines, "<li>product %d, size %s x %d — ₹%d</li>",
			item.ProductID, item.Size, item.Quantity, item.Price*int64(item.Quantity))
	}

	subject := fmt.Sprintf("Subject: We received your order %s\n", event.OrderID)
	body := fmt.Sprintf(`
		<h1>Thanks for your order! 🛒</h1>
		<p>Your items are reserved. Complete the payment to confirm the order.</p>
		<ul>%s</ul>
		<p>Total: ₹%d</p>
	`, lines.String(), event.TotalAmount)

	return s.send(ctx, span, to, subject, body)
}

func (s *smtpSender) SendOrderConfirmedEmail(ctx context.Context, to string, event domain.OrderConfirmedEvent) error {
	ctx, span := s.tracer.Start(ctx, "smtp.SendOrderConfirmedEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
		attribute.String("order_id", event.OrderID),
	)

	subject := fmt.Sprintf("Subject: Order %s confirmed\n", event.OrderID)
	body := fmt.Sprintf(`
		<h1>Payment received! 🎉</h1>
		<p>We received ₹%d via %s and your order is confirmed.</p>
		<p>Payment reference: %s</p>
	`, event.TotalAmount, event.PaymentMethod, event.PaymentID)

	return s.send(ctx, span, to, subject, body)
}

func (s *smtpSender) SendPaymentFailedEmail(ctx context.Context, to string, event domain.OrderPaymentFailedEvent) error {
	ctx, span := s.tracer.Start(ctx, "smtp.SendPaymentFailedEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("to.email", to),
		attribute.String("order_id", event.OrderID),
	)

	subject := fmt.Sprintf("Subject: Payment for order %s failed\n", event.OrderID)
	body := `
		<h1>Your payment did not go through</h1>
		<p>The reserved items were released back to stock. Place the order again to retry.</p>
	`

	return s.send(ctx, span, to, subject, body)
}

func (s *smtpSender) send(ctx context.Context, span trace.Span, to, subject, body string) error {
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(subject + mime + body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}

	logging.Info(ctx, s.logger, "Sending email", zap.String("to", to))

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		span.RecordError(err)
		logging.Error(
			ctx,
			s.logger,
			"Error sending email",
			zap.String("to", to),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send mail: %v", err)
	}

	logging.Info(ctx, s.logger, "Email sent successfully", zap.String("to", to))
	return nil
}

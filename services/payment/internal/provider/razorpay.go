package provider

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	razorpayUtils "github.com/razorpay/razorpay-go/utils"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/config"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"go.uber.org/zap"
)

type razorpayProvider struct {
	client        *razorpay.Client
	webhookSecret string
	callbackURL   string
	logger        *zap.Logger
}

func NewRazorpayProvider(cfg config.Razorpay, logger *zap.Logger) Provider {
	return &razorpayProvider{
		client:        razorpay.NewClient(cfg.APIKey, cfg.APISecret),
		webhookSecret: cfg.WebhookSecret,
		callbackURL:   cfg.CallbackURL,
		logger:        logger,
	}
}

func (p *razorpayProvider) CreatePaymentLink(ctx context.Context, req *CreateLinkRequest) (*Link, error) {
	// Razorpay amounts are in the smallest currency unit.
	data := map[string]interface{}{
		"amount":       req.Amount * 100,
		"currency":     "INR",
		"description":  fmt.Sprintf("Payment for order %s", req.OrderID),
		"reference_id": req.OrderID,
		"customer": map[string]interface{}{
			"name": req.Username,
		},
		"notify": map[string]interface{}{
			"sms":   true,
			"email": true,
		},
		"callback_url":    p.callbackURL,
		"callback_method": "get",
	}

	body, err := p.client.PaymentLink.Create(data, nil)
	if err != nil {
		logging.Error(ctx, p.logger, "failed to create payment link",
			zap.String("order_id", req.OrderID), zap.Error(err))

		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok {
		return nil, fmt.Errorf("payment link response missing id")
	}

	shortURL, ok := body["short_url"].(string)
	if !ok {
		return nil, fmt.Errorf("payment link response missing short_url")
	}

	logging.Info(ctx, p.logger, "payment link created",
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", id))

	return &Link{ID: id, ShortURL: shortURL}, nil
}

func (p *razorpayProvider) FetchPaymentMethod(ctx context.Context, paymentID string) (string, error) {
	body, err := p.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		logging.Warn(ctx, p.logger, "failed to fetch payment",
			zap.String("payment_id", paymentID), zap.Error(err))

		return "", fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	method, _ := body["method"].(string)

	return method, nil
}

func (p *razorpayProvider) VerifyWebhookSignature(body []byte, signature string) bool {
	return razorpayUtils.VerifyWebhookSignature(string(body), signature, p.webhookSecret)
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type PaymentLink struct {
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
}

// PaymentClient asks the payment service for a hosted payment link.
type PaymentClient interface {
	CreateLink(ctx context.Context, orderID string, amount int64, username string) (*PaymentLink, error)
}

type paymentClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewPaymentClient(baseURL string, timeout time.Duration, logger *zap.Logger) PaymentClient {
	return &paymentClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
		cb:      utils.NewServiceBreaker("PaymentService", logger),
		logger:  logger,
	}
}

type createLinkRequest struct {
	Amount   int64  `json:"amount"`
	Username string `json:"username"`
}

func (c *paymentClient) CreateLink(ctx context.Context, orderID string, amount int64, username string) (*PaymentLink, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(createLinkRequest{Amount: amount, Username: username})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	url := fmt.Sprintf("%s/payments/v1/checkout/%s", c.baseURL, orderID)

	link, err := utils.ExecuteWithBreaker(c.cb, func() (*PaymentLink, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

			return nil, fmt.Errorf("%w: payment checkout returned %d: %s",
				ErrRemoteFailure, resp.StatusCode, respBody)
		}

		var link PaymentLink
		if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
			return nil, fmt.Errorf("failed to decode payment link: %w", err)
		}

		return &link, nil
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn(ctx, c.logger, "payment link call timed out",
				zap.String("order_id", orderID))

			return nil, fmt.Errorf("%w: payment checkout", ErrUpstreamTimeout)
		}

		return nil, err
	}

	return link, nil
}

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

	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/logging"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/utils"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// OrderStatusConfirmed is the order service's terminal status for a paid
// order; any other terminal status means the reservation goes back.
const OrderStatusConfirmed = "CONFIRMED"

type PaymentStatusResult struct {
	OrderID          string                    `json:"order_id"`
	Status           string                    `json:"status"`
	AlreadyFinalized bool                      `json:"already_finalized"`
	Items            []generalDomain.OrderItem `json:"items"`
}

// OrderClient pushes the payment verdict into the order service and gets the
// order's line items back for the stock step.
type OrderClient interface {
	ApplyPaymentStatus(ctx context.Context, orderID, paymentStatus, paymentID, method string) (*PaymentStatusResult, error)
}

type orderClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewOrderClient(baseURL string, timeout time.Duration, logger *zap.Logger) OrderClient {
	return &orderClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
		cb:      utils.NewServiceBreaker("OrderService", logger),
		logger:  logger,
	}
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
	PaymentID     string `json:"payment_id"`
	PaymentMethod string `json:"payment_method"`
}

func (c *orderClient) ApplyPaymentStatus(ctx context.Context, orderID, paymentStatus, paymentID, method string) (*PaymentStatusResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(paymentStatusRequest{
		PaymentStatus: paymentStatus,
		PaymentID:     paymentID,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment status: %w", err)
	}

	url := fmt.Sprintf("%s/orders/v1/%s/payment-status", c.baseURL, orderID)

	result, err := utils.ExecuteWithBreaker(c.cb, func() (*PaymentStatusResult, error) {
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

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

			return nil, fmt.Errorf("%w: payment-status returned %d: %s",
				ErrRemoteFailure, resp.StatusCode, respBody)
		}

		var result PaymentStatusResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode payment status result: %w", err)
		}

		return &result, nil
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn(ctx, c.logger, "order payment-status call timed out",
				zap.String("order_id", orderID))

			return nil, fmt.Errorf("%w: order payment-status", ErrUpstreamTimeout)
		}

		return nil, err
	}

	return result, nil
}

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

// InventoryClient finalizes reservations after the payment verdict: confirm
// on payment, release otherwise.
type InventoryClient interface {
	Confirm(ctx context.Context, items []generalDomain.OrderItem) error
	Release(ctx context.Context, items []generalDomain.OrderItem) error
}

type inventoryClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewInventoryClient(baseURL string, timeout time.Duration, logger *zap.Logger) InventoryClient {
	return &inventoryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
		cb:      utils.NewServiceBreaker("InventoryService", logger),
		logger:  logger,
	}
}

type stockItemPayload struct {
	ProductID int64  `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int64  `json:"quantity"`
}

func (c *inventoryClient) Confirm(ctx context.Context, items []generalDomain.OrderItem) error {
	return c.call(ctx, "/products/v1/confirm-stocks/count", items)
}

func (c *inventoryClient) Release(ctx context.Context, items []generalDomain.OrderItem) error {
	return c.call(ctx, "/products/v1/reserved-stocks/release", items)
}

func (c *inventoryClient) call(ctx context.Context, path string, items []generalDomain.OrderItem) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := make([]stockItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, stockItemPayload{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  int64(item.Quantity),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal stock items: %w", err)
	}

	_, err = utils.ExecuteWithBreaker(c.cb, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

			return struct{}{}, fmt.Errorf("%w: inventory %s returned %d: %s",
				ErrRemoteFailure, path, resp.StatusCode, respBody)
		}

		return struct{}{}, nil
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn(ctx, c.logger, "inventory call timed out", zap.String("path", path))

			return fmt.Errorf("%w: %s", ErrUpstreamTimeout, path)
		}

		return err
	}

	return nil
}

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

// InventoryClient talks to the product service's stock ledger.
type InventoryClient interface {
	Reserve(ctx context.Context, items []generalDomain.OrderItem) error
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

func toStockPayload(items []generalDomain.OrderItem) []stockItemPayload {
	payload := make([]stockItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, stockItemPayload{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  int64(item.Quantity),
		})
	}

	return payload
}

func (c *inventoryClient) Reserve(ctx context.Context, items []generalDomain.OrderItem) error {
	return c.call(ctx, http.MethodPut, "/products/v1/order", items)
}

func (c *inventoryClient) Release(ctx context.Context, items []generalDomain.OrderItem) error {
	return c.call(ctx, http.MethodPost, "/products/v1/reserved-stocks/release", items)
}

func (c *inventoryClient) call(ctx context.Context, method, path string, items []generalDomain.OrderItem) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(toStockPayload(items))
	if err != nil {
		return fmt.Errorf("failed to marshal stock items: %w", err)
	}

	_, err = utils.ExecuteWithBreaker(c.cb, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return struct{}{}, nil
		}

		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		switch resp.StatusCode {
		case http.StatusBadRequest:
			return struct{}{}, fmt.Errorf("%w: %s", ErrOutOfStock, respBody)
		default:
			return struct{}{}, fmt.Errorf("%w: inventory %s returned %d: %s",
				ErrRemoteFailure, path, resp.StatusCode, respBody)
		}
	})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Warn(ctx, c.logger, "inventory call timed out",
				zap.String("path", path))

			return fmt.Errorf("%w: %s", ErrUpstreamTimeout, path)
		}

		return err
	}

	return nil
}

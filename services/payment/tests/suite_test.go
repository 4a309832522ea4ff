package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	outbox "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/testsuite"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/provider"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/service"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const validSignature = "valid-signature"

type fakeProvider struct{}

func (fakeProvider) CreatePaymentLink(_ context.Context, req *provider.CreateLinkRequest) (*provider.Link, error) {
	return &provider.Link{
		ID:       "plink_" + req.OrderID[:8],
		ShortURL: "https://rzp.io/l/" + req.OrderID[:8],
	}, nil
}

func (fakeProvider) FetchPaymentMethod(context.Context, string) (string, error) {
	return "upi", nil
}

func (fakeProvider) VerifyWebhookSignature(_ []byte, signature string) bool {
	return signature == validSignature
}

// fakeOrderClient finalizes each order at most once, the way the order
// service's conditional status update does: the first successful call wins,
// later calls report the recorded terminal status with AlreadyFinalized set
// and the items still attached.
type fakeOrderClient struct {
	mu         sync.Mutex
	err        error
	items      []generalDomain.OrderItem
	calls      int
	lastStatus string
	finalized  map[string]string
}

func (f *fakeOrderClient) ApplyPaymentStatus(_ context.Context, orderID, paymentStatus, _, _ string) (*client.PaymentStatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastStatus = paymentStatus

	if f.err != nil {
		return nil, f.err
	}

	if terminal, ok := f.finalized[orderID]; ok {
		return &client.PaymentStatusResult{
			OrderID:          orderID,
			Status:           terminal,
			AlreadyFinalized: true,
			Items:            f.items,
		}, nil
	}

	status := client.OrderStatusConfirmed
	if paymentStatus != "SUCCESS" {
		status = "PAYMENT_FAILED"
	}
	f.finalized[orderID] = status

	return &client.PaymentStatusResult{
		OrderID: orderID,
		Status:  status,
		Items:   f.items,
	}, nil
}

type fakeInventoryClient struct {
	mu        sync.Mutex
	err       error
	confirmed int
	released  int
}

func (f *fakeInventoryClient) Confirm(context.Context, []generalDomain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.confirmed++
	return nil
}

func (f *fakeInventoryClient) Release(context.Context, []generalDomain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.released++
	return nil
}

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	PaymentRepo repository.PaymentRepository

	Orders    *fakeOrderClient
	Inventory *fakeInventoryClient

	PaymentService service.PaymentService
	WebhookService service.WebhookService
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupBase()
	s.BaseSuite.SetupPostgres("../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownBase()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTables("payments", "processed_webhook_events", "outbox")

	logger := zap.NewNop()

	s.PaymentRepo = repository.NewPaymentRepository(s.Pool, logger)
	eventRepo := repository.NewWebhookEventRepository(s.Pool, logger)
	outboxRepo := outbox.NewOutboxRepository(s.Pool, logger)

	s.Orders = &fakeOrderClient{
		items: []generalDomain.OrderItem{
			{ProductID: 1, Size: "42", Quantity: 2, Price: 7999},
		},
		finalized: map[string]string{},
	}
	s.Inventory = &fakeInventoryClient{}

	s.PaymentService = service.NewPaymentService(s.PaymentRepo, outboxRepo, fakeProvider{}, s.Pool, logger)
	s.WebhookService = service.NewWebhookService(
		fakeProvider{},
		s.PaymentRepo,
		eventRepo,
		s.Orders,
		s.Inventory,
		s.Pool,
		logger,
	)
}

func (s *IntegrationTestSuite) webhookBody(event string, orderID uuid.UUID, linkStatus string) []byte {
	body, err := json.Marshal(map[string]any{
		"event": event,
		"payload": map[string]any{
			"payment_link": map[string]any{
				"entity": map[string]any{
					"id":           "plink_wh_1",
					"status":       linkStatus,
					"reference_id": orderID.String(),
					"amount":       1599800,
				},
			},
			"payment": map[string]any{
				"entity": map[string]any{
					"id":     "pay_wh_1",
					"method": "upi",
				},
			},
		},
	})
	s.Require().NoError(err)

	return body
}

func (s *IntegrationTestSuite) paymentStatus(paymentID string) string {
	var status string
	err := s.Pool.QueryRow(s.Ctx,
		`SELECT status FROM payments WHERE payment_id = $1`, paymentID).Scan(&status)
	s.Require().NoError(err)

	return status
}

func (s *IntegrationTestSuite) stockSettled(paymentID string) bool {
	var settled bool
	err := s.Pool.QueryRow(s.Ctx,
		`SELECT stock_settled FROM payments WHERE payment_id = $1`, paymentID).Scan(&settled)
	s.Require().NoError(err)

	return settled
}

func (s *IntegrationTestSuite) processedEventCount() int {
	var count int
	err := s.Pool.QueryRow(s.Ctx,
		`SELECT COUNT(*) FROM processed_webhook_events`).Scan(&count)
	s.Require().NoError(err)

	return count
}

func (s *IntegrationTestSuite) paymentCount() int {
	var count int
	err := s.Pool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM payments`).Scan(&count)
	s.Require().NoError(err)

	return count
}

func eventID(n int) string {
	return fmt.Sprintf("evt_%08d", n)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

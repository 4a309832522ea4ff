package tests

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
	outbox "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/outbox/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/testsuite"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type fakeInventoryClient struct {
	mu         sync.Mutex
	reserveErr error
	releaseErr error
	reserved   [][]generalDomain.OrderItem
	released   [][]generalDomain.OrderItem
}

func (f *fakeInventoryClient) Reserve(_ context.Context, items []generalDomain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reserveErr != nil {
		return f.reserveErr
	}

	f.reserved = append(f.reserved, items)
	return nil
}

func (f *fakeInventoryClient) Release(_ context.Context, items []generalDomain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.releaseErr != nil {
		return f.releaseErr
	}

	f.released = append(f.released, items)
	return nil
}

func (f *fakeInventoryClient) setReleaseErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.releaseErr = err
}

func (f *fakeInventoryClient) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.released)
}

type fakePaymentClient struct {
	mu    sync.Mutex
	link  *client.PaymentLink
	err   error
	calls int
}

func (f *fakePaymentClient) CreateLink(_ context.Context, _ string, _ int64, _ string) (*client.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	return f.link, nil
}

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	OrderRepo repository.OrderRepository

	Inventory *fakeInventoryClient
	Payments  *fakePaymentClient

	CheckoutService service.CheckoutService
	OrderService    service.OrderService
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupBase()
	s.BaseSuite.SetupPostgres("../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownBase()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTables("orders", "outbox")

	logger := zap.NewNop()

	s.OrderRepo = repository.NewOrderRepository(s.Pool, logger)
	outboxRepo := outbox.NewOutboxRepository(s.Pool, logger)

	s.Inventory = &fakeInventoryClient{}
	s.Payments = &fakePaymentClient{
		link: &client.PaymentLink{
			PaymentID:  "plink_test_1",
			PaymentURL: "https://rzp.io/l/test",
		},
	}

	s.CheckoutService = service.NewCheckoutService(
		s.OrderRepo,
		noopCartRepo{},
		outboxRepo,
		s.Inventory,
		s.Payments,
		s.Pool,
		logger,
	)
	s.OrderService = service.NewOrderService(s.OrderRepo, outboxRepo, s.Pool, logger)
}

// noopCartRepo stands in for redis in tests that pass items explicitly.
type noopCartRepo struct{}

func (noopCartRepo) Get(context.Context, string) ([]generalDomain.OrderItem, error) {
	return nil, nil
}
func (noopCartRepo) Put(context.Context, string, []generalDomain.OrderItem) error { return nil }
func (noopCartRepo) Clear(context.Context, string) error                          { return nil }

func (s *IntegrationTestSuite) checkoutRequest() *service.CheckoutRequest {
	return &service.CheckoutRequest{
		Items: []generalDomain.OrderItem{
			{ProductID: 1, Size: "42", Quantity: 2, Price: 7999},
			{ProductID: 2, Size: "M", Quantity: 1, Price: 1999},
		},
		Address: domain.Address{
			Street:  "12 MG Road",
			City:    "Bengaluru",
			Country: "IN",
			ZipCode: "560001",
		},
	}
}

func (s *IntegrationTestSuite) orderStatus(orderID uuid.UUID) string {
	var status string
	err := s.Pool.QueryRow(s.Ctx,
		`SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	s.Require().NoError(err)

	return status
}

func (s *IntegrationTestSuite) outboxEventTypes() []string {
	rows, err := s.Pool.Query(s.Ctx,
		`SELECT event_type FROM outbox ORDER BY created_at`)
	s.Require().NoError(err)
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		s.Require().NoError(rows.Scan(&t))
		types = append(types, t)
	}
	s.Require().NoError(rows.Err())

	return types
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

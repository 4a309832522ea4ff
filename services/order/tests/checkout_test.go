package tests

import (
	"errors"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/client"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
)

func (s *IntegrationTestSuite) TestCheckoutPlacesOrder() {
	result, err := s.CheckoutService.Checkout(s.Ctx, "rohit", s.checkoutRequest())
	s.Require().NoError(err)

	s.Equal("https://rzp.io/l/test", result.PaymentURL)
	s.Len(s.Inventory.reserved, 1)
	s.Equal(1, s.Payments.calls)

	order, err := s.OrderRepo.GetByID(s.Ctx, result.OrderID)
	s.Require().NoError(err)

	s.Equal(domain.StatusAwaitingPayment, order.Status)
	s.Equal("rohit", order.Username)
	s.Equal(int64(2*7999+1999), order.TotalAmount)
	s.Len(order.Items, 2)
	s.Require().NotNil(order.PaymentID)
	s.Equal("plink_test_1", *order.PaymentID)

	s.Equal([]string{"OrderPlaced"}, s.outboxEventTypes())
}

func (s *IntegrationTestSuite) TestCheckoutEmptyCart() {
	_, err := s.CheckoutService.Checkout(s.Ctx, "rohit", &service.CheckoutRequest{})
	s.Require().ErrorIs(err, service.ErrEmptyCart)

	s.Empty(s.Inventory.reserved)
	s.Equal(0, s.Payments.calls)
}

func (s *IntegrationTestSuite) TestCheckoutOutOfStock() {
	s.Inventory.reserveErr = client.ErrOutOfStock

	_, err := s.CheckoutService.Checkout(s.Ctx, "rohit", s.checkoutRequest())
	s.Require().ErrorIs(err, client.ErrOutOfStock)

	// Nothing was reserved, so nothing may be released or persisted.
	s.Equal(0, s.Inventory.releaseCount())
	s.Equal(0, s.Payments.calls)

	var count int
	s.Require().NoError(s.Pool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM orders`).Scan(&count))
	s.Equal(0, count)
}

func (s *IntegrationTestSuite) TestCheckoutPaymentFailureCompensates() {
	s.Payments.err = errors.New("provider unavailable")

	_, err := s.CheckoutService.Checkout(s.Ctx, "rohit", s.checkoutRequest())
	s.Require().Error(err)

	// The reservation is returned and the persisted order is cancelled.
	s.Equal(1, s.Inventory.releaseCount())

	var status string
	queryErr := s.Pool.QueryRow(s.Ctx, `SELECT status FROM orders LIMIT 1`).Scan(&status)
	s.Require().NoError(queryErr)
	s.Equal(string(domain.StatusCancelled), status)
}

package tests

import (
	"github.com/google/uuid"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/repository"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/service"
)

func (s *IntegrationTestSuite) placeOrder() uuid.UUID {
	result, err := s.CheckoutService.Checkout(s.Ctx, "rohit", s.checkoutRequest())
	s.Require().NoError(err)

	return result.OrderID
}

func (s *IntegrationTestSuite) TestApplyPaymentStatusSuccess() {
	orderID := s.placeOrder()

	result, err := s.OrderService.ApplyPaymentStatus(s.Ctx, orderID, &service.PaymentStatusUpdate{
		PaymentStatus: "SUCCESS",
		PaymentID:     "plink_test_1",
		PaymentMethod: "upi",
	})
	s.Require().NoError(err)

	s.False(result.AlreadyFinalized)
	s.Equal(domain.StatusConfirmed, result.Status)
	s.Len(result.Items, 2)

	s.Equal(string(domain.StatusConfirmed), s.orderStatus(orderID))
	s.Equal([]string{"OrderPlaced", "OrderConfirmed"}, s.outboxEventTypes())
}

func (s *IntegrationTestSuite) TestApplyPaymentStatusFailed() {
	orderID := s.placeOrder()

	result, err := s.OrderService.ApplyPaymentStatus(s.Ctx, orderID, &service.PaymentStatusUpdate{
		PaymentStatus: "FAILED",
		PaymentID:     "plink_test_1",
	})
	s.Require().NoError(err)

	s.Equal(domain.StatusPaymentFailed, result.Status)
	s.Equal(string(domain.StatusPaymentFailed), s.orderStatus(orderID))
	s.Equal([]string{"OrderPlaced", "OrderPaymentFailed"}, s.outboxEventTypes())
}

func (s *IntegrationTestSuite) TestApplyPaymentStatusReplayIsNoOp() {
	orderID := s.placeOrder()

	update := &service.PaymentStatusUpdate{
		PaymentStatus: "SUCCESS",
		PaymentID:     "plink_test_1",
		PaymentMethod: "upi",
	}

	first, err := s.OrderService.ApplyPaymentStatus(s.Ctx, orderID, update)
	s.Require().NoError(err)
	s.False(first.AlreadyFinalized)

	second, err := s.OrderService.ApplyPaymentStatus(s.Ctx, orderID, update)
	s.Require().NoError(err)

	s.True(second.AlreadyFinalized)
	s.Equal(domain.StatusConfirmed, second.Status)
	// The replay still carries the items: a webhook redelivery that lost its
	// stock step needs them to settle the reservation.
	s.Len(second.Items, 2)

	// Still exactly one finalization event.
	s.Equal([]string{"OrderPlaced", "OrderConfirmed"}, s.outboxEventTypes())
}

func (s *IntegrationTestSuite) TestApplyPaymentStatusUnknownOrder() {
	_, err := s.OrderService.ApplyPaymentStatus(s.Ctx, uuid.New(), &service.PaymentStatusUpdate{
		PaymentStatus: "SUCCESS",
		PaymentID:     "plink_test_1",
	})
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestGetOrder() {
	orderID := s.placeOrder()

	order, err := s.OrderService.GetOrder(s.Ctx, orderID)
	s.Require().NoError(err)

	s.Equal(orderID, order.ID)
	s.Equal(domain.StatusAwaitingPayment, order.Status)
	s.Len(order.Items, 2)
}

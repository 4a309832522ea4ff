package tests

import (
	"context"
	"errors"
	"time"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/order/internal/worker"
	"go.uber.org/zap"
)

func (s *IntegrationTestSuite) TestReaperCancelsExpiredOrders() {
	orderID := s.placeOrder()

	// Age the order past the reaper cutoff.
	_, err := s.Pool.Exec(s.Ctx,
		`UPDATE orders SET created_at = NOW() - INTERVAL '1 hour' WHERE id = $1`, orderID)
	s.Require().NoError(err)

	reaper := worker.NewReservationReaper(
		s.OrderRepo,
		s.Inventory,
		s.Pool,
		zap.NewNop(),
		20*time.Millisecond,
		30*time.Minute,
	)

	reaperCtx, cancel := context.WithCancel(s.Ctx)
	defer cancel()
	go reaper.Start(reaperCtx)

	s.Require().Eventually(func() bool {
		return s.orderStatus(orderID) == string(domain.StatusCancelled)
	}, 5*time.Second, 50*time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.Inventory.releaseCount() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *IntegrationTestSuite) TestReaperRetriesFailedRelease() {
	orderID := s.placeOrder()

	_, err := s.Pool.Exec(s.Ctx,
		`UPDATE orders SET created_at = NOW() - INTERVAL '1 hour' WHERE id = $1`, orderID)
	s.Require().NoError(err)

	s.Inventory.setReleaseErr(errors.New("product service unavailable"))

	reaper := worker.NewReservationReaper(
		s.OrderRepo,
		s.Inventory,
		s.Pool,
		zap.NewNop(),
		20*time.Millisecond,
		30*time.Minute,
	)

	reaperCtx, cancel := context.WithCancel(s.Ctx)
	defer cancel()
	go reaper.Start(reaperCtx)

	// While the release keeps failing the order must stay CANCELLING, not
	// CANCELLED, so later passes pick it up again.
	s.Require().Eventually(func() bool {
		return s.orderStatus(orderID) == string(domain.StatusCancelling)
	}, 5*time.Second, 50*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	s.Equal(string(domain.StatusCancelling), s.orderStatus(orderID))
	s.Equal(0, s.Inventory.releaseCount())

	s.Inventory.setReleaseErr(nil)

	s.Require().Eventually(func() bool {
		return s.orderStatus(orderID) == string(domain.StatusCancelled)
	}, 5*time.Second, 50*time.Millisecond)
	s.Require().Eventually(func() bool {
		return s.Inventory.releaseCount() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *IntegrationTestSuite) TestReaperLeavesFreshOrdersAlone() {
	orderID := s.placeOrder()

	reapable, err := s.OrderRepo.ListReapable(s.Ctx, time.Now().Add(-30*time.Minute))
	s.Require().NoError(err)
	s.Empty(reapable)

	s.Equal(string(domain.StatusAwaitingPayment), s.orderStatus(orderID))
}

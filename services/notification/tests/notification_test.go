package tests

import (
	"time"

	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
)

func placedEvent() domain.OrderPlacedEvent {
	return domain.OrderPlacedEvent{
		OrderID:     "7b0c8f7e-0000-4000-8000-000000000001",
		Username:    "rohit@example.com",
		TotalAmount: 17997,
		Items: []domain.OrderItem{
			{ProductID: 1, Size: "42", Quantity: 2, Price: 7999},
			{ProductID: 2, Size: "M", Quantity: 1, Price: 1999},
		},
		PlacedAt: time.Now(),
	}
}

func (s *IntegrationTestSuite) TestOrderPlacedSendsEmail() {
	err := s.Service.HandleOrderPlaced(s.Ctx, "1", placedEvent())
	s.Require().NoError(err)

	s.Equal([]string{"rohit@example.com"}, s.Sender.placed)
	s.Equal(1, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestDuplicateEventSendsOnce() {
	event := placedEvent()

	s.Require().NoError(s.Service.HandleOrderPlaced(s.Ctx, "2", event))
	s.Require().NoError(s.Service.HandleOrderPlaced(s.Ctx, "2", event))

	s.Len(s.Sender.placed, 1)
	s.Equal(1, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestDistinctEventTypesShareDedupTable() {
	confirmed := domain.OrderConfirmedEvent{
		OrderID:       "7b0c8f7e-0000-4000-8000-000000000001",
		Username:      "rohit@example.com",
		PaymentID:     "plink_1",
		PaymentMethod: "upi",
		TotalAmount:   17997,
		ConfirmedAt:   time.Now(),
	}

	s.Require().NoError(s.Service.HandleOrderPlaced(s.Ctx, "3", placedEvent()))
	s.Require().NoError(s.Service.HandleOrderConfirmed(s.Ctx, "4", confirmed))

	s.Len(s.Sender.placed, 1)
	s.Len(s.Sender.confirmed, 1)
	s.Equal(2, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestSenderFailureLeavesEventUnmarked() {
	s.Sender.setErr(errSMTPDown)

	err := s.Service.HandleOrderPlaced(s.Ctx, "5", placedEvent())
	s.Require().Error(err)

	// The dedup row must roll back with the failure so a redelivery
	// gets another attempt.
	s.Equal(0, s.processedEventCount())

	s.Sender.setErr(nil)

	s.Require().NoError(s.Service.HandleOrderPlaced(s.Ctx, "5", placedEvent()))
	s.Len(s.Sender.placed, 1)
	s.Equal(1, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestPaymentFailedSendsEmail() {
	event := domain.OrderPaymentFailedEvent{
		OrderID:   "7b0c8f7e-0000-4000-8000-000000000002",
		Username:  "rohit@example.com",
		PaymentID: "plink_2",
		FailedAt:  time.Now(),
	}

	err := s.Service.HandleOrderPaymentFailed(s.Ctx, "6", event)
	s.Require().NoError(err)

	s.Equal([]string{"rohit@example.com"}, s.Sender.failed)
}

func (s *IntegrationTestSuite) TestMissingEventIDStillSends() {
	err := s.Service.HandleOrderPlaced(s.Ctx, "", placedEvent())
	s.Require().NoError(err)

	s.Len(s.Sender.placed, 1)
	s.Equal(0, s.processedEventCount())
}

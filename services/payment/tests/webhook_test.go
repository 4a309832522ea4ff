package tests

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/service"
)

func (s *IntegrationTestSuite) TestWebhookPaidConfirmsStock() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(1))
	s.Require().NoError(err)

	s.Equal(1, s.Inventory.confirmed)
	s.Equal(0, s.Inventory.released)
	s.Equal(1, s.Orders.calls)
	s.Equal("SUCCESS", s.Orders.lastStatus)

	s.Equal(string(domain.PaymentSuccess), s.paymentStatus("plink_wh_1"))
	s.Equal(1, s.processedEventCount())
	s.True(s.stockSettled("plink_wh_1"))

	payment, err := s.PaymentRepo.GetByOrderID(s.Ctx, orderID)
	s.Require().NoError(err)
	s.Equal("upi", payment.Method)
	s.Equal(int64(15998), payment.TotalAmount)
}

func (s *IntegrationTestSuite) TestWebhookInvalidSignature() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, "tampered", eventID(2))
	s.Require().ErrorIs(err, service.ErrInvalidSignature)

	s.Equal(0, s.Inventory.confirmed)
	s.Equal(0, s.Orders.calls)
	s.Equal(0, s.processedEventCount())
	s.Equal(0, s.paymentCount())
}

func (s *IntegrationTestSuite) TestWebhookMalformedBody() {
	err := s.WebhookService.HandleWebhook(s.Ctx, []byte("{not json"), validSignature, eventID(3))
	s.Require().ErrorIs(err, service.ErrMalformedEvent)

	err = s.WebhookService.HandleWebhook(s.Ctx,
		s.webhookBody("payment_link.paid", uuid.New(), "paid")[:0], validSignature, eventID(3))
	s.Require().ErrorIs(err, service.ErrMalformedEvent)

	s.Equal(0, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestWebhookBadReferenceID() {
	body := []byte(`{
		"event": "payment_link.paid",
		"payload": {
			"payment_link": {
				"entity": {"id": "plink_wh_1", "status": "paid", "reference_id": "not-a-uuid", "amount": 100}
			}
		}
	}`)

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(4))
	s.Require().ErrorIs(err, service.ErrMalformedEvent)

	s.Equal(0, s.Orders.calls)
	s.Equal(0, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestWebhookIgnoresOtherEvents() {
	orderID := uuid.New()
	body := s.webhookBody("payment.captured", orderID, "paid")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(5))
	s.Require().NoError(err)

	s.Equal(0, s.Inventory.confirmed)
	s.Equal(0, s.Orders.calls)
	s.Equal(0, s.processedEventCount())
	s.Equal(0, s.paymentCount())
}

func (s *IntegrationTestSuite) TestWebhookDuplicateDelivery() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(6)))
	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(6)))

	s.Equal(1, s.Inventory.confirmed)
	s.Equal(1, s.Orders.calls)
	s.Equal(1, s.processedEventCount())
	s.Equal(1, s.paymentCount())
}

func (s *IntegrationTestSuite) TestWebhookExpiredReleasesStock() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "expired")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(7))
	s.Require().NoError(err)

	s.Equal(0, s.Inventory.confirmed)
	s.Equal(1, s.Inventory.released)
	s.Equal("FAILED", s.Orders.lastStatus)
	s.Equal(string(domain.PaymentFailed), s.paymentStatus("plink_wh_1"))
}

func (s *IntegrationTestSuite) TestWebhookCollaboratorFailureRetries() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	s.Orders.err = errors.New("order service unavailable")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(8))
	s.Require().Error(err)

	// The rollback must also undo the dedup mark and the payment write,
	// otherwise the redelivery below would be treated as a duplicate.
	s.Equal(0, s.processedEventCount())
	s.Equal(0, s.paymentCount())
	s.Equal(0, s.Inventory.confirmed)

	s.Orders.err = nil

	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(8)))

	s.Equal(1, s.Inventory.confirmed)
	s.Equal(1, s.processedEventCount())
	s.Equal(string(domain.PaymentSuccess), s.paymentStatus("plink_wh_1"))
}

func (s *IntegrationTestSuite) TestWebhookStockFailureRetries() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	s.Inventory.err = errors.New("product service unavailable")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(9))
	s.Require().Error(err)
	s.Equal(0, s.processedEventCount())

	// The first delivery already finalized the order remotely, so the
	// redelivery gets AlreadyFinalized back. The stock step must still run:
	// it keys off the payment row's unsettled state, not the order guard.
	s.Inventory.err = nil

	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(9)))

	s.Equal(2, s.Orders.calls)
	s.Equal(1, s.Inventory.confirmed)
	s.Equal(0, s.Inventory.released)
	s.Equal(string(domain.PaymentSuccess), s.paymentStatus("plink_wh_1"))
	s.True(s.stockSettled("plink_wh_1"))
	s.Equal(1, s.processedEventCount())
}

func (s *IntegrationTestSuite) TestWebhookRedeliveryAfterSettlementSkipsStock() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(10)))
	s.Equal(1, s.Inventory.confirmed)

	// A second provider event for the same link (fresh event id) finds the
	// stock already settled and must not confirm again.
	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(11)))

	s.Equal(1, s.Inventory.confirmed)
	s.Equal(0, s.Inventory.released)
	s.Equal(2, s.Orders.calls)
	s.Equal(2, s.processedEventCount())
	s.Equal(1, s.paymentCount())
}

func (s *IntegrationTestSuite) TestWebhookWithoutEventIDStillReconciles() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	err := s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, "")
	s.Require().NoError(err)

	s.Equal(1, s.Inventory.confirmed)
	s.Equal(0, s.processedEventCount())
	s.Equal(string(domain.PaymentSuccess), s.paymentStatus("plink_wh_1"))
}

package tests

import (
	"github.com/google/uuid"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/domain"
	"github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/services/payment/internal/repository"
)

func (s *IntegrationTestSuite) TestCreateCheckoutIssuesLink() {
	orderID := uuid.New()

	link, err := s.PaymentService.CreateCheckout(s.Ctx, orderID, 15998, "rohit")
	s.Require().NoError(err)
	s.Require().NotNil(link)
	s.Equal("plink_"+orderID.String()[:8], link.PaymentID)
	s.NotEmpty(link.PaymentURL)

	payment, err := s.PaymentRepo.GetByOrderID(s.Ctx, orderID)
	s.Require().NoError(err)
	s.Equal(link.PaymentID, payment.PaymentID)
	s.Equal(domain.PaymentPending, payment.Status)
	s.Equal(int64(15998), payment.TotalAmount)

	var eventTypes []string
	rows, err := s.Pool.Query(s.Ctx, `SELECT event_type FROM outbox ORDER BY id`)
	s.Require().NoError(err)
	defer rows.Close()
	for rows.Next() {
		var eventType string
		s.Require().NoError(rows.Scan(&eventType))
		eventTypes = append(eventTypes, eventType)
	}
	s.Equal([]string{"PaymentLinkCreated"}, eventTypes)
}

func (s *IntegrationTestSuite) TestGetStatusAfterWebhook() {
	orderID := uuid.New()
	body := s.webhookBody("payment_link.paid", orderID, "paid")

	s.Require().NoError(s.WebhookService.HandleWebhook(s.Ctx, body, validSignature, eventID(20)))

	payment, err := s.PaymentService.GetStatus(s.Ctx, orderID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentSuccess, payment.Status)
	s.Equal("plink_wh_1", payment.PaymentID)
}

func (s *IntegrationTestSuite) TestGetStatusUnknownOrder() {
	_, err := s.PaymentService.GetStatus(s.Ctx, uuid.New())
	s.Require().ErrorIs(err, repository.ErrPaymentNotFound)
}

package provider

import "context"

type CreateLinkRequest struct {
	OrderID  string
	Amount   int64
	Username string
}

type Link struct {
	ID       string
	ShortURL string
}

// Provider abstracts the payment gateway: link creation, payment lookup and
// webhook authenticity.
type Provider interface {
	CreatePaymentLink(ctx context.Context, req *CreateLinkRequest) (*Link, error)
	FetchPaymentMethod(ctx context.Context, paymentID string) (string, error)
	VerifyWebhookSignature(body []byte, signature string) bool
}

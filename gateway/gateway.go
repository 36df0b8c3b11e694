package gateway

import "context"

// Status is the gateway's view of a payment, reduced to what the
// settlement transition needs.
type Status string

const (
	// StatusSucceeded means the gateway settled the charge.
	StatusSucceeded Status = "succeeded"
	// StatusCanceled means the charge was cancelled or expired at the gateway.
	StatusCanceled Status = "canceled"
	// StatusPending covers every other gateway state; the raw value is kept
	// on the link for diagnosis.
	StatusPending Status = "pending"
)

// Customer identifies the payer on the hosted checkout page.
type Customer struct {
	Name  string
	Email string
}

// LineItem is the single receipt line sent with a payment request.
type LineItem struct {
	Description string
	Quantity    string
	Amount      float64
	TaxCode     string
}

// PaymentRequest describes a hosted payment-page request.
type PaymentRequest struct {
	Amount      float64
	Currency    string
	ReturnURL   string
	Capture     bool
	Description string
	Customer    Customer
	Receipt     LineItem
	// Metadata travels to the gateway and comes back with notifications;
	// it carries the internal payment reference.
	Metadata map[string]string
}

// PaymentLink is the gateway's answer: where to send the payer and how to
// find the transaction again later.
type PaymentLink struct {
	ID        string
	URL       string
	Status    Status
	RawStatus string
}

// Client is the narrow interface the payment lifecycle needs from a
// payment processor.
type Client interface {
	// Method tags payments created through this client.
	Method() string
	// CreatePaymentLink submits a hosted payment-page request.
	CreatePaymentLink(ctx context.Context, req PaymentRequest) (*PaymentLink, error)
	// FetchPaymentLink re-queries the authoritative status of a transaction.
	FetchPaymentLink(ctx context.Context, id string) (*PaymentLink, error)
}

package gateway

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// DefaultRequestTimeout bounds every outbound gateway call.
const DefaultRequestTimeout = 15 * time.Second

// RazorpayClient talks to Razorpay's payment-link API.
type RazorpayClient struct {
	api     *razorpay.Client
	timeout time.Duration
}

// NewRazorpayClient creates a gateway client with the given credentials.
func NewRazorpayClient(key, secret string) *RazorpayClient {
	return &RazorpayClient{
		api:     razorpay.NewClient(key, secret),
		timeout: DefaultRequestTimeout,
	}
}

// Method tags payments created through this client.
func (c *RazorpayClient) Method() string {
	return "razorpay"
}

// CreatePaymentLink creates a hosted payment link and returns its URL and id.
func (c *RazorpayClient) CreatePaymentLink(ctx context.Context, req PaymentRequest) (*PaymentLink, error) {
	// Razorpay expects the amount in minor units.
	data := map[string]interface{}{
		"amount":          int(req.Amount*100 + 0.5),
		"currency":        req.Currency,
		"accept_partial":  false,
		"description":     req.Description,
		"callback_url":    req.ReturnURL,
		"callback_method": "get",
	}
	if len(req.Metadata) > 0 {
		notes := make(map[string]interface{}, len(req.Metadata))
		for k, v := range req.Metadata {
			notes[k] = v
		}
		data["notes"] = notes
	}
	if req.Customer.Email != "" {
		data["customer"] = map[string]interface{}{
			"name":  req.Customer.Name,
			"email": req.Customer.Email,
		}
		data["notify"] = map[string]interface{}{"email": true}
	}

	link, err := c.call(ctx, func() (map[string]interface{}, error) {
		return c.api.PaymentLink.Create(data, nil)
	})
	if err != nil {
		return nil, err
	}

	rawStatus := stringField(link, "status")
	return &PaymentLink{
		ID:        stringField(link, "id"),
		URL:       stringField(link, "short_url"),
		Status:    mapStatus(rawStatus),
		RawStatus: rawStatus,
	}, nil
}

// FetchPaymentLink queries the current authoritative status of a payment link.
func (c *RazorpayClient) FetchPaymentLink(ctx context.Context, id string) (*PaymentLink, error) {
	link, err := c.call(ctx, func() (map[string]interface{}, error) {
		return c.api.PaymentLink.Fetch(id, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	rawStatus := stringField(link, "status")
	return &PaymentLink{
		ID:        stringField(link, "id"),
		URL:       stringField(link, "short_url"),
		Status:    mapStatus(rawStatus),
		RawStatus: rawStatus,
	}, nil
}

type apiResult struct {
	data map[string]interface{}
	err  error
}

// call runs an SDK call under the client timeout. The SDK itself takes no
// context, so a timed-out call is abandoned rather than cancelled; the
// caller still gets a timely failure result.
func (c *RazorpayClient) call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ch := make(chan apiResult, 1)
	go func() {
		data, err := fn()
		ch <- apiResult{data: data, err: err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("gateway request timed out: %w", ctx.Err())
	}
}

func mapStatus(raw string) Status {
	switch raw {
	case "paid":
		return StatusSucceeded
	case "cancelled", "expired":
		return StatusCanceled
	default:
		return StatusPending
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

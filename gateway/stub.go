package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StubTransactionPrefix marks transaction ids that never touched a real
// gateway.
const StubTransactionPrefix = "test_"

// StubClient stands in for the payment gateway when no credentials are
// configured. Payment links point at the local test-payment endpoint and
// transaction ids carry the stub prefix so they can never be mistaken for
// real ones.
type StubClient struct {
	baseURL string

	mu     sync.Mutex
	states map[string]Status
}

// NewStubClient creates a stub gateway serving links under baseURL.
func NewStubClient(baseURL string) *StubClient {
	return &StubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		states:  make(map[string]Status),
	}
}

// Method tags payments created through this client.
func (c *StubClient) Method() string {
	return "test"
}

// CreatePaymentLink fabricates a deterministic local payment link from the
// request's reference metadata.
func (c *StubClient) CreatePaymentLink(_ context.Context, req PaymentRequest) (*PaymentLink, error) {
	reference := req.Metadata["reference"]
	if reference == "" {
		return nil, fmt.Errorf("stub gateway requires a reference in metadata")
	}

	id := StubTransactionPrefix + reference

	c.mu.Lock()
	c.states[id] = StatusPending
	c.mu.Unlock()

	return &PaymentLink{
		ID:        id,
		URL:       fmt.Sprintf("%s/v1/payments/test-payment/%s", c.baseURL, reference),
		Status:    StatusPending,
		RawStatus: "created",
	}, nil
}

// FetchPaymentLink reports whatever state the stub was driven into.
func (c *StubClient) FetchPaymentLink(_ context.Context, id string) (*PaymentLink, error) {
	c.mu.Lock()
	status, ok := c.states[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown stub transaction: %s", id)
	}

	return &PaymentLink{ID: id, Status: status, RawStatus: string(status)}, nil
}

// SetStatus drives a stub transaction into the given state. Test helper.
func (c *StubClient) SetStatus(id string, status Status) {
	c.mu.Lock()
	c.states[id] = status
	c.mu.Unlock()
}

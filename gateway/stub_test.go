package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubCreatePaymentLink(t *testing.T) {
	stub := NewStubClient("http://localhost:8080/")

	link, err := stub.CreatePaymentLink(context.Background(), PaymentRequest{
		Amount:   5000,
		Currency: "RUB",
		Metadata: map[string]string{"reference": "abc-123"},
	})
	require.NoError(t, err)

	assert.Equal(t, "test_abc-123", link.ID)
	assert.Equal(t, "http://localhost:8080/v1/payments/test-payment/abc-123", link.URL)
	assert.Equal(t, StatusPending, link.Status)
}

func TestStubRequiresReference(t *testing.T) {
	stub := NewStubClient("http://localhost:8080")

	_, err := stub.CreatePaymentLink(context.Background(), PaymentRequest{Amount: 100})
	assert.Error(t, err)
}

func TestStubFetchPaymentLink(t *testing.T) {
	stub := NewStubClient("http://localhost:8080")

	link, err := stub.CreatePaymentLink(context.Background(), PaymentRequest{
		Metadata: map[string]string{"reference": "ref-1"},
	})
	require.NoError(t, err)

	fetched, err := stub.FetchPaymentLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, fetched.Status)

	stub.SetStatus(link.ID, StatusSucceeded)
	fetched, err = stub.FetchPaymentLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, fetched.Status)

	_, err = stub.FetchPaymentLink(context.Background(), "test_unknown")
	assert.Error(t, err)
}

func TestMapStatus(t *testing.T) {
	assert.Equal(t, StatusSucceeded, mapStatus("paid"))
	assert.Equal(t, StatusCanceled, mapStatus("cancelled"))
	assert.Equal(t, StatusCanceled, mapStatus("expired"))
	assert.Equal(t, StatusPending, mapStatus("created"))
	assert.Equal(t, StatusPending, mapStatus("partially_paid"))
}

package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"proshop/internal/payment"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayPalServer(t *testing.T, status, amount string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/PAY-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"` + status + `","purchase_units":[{"amount":{"value":"` + amount + `"}}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_VerifyCompleted(t *testing.T) {
	srv := newPayPalServer(t, "COMPLETED", "125.50")
	client := payment.NewClient(payment.Config{ClientID: "client", AppSecret: "secret", APIURL: srv.URL}, nil)

	v, err := client.Verify(context.Background(), "PAY-1")
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, 125.50, v.Amount)
}

func TestClient_VerifyNotCompleted(t *testing.T) {
	srv := newPayPalServer(t, "APPROVED", "10.00")
	client := payment.NewClient(payment.Config{ClientID: "client", AppSecret: "secret", APIURL: srv.URL}, nil)

	v, err := client.Verify(context.Background(), "PAY-1")
	require.NoError(t, err)
	assert.False(t, v.Verified)
}

func TestClient_BadCredentials(t *testing.T) {
	srv := newPayPalServer(t, "COMPLETED", "10.00")
	client := payment.NewClient(payment.Config{ClientID: "client", AppSecret: "wrong", APIURL: srv.URL}, nil)

	_, err := client.Verify(context.Background(), "PAY-1")
	assert.Error(t, err)
}

func TestClient_NotConfigured(t *testing.T) {
	client := payment.NewClient(payment.Config{}, nil)
	assert.False(t, client.IsConfigured())

	_, err := client.Verify(context.Background(), "PAY-1")
	assert.ErrorIs(t, err, payment.ErrNotConfigured)
}

func TestClient_RejectedOrderDoesNotTripBreaker(t *testing.T) {
	srv := newPayPalServer(t, "COMPLETED", "10.00")
	client := payment.NewClient(payment.Config{ClientID: "client", AppSecret: "secret", APIURL: srv.URL}, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := client.Verify(ctx, "BOGUS")
		require.Error(t, err)
		assert.True(t, payment.IsRejected(err))
	}

	v, err := client.Verify(ctx, "PAY-1")
	require.NoError(t, err)
	assert.True(t, v.Verified)
}

func TestClient_ServerErrorsTripBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client := payment.NewClient(payment.Config{ClientID: "client", AppSecret: "secret", APIURL: srv.URL}, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Verify(ctx, "PAY-1")
		require.Error(t, err)
		assert.False(t, payment.IsRejected(err))
	}

	_, err := client.Verify(ctx, "PAY-1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

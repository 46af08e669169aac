package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0771234567", "94771234567"},
		{"+94771234567", "+94771234567"},
		{"077 123 4567", "94771234567"},
		{"077-123-4567", "94771234567"},
		{"94771234567", "94771234567"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestSMSClient_SendsGatewayParams(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"esmsqk":         q.Get("esmsqk"),
			"list":           q.Get("list"),
			"source_address": q.Get("source_address"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewSMSClient(srv.URL, "test-key", "TestShop", 2*time.Second)
	c.PurchaseConfirmation(context.Background(), "0771234567", "inv-1")

	require.NotNil(t, got)
	require.Equal(t, "test-key", got["esmsqk"])
	require.Equal(t, "94771234567", got["list"])
	require.Equal(t, "TestShop", got["source_address"])
}

func TestSMSClient_DisabledWithoutKey(t *testing.T) {
	hit := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := NewSMSClient(srv.URL, "", "TestShop", 2*time.Second)
	c.TicketCompleted(context.Background(), "0771234567", "ticket-1")

	require.False(t, hit)
}

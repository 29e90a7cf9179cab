package notion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Forwards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewRateLimiter(1000, nil)}
	resp, err := client.Get(srv.URL)

	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	limiter := NewRateLimiter(0.001, http.DefaultTransport)

	// Drain the single burst token.
	ctx := context.Background()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:0", nil)
	require.NoError(t, limiter.bucket.Wait(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := limiter.RoundTrip(req.WithContext(cancelled))

	assert.Error(t, err)
}

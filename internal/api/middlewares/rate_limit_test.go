package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

func rateLimitedHandler(trustedProxies ...string) http.Handler {
	cfg := &config.Config{Server: config.ServerConfig{
		RateLimitRPS:   1,
		RateLimitBurst: 2,
		TrustedProxies: trustedProxies,
	}}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return RateLimitMiddleware(cfg)(ok)
}

func post(h http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/bridge/step1", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := rateLimitedHandler()

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, post(h, "203.0.113.7:50000", fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[4])
}

func TestRateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	h := rateLimitedHandler("127.0.0.1", "10.1.0.0/16")

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, post(h, "127.0.0.1:4000", "198.51.100.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, post(h, "127.0.0.1:4000", "198.51.100.1"))
	// a different client behind the same proxy has its own bucket
	assert.Equal(t, http.StatusOK, post(h, "127.0.0.1:4000", "198.51.100.2"))

	// a spoofed left-most entry does not move the client to a fresh bucket
	assert.Equal(t, http.StatusTooManyRequests, post(h, "127.0.0.1:4000", "1.2.3.4, 198.51.100.1, 10.1.4.4"))
}

func TestClientIP(t *testing.T) {
	trusted, err := (&config.ServerConfig{TrustedProxies: []string{"127.0.0.1", "10.1.0.0/16"}}).TrustedProxyNets()
	require.NoError(t, err)

	cases := []struct {
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"203.0.113.7:1", "", "203.0.113.7"},
		{"203.0.113.7:1", "198.51.100.1", "203.0.113.7"},
		{"127.0.0.1:1", "", "127.0.0.1"},
		{"127.0.0.1:1", "198.51.100.1", "198.51.100.1"},
		{"127.0.0.1:1", "9.9.9.9, 198.51.100.1, 10.1.2.3", "198.51.100.1"},
		{"127.0.0.1:1", "10.1.2.3", "127.0.0.1"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = c.remoteAddr
		if c.forwarded != "" {
			req.Header.Set("X-Forwarded-For", c.forwarded)
		}
		assert.Equal(t, c.want, clientIP(req, trusted), c.remoteAddr+" "+c.forwarded)
	}
}

func TestTrustedProxiesValidation(t *testing.T) {
	_, err := (&config.ServerConfig{TrustedProxies: []string{"not-an-ip"}}).TrustedProxyNets()
	assert.Error(t, err)
	_, err = (&config.ServerConfig{TrustedProxies: []string{"10.0.0.0/33"}}).TrustedProxyNets()
	assert.Error(t, err)
}

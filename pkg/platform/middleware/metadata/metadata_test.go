package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(req *http.Request) ClientInfo {
	var info ClientInfo
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = Client(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return info
}

func TestClientMetadata(t *testing.T) {
	t.Run("parses the user agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
		info := capture(req)
		assert.Contains(t, info.Browser, "Chrome")
		assert.Equal(t, "Linux x86_64", info.OS)
		assert.False(t, info.Bot)
	})

	t.Run("flags bots", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "Googlebot/2.1 (+http://www.google.com/bot.html)")
		info := capture(req)
		assert.True(t, info.Bot)
	})

	t.Run("prefers the forwarded-for chain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		info := capture(req)
		assert.Equal(t, "203.0.113.9", info.IP)
	})

	t.Run("falls back to the remote address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:4321"
		info := capture(req)
		assert.Equal(t, "192.0.2.7", info.IP)
	})
}

func TestClientWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, ClientInfo{}, Client(req.Context()))
}

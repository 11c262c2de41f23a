package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"factorhub/internal/domain"
	"factorhub/pkg/platform/middleware/auth"
)

// AsCaller stamps the request context with an authenticated identity,
// simulating what the auth middleware does after token validation.
func AsCaller(req *http.Request, caller domain.Identity) *http.Request {
	return req.WithContext(auth.WithCaller(req.Context(), caller))
}

// BearerToken mints a short-lived HS256 token for caller, signed with key.
// Use it when a test runs the real middleware chain.
func BearerToken(t *testing.T, key string, caller domain.Identity) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": string(caller),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err, "failed to sign test token")
	return signed
}

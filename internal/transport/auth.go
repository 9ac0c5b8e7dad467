package transport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ghbridge/server/internal/observability"
)

// BearerVerifier verifies HS256 bearer tokens on HTTP requests. A nil
// verifier disables auth entirely (stdio deployments, local use).
type BearerVerifier struct {
	secret []byte
}

// NewBearerVerifier creates a verifier for the given shared secret.
// Returns nil when the secret is empty, which disables auth.
func NewBearerVerifier(secret string) *BearerVerifier {
	if secret == "" {
		return nil
	}
	return &BearerVerifier{secret: []byte(secret)}
}

// VerifyToken verifies a bearer JWT and returns the registered claims.
func (v *BearerVerifier) VerifyToken(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	return claims, nil
}

// Middleware returns an HTTP middleware that rejects requests without a
// valid bearer token. A nil verifier passes all requests through.
func (v *BearerVerifier) Middleware(next http.Handler) http.Handler {
	if v == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			observability.LogError("", "missing_bearer_token", r.RemoteAddr)
			writeAuthError(w, "MISSING_TOKEN", "Missing bearer token")
			return
		}

		if _, err := v.VerifyToken(token); err != nil {
			observability.LogError("", "invalid_bearer_token", err.Error())
			writeAuthError(w, "INVALID_TOKEN", "Invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q,"message":%q}`, code, message)
}

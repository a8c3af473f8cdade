// internal/identity/middleware.go
// Bearer-token middleware. Verifies HS256 access tokens issued by the
// external auth service and places the resolved Identity in the context.

package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/oluseyi-dev/inspira-backend/internal/common/utils"
)

// Claims is the subset of the auth service's token claims we rely on
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Middleware resolves request identity from bearer tokens
type Middleware struct {
	secret []byte
}

// NewMiddleware creates an identity middleware with the shared token secret
func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

// Require rejects requests without a valid token
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, "missing or invalid authorization header", http.StatusUnauthorized)
			return
		}

		id, err := m.verify(token)
		if err != nil {
			utils.ErrorResponse(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional resolves identity when a valid token is present but lets
// anonymous requests through for public-read endpoints
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractToken(r); token != "" {
			if id, err := m.verify(token); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Anonymous(), err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return Anonymous(), fmt.Errorf("invalid token claims")
	}

	return Authenticated(claims.UserID), nil
}

// extractToken pulls the token out of a "Bearer <token>" header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

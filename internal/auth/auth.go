// JWT bearer authentication against the university identity provider.
// Tokens are verified with RS256 using the provider's JWKS endpoint; the
// subject claim is placed in the request context and later resolved to a
// portal user by the handlers.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const subjectKey contextKey = "auth_subject"

// Verifier validates bearer tokens and exposes the subject claim.
type Verifier struct {
	jwks   keyfunc.Keyfunc
	leeway time.Duration
}

// NewVerifier fetches the provider's JWKS and keeps it refreshed in the
// background for the lifetime of ctx.
func NewVerifier(ctx context.Context, jwksURL string, leeway time.Duration) (*Verifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return &Verifier{jwks: k, leeway: leeway}, nil
}

// NewVerifierWithKeyfunc builds a Verifier around a prepared keyfunc.
// Used in tests to substitute a local key set.
func NewVerifierWithKeyfunc(k keyfunc.Keyfunc, leeway time.Duration) *Verifier {
	return &Verifier{jwks: k, leeway: leeway}
}

// VerifyRequest extracts and validates the bearer token, returning the
// subject claim.
func (v *Verifier) VerifyRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("no authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("malformed authorization header")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, v.jwks.KeyfuncCtx(r.Context()),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

// Middleware rejects unauthenticated requests and stores the token subject
// in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := v.VerifyRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the verified token subject, or "" when the
// request did not pass through the middleware.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

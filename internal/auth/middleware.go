package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/devconnector/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey ContextKey = "user_id"

	// legacyTokenHeader is the header older clients send the raw token in
	legacyTokenHeader = "X-Auth-Token"
)

// TokenResolver turns a bearer token into the id of the acting user
type TokenResolver interface {
	ResolveToken(token string) (uuid.UUID, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	resolver TokenResolver
}

func NewMiddleware(resolver TokenResolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// RequireAuth is a middleware that validates the bearer token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			scheme, value, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
				httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
				return
			}
			token = strings.TrimSpace(value)
		}

		// Priority 2: legacy header (fallback)
		if token == "" {
			token = strings.TrimSpace(r.Header.Get(legacyTokenHeader))
		}

		if token == "" {
			httputil.RespondErrorWithCode(w, "no token, authorization denied", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		userID, err := m.resolver.ResolveToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "token is not valid", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a copy of ctx carrying the authenticated user id
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

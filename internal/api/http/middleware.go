package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/security"
)

const RequestIDHeader = "X-Request-ID"

type contextKey int

const (
	claimsKey contextKey = iota
	requestIDKey
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logger.ContextWithRequestID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id assigned to the current request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

// Middleware authenticates the bearer token against the security level of
// the matched route.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.GetSecurityLevel(name)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearer(r.Header.Get("Authorization"))
		if token == "" {
			writeErrorBody(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authorization token is not provided")
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			logger.Debug("Rejected token", "route", name, "request_id", RequestIDFromContext(r.Context()), "error", err)
			writeErrorBody(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
			return
		}
		if level == config.SecurityAdmin && !claims.HasRole(config.RoleAdmin) {
			writeErrorBody(w, http.StatusForbidden, "PERMISSION_DENIED", "admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(header string) string {
	if len(header) > 7 && strings.ToUpper(header[0:7]) == "BEARER " {
		return header[7:]
	}
	return header
}

// ClaimsFromContext returns the authenticated caller, or nil on public routes.
func ClaimsFromContext(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}

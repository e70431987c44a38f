package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/otcheredev/clinic-management/internal/policy"
	"github.com/otcheredev/clinic-management/internal/services"
	"github.com/rs/zerolog/log"
)

type contextKey string

const CallerKey contextKey = "caller"

// Auth authenticates requests and resolves the caller identity the policy
// engine acts on.
type Auth struct {
	authService *services.AuthService
}

// NewAuth creates the authentication middleware
func NewAuth(authService *services.AuthService) *Auth {
	return &Auth{authService: authService}
}

// Authenticate verifies the bearer token, loads the current user row and
// puts a policy.Caller into the request context. Inactive users are cut off
// here; the policy engine assumes they never reach it.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := a.authService.ParseToken(tokenString)
		if err != nil {
			log.Warn().Err(err).Msg("Token validation failed")
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		user, err := a.authService.ResolveCaller(r.Context(), claims.UserID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to resolve caller")
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if !user.IsActive {
			http.Error(w, "Account is deactivated", http.StatusUnauthorized)
			return
		}

		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		ctx := services.WithClientIP(r.Context(), ip)
		ctx = context.WithValue(ctx, CallerKey, user.Caller())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCaller extracts the caller identity from context
func GetCaller(ctx context.Context) (policy.Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(policy.Caller)
	return caller, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"boq_engine/internal/auth"
	"boq_engine/internal/utils"
)

// Context keys for storing authentication data
const (
	AdminClaimsKey ContextKey = "adminClaims"
	AdminIDKey     ContextKey = "adminID"
	AdminRolesKey  ContextKey = "adminRoles"
)

// AdminJWTMiddleware validates admin JWT tokens and enforces role-based access
func AdminJWTMiddleware(secret []byte, requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			claims, err := auth.ValidateAdminJWT(tokenString, secret)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if len(requiredRoles) > 0 && !hasAnyPermission(claims.Roles, requiredRoles) {
				utils.RespondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), AdminClaimsKey, claims)
			ctx = context.WithValue(ctx, AdminIDKey, claims.Subject)
			ctx = context.WithValue(ctx, AdminRolesKey, claims.Roles)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasAnyPermission(userRoles, requiredRoles []string) bool {
	for _, required := range requiredRoles {
		for _, userRole := range userRoles {
			if auth.Role(userRole).HasPermission(auth.Role(required)) {
				return true
			}
		}
	}
	return false
}

// GetAdminClaims retrieves the admin claims from the request context
func GetAdminClaims(ctx context.Context) (*auth.AdminClaims, bool) {
	claims, ok := ctx.Value(AdminClaimsKey).(*auth.AdminClaims)
	return claims, ok
}

// GetAdminID retrieves the admin ID from the request context
func GetAdminID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AdminIDKey).(string)
	return id, ok
}

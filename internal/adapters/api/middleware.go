package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/slmgo/scriptlm/internal/core/domain"
	"github.com/slmgo/scriptlm/internal/core/ports"
)

type contextKey string

const (
	CtxUserID      contextKey = "user_id"
	CtxPermissions contextKey = "permissions"
)

func AuthMiddleware(repo ports.APIKeyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized: missing or invalid authorization header", http.StatusUnauthorized)
				return
			}

			key := strings.TrimPrefix(authHeader, "Bearer ")
			hash := sha256.Sum256([]byte(key))
			keyHash := hex.EncodeToString(hash[:])

			apiKey, err := repo.GetAPIKeyByHash(r.Context(), keyHash)
			if err != nil {
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if apiKey == nil || !apiKey.Active {
				http.Error(w, "Unauthorized: invalid or inactive API key", http.StatusUnauthorized)
				return
			}

			if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
				http.Error(w, "Unauthorized: API key expired", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, apiKey.UserID)
			ctx = context.WithValue(ctx, CtxPermissions, apiKey.Permissions)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerPermissions reads the permission set the auth middleware stored on
// the request. Anonymous requests have none.
func callerPermissions(r *http.Request) []domain.Permission {
	perms, _ := r.Context().Value(CtxPermissions).([]domain.Permission)
	return perms
}

func hasPermission(r *http.Request, perm domain.Permission) bool {
	for _, p := range callerPermissions(r) {
		if p == perm {
			return true
		}
	}
	return false
}

// callerUserID returns the authenticated user, or nil for anonymous
// endpoints.
func callerUserID(r *http.Request) *string {
	userID, ok := r.Context().Value(CtxUserID).(string)
	if !ok || userID == "" {
		return nil
	}
	return &userID
}

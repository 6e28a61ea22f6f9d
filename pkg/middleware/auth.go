package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/response"
)

// Cookie names carrying the session tokens.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// UserLookup resolves a token's user id to its current role. It returns an
// error when the user no longer exists.
type UserLookup func(ctx context.Context, userID uint64) (role string, err error)

// Authenticate requires a valid access token from the access_token cookie or
// an "Authorization: Bearer" header. The caller's identity, with the role read
// fresh from storage, is stored on the request context.
func Authenticate(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				response.Error(w, http.StatusBadRequest, "Please login to access this resource")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Access token is not valid")
				return
			}

			role, err := lookup(r.Context(), claims.UserID)
			if err != nil {
				logger.WithCtx(r.Context()).Debug("auth: user lookup failed", "user_id", claims.UserID, "error", err)
				response.Error(w, http.StatusBadRequest, "Please login to access this resource")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate attaches the identity when a valid token is present
// and lets the request through either way.
func OptionalAuthenticate(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := AccessToken(r); token != "" {
				if claims, err := auth.ValidateToken(token); err == nil {
					if role, err := lookup(r.Context(), claims.UserID); err == nil {
						r = r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: claims.UserID, Role: role}))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessToken reads the access token from the cookie, then the Bearer header.
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/anonymous123-code/chatApp/internal/model"
)

// UserChecker is the slice of the user store the middleware needs: just
// enough to confirm the token's subject still maps to a live, enabled
// account. Defined here (not in repository) so the consumer owns the
// interface.
type UserChecker interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// contextKey is an unexported type for context keys in this package. Using
// a package-private type means no other package can read or shadow the
// username value we store in the request context.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth enforces authentication on protected routes.
//
// It accepts the JWT from either the "Authorization: Bearer <token>" header
// (API clients, matching the token endpoint's response) or the HttpOnly
// "token" cookie (browser clients). On success the authenticated username is
// stored in the request context; handlers read it via UsernameFromContext.
//
// The token alone is not enough: the subject must still exist in the user
// store and must not be disabled. A token issued before an account was
// disabled is rejected here, on every request.
func RequireAuth(tokens *TokenService, users UserChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				unauthorized(w, "valid authentication required")
				return
			}

			user, err := users.GetByUsername(r.Context(), username)
			if err != nil {
				// Token subject no longer resolves to an account.
				unauthorized(w, "valid authentication required")
				return
			}
			if user.Disabled {
				unauthorized(w, "user is disabled")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username from the request
// context. Returns ("", false) if the request carried no valid token (only
// possible on routes without RequireAuth).
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// extractUsername pulls the JWT out of the request and validates it.
// Header takes precedence over cookie.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if tokenStr, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tokens.Validate(tokenStr)
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, `{"error":"unauthorized","message":"`+message+`"}`, http.StatusUnauthorized)
}

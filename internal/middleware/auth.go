package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ejdotp/digiWallet/internal/api/httpx"
	"github.com/ejdotp/digiWallet/internal/auth"
	"github.com/ejdotp/digiWallet/internal/services"
)

type ctxKey string

const ctxUserIDKey ctxKey = "uid"

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(string)
	return v, ok
}

type AuthMiddleware struct {
	tm    *auth.TokenManager
	users *services.UserService
}

func NewAuthMiddleware(tm *auth.TokenManager, users *services.UserService) *AuthMiddleware {
	return &AuthMiddleware{tm: tm, users: users}
}

// Auth accepts either Basic credentials checked against the credential store
// or a Bearer token from /login. Every failure mode yields the same 401 body
// so callers cannot probe which part was wrong.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := m.identify(r)
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) identify(r *http.Request) (string, bool) {
	if username, password, ok := r.BasicAuth(); ok {
		u, err := m.users.Authenticate(r.Context(), username, password)
		if err != nil {
			return "", false
		}
		return u.ID, true
	}

	ah := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return "", false
	}
	claims, err := m.tm.Parse(strings.TrimSpace(ah[len("Bearer "):]))
	if err != nil {
		return "", false
	}
	return claims.UserID, true
}

package middleware

import (
	"net/http"

	"powerauthserver/logger"
)

// RequireScopes 호출자 토큰에 모든 scope 가 있어야 통과한다.
// 인증이 꺼져 있으면 검사하지 않는다
func RequireScopes(scopes ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !hasScopes(r, scopes...) {
				logger.WithFields(map[string]interface{}{
					"request_id": RequestID(r.Context()),
					"path":       r.URL.Path,
					"scopes":     scopes,
				}).Warn("Caller is missing required scope")
				writeError(w, http.StatusForbidden, "Forbidden: insufficient scope", nil)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}

// HasScope reports whether the authenticated caller holds scope
func HasScope(r *http.Request, scope string) bool {
	claims := ClaimsFromContext(r.Context())
	return claims != nil && claims.HasScope(scope)
}

func hasScopes(r *http.Request, scopes ...string) bool {
	if len(scopes) == 0 {
		return true
	}
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		return authDisabled(r)
	}
	for _, scope := range scopes {
		if !claims.HasScope(scope) {
			return false
		}
	}
	return true
}

func authDisabled(r *http.Request) bool {
	disabled, _ := r.Context().Value(authDisabledKey).(bool)
	return disabled
}

const authDisabledKey contextKey = "auth_disabled"

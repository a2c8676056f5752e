package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/utils"
)

func TestLoggingMiddlewareRequestID(t *testing.T) {
	var seen string
	h := LoggingMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	h(httptest.NewRecorder(), req)
	assert.Equal(t, "upstream-id", seen)
}

func TestAuthMiddlewareAndScopes(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	var claims *utils.Claims
	h := ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		claims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, AuthMiddleware(issuer), RequireScopes(utils.ScopeSignature))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc"))

	other, _, err := utils.NewTokenIssuer("other-secret", time.Hour).GenerateToken("x", []string{utils.ScopeSignature})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+other))

	wrong, _, err := issuer.GenerateToken("x", []string{utils.ScopeRecovery})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call("Bearer "+wrong))

	ok, _, err := issuer.GenerateToken("core-banking", []string{utils.ScopeSignature})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, call("Bearer "+ok))
	require.NotNil(t, claims)
	assert.Equal(t, "core-banking", claims.Subject)
}

func TestAuthDisabled(t *testing.T) {
	h := ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, AuthMiddleware(nil), RequireScopes(utils.ScopeAdmin))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// AuthMiddleware 없이 scope 만 요구하면 거부된다
	rec = httptest.NewRecorder()
	RequireScopes(utils.ScopeAdmin)(func(w http.ResponseWriter, r *http.Request) {})(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORSMiddleware(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", getClientIP(req))
}

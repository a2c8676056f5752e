package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/config"
	"powerauthserver/database"
	"powerauthserver/middleware"
	"powerauthserver/models"
	"powerauthserver/services"
	"powerauthserver/utils"
)

type testServer struct {
	handler http.Handler
	issuer  *utils.TokenIssuer
	app     models.ApplicationDetail
}

func newTestServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()
	sqlDB, dialect, err := database.Open("sqlite", filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := config.DefaultConfig()
	db := services.NewSQLExecutor(sqlDB, dialect)
	keys := services.NewServerKeyConverter(nil)
	now := func() time.Time { return time.Now().UTC() }
	notifier := &services.RecordingNotifier{}
	replay := services.NewReplayService(db, cfg.Replay, now)

	svc := Services{
		Applications:  services.NewApplicationService(db, now),
		Activations:   services.NewActivationService(db, keys, replay, notifier, cfg, now),
		Signatures:    services.NewSignatureService(db, keys, &services.MemoryAuditSink{}, notifier, cfg.Signature, now),
		Recovery:      services.NewRecoveryService(db, keys, replay, cfg.Recovery, now),
		Encryption:    services.NewEncryptionService(db, keys, replay, now),
		TemporaryKeys: services.NewTemporaryKeyService(db, keys, cfg.TemporaryKey.Validity.Duration, now),
	}
	app, err := svc.Applications.Create(context.Background(), models.CreateApplicationRequest{Name: "mobile-banking"})
	require.NoError(t, err)

	ts := &testServer{app: app}
	if withAuth {
		ts.issuer = utils.NewTokenIssuer("test-secret", time.Hour)
	}
	mux := http.NewServeMux()
	RegisterRoutes(mux, svc, ts.issuer)
	mux.HandleFunc("GET /health", Health(sqlDB))
	ts.handler = middleware.LoggingMiddleware(mux.ServeHTTP)
	return ts
}

func (ts *testServer) token(t *testing.T, scopes ...string) string {
	t.Helper()
	token, _, err := ts.issuer.GenerateToken("core-banking", scopes)
	require.NoError(t, err)
	return token
}

func (ts *testServer) post(t *testing.T, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func decodeData(t *testing.T, resp models.APIResponse, dst interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestInitAndStatusOverHTTP(t *testing.T) {
	ts := newTestServer(t, true)
	token := ts.token(t, utils.ScopeActivation)

	rec, resp := ts.post(t, "/rest/v3/activation/init", token, models.InitActivationRequest{
		UserID:        "alice",
		ApplicationID: ts.app.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var initResp models.InitActivationResponse
	decodeData(t, resp, &initResp)
	assert.NotEmpty(t, initResp.ActivationCode)
	assert.Equal(t, "alice", initResp.UserID)

	rec, resp = ts.post(t, "/rest/v3/activation/status", token, models.ActivationStatusRequest{ActivationID: initResp.ActivationID})
	require.Equal(t, http.StatusOK, rec.Code)
	var status models.ActivationStatusResponse
	decodeData(t, resp, &status)
	assert.Equal(t, models.ActivationStatusCreated, status.ActivationStatus)

	blob, err := base64.StdEncoding.DecodeString(status.EncryptedStatusBlob)
	require.NoError(t, err)
	assert.Len(t, blob, 32)
}

func TestStatusOfUnknownActivationIsRemoved(t *testing.T) {
	ts := newTestServer(t, false)
	rec, resp := ts.post(t, "/rest/v3/activation/status", "", models.ActivationStatusRequest{ActivationID: "missing"})
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.ActivationStatusResponse
	decodeData(t, resp, &status)
	assert.Equal(t, models.ActivationStatusRemoved, status.ActivationStatus)
}

func TestAuthAndScopes(t *testing.T) {
	ts := newTestServer(t, true)
	body := models.InitActivationRequest{UserID: "alice", ApplicationID: ts.app.ID}

	rec, resp := ts.post(t, "/rest/v3/activation/init", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error", resp.Status)

	rec, _ = ts.post(t, "/rest/v3/activation/init", "not-a-jwt", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = ts.post(t, "/rest/v3/activation/init", ts.token(t, utils.ScopeSignature), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.post(t, "/rest/v3/activation/init", ts.token(t, utils.ScopeAdmin), body)
	assert.Equal(t, http.StatusOK, rec.Code, "admin holds every scope")

	rec, _ = ts.post(t, "/rest/v3/application/list", ts.token(t, utils.ScopeActivation), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServiceErrorsAreMapped(t *testing.T) {
	ts := newTestServer(t, false)

	rec, resp := ts.post(t, "/rest/v3/activation/commit", "", models.CommitActivationRequest{ActivationID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(services.CodeActivationNotFound), resp.Code)
	assert.Equal(t, services.Localize(services.CodeActivationNotFound, "en"), resp.Message)

	_, resp = ts.post(t, "/rest/v3/activation/commit", "", models.CommitActivationRequest{ActivationID: "missing"},
		"Accept-Language", "ko-KR,ko;q=0.9")
	assert.Equal(t, services.Localize(services.CodeActivationNotFound, "ko"), resp.Message)

	rec, resp = ts.post(t, "/rest/v3/activation/init", "", models.InitActivationRequest{ApplicationID: ts.app.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(services.CodeNoUserID), resp.Code)

	rec, resp = ts.post(t, "/rest/v3/activation/init", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(services.CodeInvalidRequest), resp.Code)
}

func TestApplicationAdminRoutes(t *testing.T) {
	ts := newTestServer(t, false)

	rec, resp := ts.post(t, "/rest/v3/application/create", "", models.CreateApplicationRequest{Name: "wallet"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var app models.ApplicationDetail
	decodeData(t, resp, &app)
	assert.Equal(t, "wallet", app.Name)
	assert.NotEmpty(t, app.MasterPublicKey)
	require.Len(t, app.Versions, 1)

	rec, resp = ts.post(t, "/rest/v3/application/list", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var apps []models.Application
	decodeData(t, resp, &apps)
	assert.Len(t, apps, 2)

	rec, _ = ts.post(t, "/rest/v3/application/version/support", "", models.ApplicationVersionSupportRequest{
		VersionID: app.Versions[0].ID,
		Supported: false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = ts.post(t, "/rest/v3/application/detail", "", models.ApplicationIDRequest{ApplicationID: app.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &app)
	assert.False(t, app.Versions[0].Supported)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("connection refused") }

func TestHealthDatabaseDown(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(failingPinger{})(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code services.ErrorCode
		want int
	}{
		{services.CodeInvalidRequest, http.StatusBadRequest},
		{services.CodeInvalidRecoveryCode, http.StatusBadRequest},
		{services.CodeActivationNotFound, http.StatusNotFound},
		{services.CodeRecoveryCodeAlreadyExists, http.StatusConflict},
		{services.CodeGenericCryptographyError, http.StatusInternalServerError},
		{services.CodeUnknownError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

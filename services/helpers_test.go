package services

import (
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"powerauthserver/config"
	"powerauthserver/database"
	"powerauthserver/ecies"
	"powerauthserver/models"
	"powerauthserver/signature"
	"powerauthserver/utils"
)

func init() {
	utils.PasswordHashCost = bcrypt.MinCost
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv 임시 SQLite 위의 서비스 묶음
type testEnv struct {
	ctx         context.Context
	db          SQLExecutor
	cfg         *config.Config
	clock       *testClock
	keys        *ServerKeyConverter
	notifier    *RecordingNotifier
	audit       *MemoryAuditSink
	replay      ReplayService
	apps        ApplicationService
	activations ActivationService
	signatures  SignatureService
	recovery    RecoveryService
	app         models.ApplicationDetail
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sqlDB, dialect, err := database.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := config.DefaultConfig()
	cfg.Crypto.MasterDBEncryptionKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))

	e := &testEnv{
		ctx:      context.Background(),
		db:       NewSQLExecutor(sqlDB, dialect),
		cfg:      cfg,
		clock:    newTestClock(),
		keys:     NewServerKeyConverter(cfg.MasterDBEncryptionKeyBytes()),
		notifier: &RecordingNotifier{},
		audit:    &MemoryAuditSink{},
	}
	e.replay = NewReplayService(e.db, cfg.Replay, e.clock.Now)
	e.apps = NewApplicationService(e.db, e.clock.Now)
	e.activations = NewActivationService(e.db, e.keys, e.replay, e.notifier, cfg, e.clock.Now)
	e.signatures = NewSignatureService(e.db, e.keys, e.audit, e.notifier, cfg.Signature, e.clock.Now)
	e.recovery = NewRecoveryService(e.db, e.keys, e.replay, cfg.Recovery, e.clock.Now)

	e.app, err = e.apps.Create(e.ctx, models.CreateApplicationRequest{Name: "mobile-banking", Roles: []string{"ROLE_MOBILE"}})
	require.NoError(t, err)
	return e
}

func (e *testEnv) version() models.ApplicationVersion {
	return e.app.Versions[0]
}

func (e *testEnv) masterPublicKey(t *testing.T) *ecdsa.PublicKey {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(e.app.MasterPublicKey)
	require.NoError(t, err)
	pub, err := utils.BytesToPublicKey(raw)
	require.NoError(t, err)
	return pub
}

func (e *testEnv) enableRecovery(t *testing.T) {
	t.Helper()
	_, err := e.recovery.UpdateRecoveryConfig(e.ctx, models.UpdateRecoveryConfigRequest{
		ApplicationID:             e.app.ID,
		ActivationRecoveryEnabled: true,
	})
	require.NoError(t, err)
}

// testDevice 클라이언트 측 키와 카운터
type testDevice struct {
	key          *ecdsa.PrivateKey
	activationID string
	serverPublic *ecdsa.PublicKey
	ctrData      signature.HashChainCounter
	factorKeys   signature.FactorKeys
	encryptor    *ecies.Encryptor
	protocol     string
}

func newTestDevice(t *testing.T) *testDevice {
	t.Helper()
	key, err := utils.GenerateKeyPair()
	require.NoError(t, err)
	return &testDevice{key: key, protocol: ecies.Version31}
}

func (d *testDevice) publicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&d.key.PublicKey))
}

// layer2 마스터 공개키로 키 교환 요청을 암호화한다
func (d *testDevice) layer2(t *testing.T, e *testEnv, body models.ActivationLayer2Request) models.EncryptedRequest {
	t.Helper()
	if body.DevicePublicKey == "" {
		body.DevicePublicKey = d.publicKeyBase64()
	}
	plain, err := json.Marshal(body)
	require.NoError(t, err)

	version := e.version()
	d.encryptor = ecies.NewEncryptor(e.masterPublicKey(t), ecies.SharedInfo1ActivationLayer2,
		ecies.ApplicationSharedInfo2(version.ApplicationSecret), d.protocol)
	c, p, err := d.encryptor.EncryptRequest(plain, ecies.AssociatedData(d.protocol, version.ApplicationKey, ""))
	require.NoError(t, err)
	return encodeRequest(c, p, d.protocol)
}

func encodeRequest(c ecies.Cryptogram, p ecies.Parameters, protocol string) models.EncryptedRequest {
	req := models.EncryptedRequest{
		EphemeralPublicKey: base64.StdEncoding.EncodeToString(c.EphemeralPublicKey),
		EncryptedData:      base64.StdEncoding.EncodeToString(c.EncryptedData),
		Mac:                base64.StdEncoding.EncodeToString(c.Mac),
		Timestamp:          p.Timestamp,
		ProtocolVersion:    protocol,
	}
	if len(p.Nonce) > 0 {
		req.Nonce = base64.StdEncoding.EncodeToString(p.Nonce)
	}
	return req
}

// completeKeyExchange 응답을 복호화하고 서명 키와 카운터를 준비한다
func (d *testDevice) completeKeyExchange(t *testing.T, e *testEnv, resp models.EncryptedResponse) models.ActivationLayer2Response {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(resp.EncryptedData)
	require.NoError(t, err)
	mac, err := base64.StdEncoding.DecodeString(resp.Mac)
	require.NoError(t, err)
	nonce, err := decodeBase64(resp.Nonce)
	require.NoError(t, err)

	version := e.version()
	plain, err := d.encryptor.DecryptResponse(
		ecies.Cryptogram{EncryptedData: data, Mac: mac},
		ecies.Parameters{Nonce: nonce, Timestamp: resp.Timestamp, AssociatedData: ecies.AssociatedData(d.protocol, version.ApplicationKey, "")},
	)
	require.NoError(t, err)

	var layer2 models.ActivationLayer2Response
	require.NoError(t, json.Unmarshal(plain, &layer2))

	serverRaw, err := base64.StdEncoding.DecodeString(layer2.ServerPublicKey)
	require.NoError(t, err)
	d.serverPublic, err = utils.BytesToPublicKey(serverRaw)
	require.NoError(t, err)
	d.ctrData, err = signature.ParseHashChain(layer2.CtrData)
	require.NoError(t, err)

	shared, err := utils.SharedSecret(d.key, d.serverPublic)
	require.NoError(t, err)
	d.factorKeys, err = signature.DeriveFactorKeys(utils.MasterSecretKey(shared))
	require.NoError(t, err)
	d.activationID = layer2.ActivationID
	return layer2
}

// sign skip 만큼 카운터를 건너뛴 위치에서 서명한다. 디바이스 카운터는 서명 위치 다음으로 이동한다
func (d *testDevice) sign(t *testing.T, data []byte, secret string, sigType signature.Type, format signature.Format, length, skip int) string {
	t.Helper()
	keys, err := d.factorKeys.ForType(sigType)
	require.NoError(t, err)
	ctr := signature.Advance(d.ctrData, skip)
	value, err := signature.Compute(signature.NormalizeData(data, secret), keys, ctr.Bytes(), format, length)
	require.NoError(t, err)
	d.ctrData = ctr.Next().(signature.HashChainCounter)
	return value
}

// activate Init, Prepare, Commit 을 거쳐 ACTIVE 활성화와 디바이스를 만든다
func (e *testEnv) activate(t *testing.T, userID string) *testDevice {
	t.Helper()
	device := e.pendingCommit(t, userID)
	_, err := e.activations.Commit(e.ctx, models.CommitActivationRequest{ActivationID: device.activationID})
	require.NoError(t, err)
	return device
}

// pendingCommit 키 교환까지만 마친 PENDING_COMMIT 활성화
func (e *testEnv) pendingCommit(t *testing.T, userID string) *testDevice {
	t.Helper()
	initResp, err := e.activations.Init(e.ctx, models.InitActivationRequest{UserID: userID, ApplicationID: e.app.ID})
	require.NoError(t, err)

	device := newTestDevice(t)
	prepared, err := e.activations.Prepare(e.ctx, models.PrepareActivationRequest{
		ActivationCode:   initResp.ActivationCode,
		ApplicationKey:   e.version().ApplicationKey,
		EncryptedRequest: device.layer2(t, e, models.ActivationLayer2Request{ActivationName: "phone", Platform: "iOS"}),
	})
	require.NoError(t, err)
	device.completeKeyExchange(t, e, prepared.EncryptedResponse)
	return device
}

func (e *testEnv) loadActivation(t *testing.T, id string) *models.Activation {
	t.Helper()
	a, err := findActivation(e.ctx, e.db, id, false)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a
}

// lockRecorder MySQL 방언으로 동작하면서 FOR UPDATE 쿼리를 기록하고 접미사를 떼어 SQLite 로 넘긴다
type lockRecorder struct {
	Querier
	locked []string
}

func (r *lockRecorder) Dialect() database.Dialect { return database.DialectMySQL }

func (r *lockRecorder) strip(query string) string {
	if trimmed, ok := strings.CutSuffix(query, database.DialectMySQL.ForUpdate()); ok {
		r.locked = append(r.locked, trimmed)
		return trimmed
	}
	return query
}

func (r *lockRecorder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.Querier.ExecContext(ctx, r.strip(query), args...)
}

func (r *lockRecorder) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.Querier.QueryContext(ctx, r.strip(query), args...)
}

func (r *lockRecorder) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.Querier.QueryRowContext(ctx, r.strip(query), args...)
}

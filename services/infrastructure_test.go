package services

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/metrics"
	"powerauthserver/models"
	"powerauthserver/utils"
)

func TestServerKeyConverter(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	t.Run("encrypted", func(t *testing.T) {
		conv := NewServerKeyConverter([]byte("0123456789abcdef"))
		stored, mode, err := conv.ToDB(secret, "alice", "a-1")
		require.NoError(t, err)
		assert.Equal(t, models.EncryptionModeAESHMAC, mode)
		assert.NotEqual(t, base64.StdEncoding.EncodeToString(secret), stored)

		plain, err := conv.FromDB(stored, mode, "alice", "a-1")
		require.NoError(t, err)
		assert.Equal(t, secret, plain)

		// 다른 사용자 문맥으로는 복원되지 않는다
		other, err := conv.FromDB(stored, mode, "bob", "a-1")
		if err == nil {
			assert.NotEqual(t, secret, other)
		}
	})

	t.Run("plain", func(t *testing.T) {
		conv := NewServerKeyConverter(nil)
		stored, mode, err := conv.ToDB(secret, "alice", "a-1")
		require.NoError(t, err)
		assert.Equal(t, models.EncryptionModeNone, mode)

		plain, err := conv.FromDB(stored, mode, "", "")
		require.NoError(t, err)
		assert.Equal(t, secret, plain)
	})

	t.Run("missing master key", func(t *testing.T) {
		stored, mode, err := NewServerKeyConverter([]byte("0123456789abcdef")).ToDB(secret, "alice", "a-1")
		require.NoError(t, err)
		_, err = NewServerKeyConverter(nil).FromDB(stored, mode, "alice", "a-1")
		assert.Equal(t, CodeGenericCryptographyError, CodeOf(err))
	})
}

func countLocks(t *testing.T, e *testEnv, name string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.QueryRowContext(e.ctx, `SELECT COUNT(*) FROM shedlock WHERE name = ?`, name).Scan(&n))
	return n
}

func TestRunInTxCommitsPersistedErrors(t *testing.T) {
	e := newTestEnv(t)
	insert := func(tx *Tx, name string) {
		_, err := tx.ExecContext(e.ctx, `INSERT INTO shedlock (name, lock_until, locked_at, locked_by) VALUES (?, ?, ?, ?)`,
			name, utils.FormatDateTimeForDB(e.clock.Now()), utils.FormatDateTimeForDB(e.clock.Now()), "test")
		require.NoError(t, err)
	}

	hooks := 0
	err := runInTx(e.ctx, e.db, func(tx *Tx) error {
		insert(tx, "persisted")
		tx.AfterCommit(func() { hooks++ })
		return persisted(CodeActivationExpired)
	})
	assert.Equal(t, CodeActivationExpired, CodeOf(err))
	assert.Equal(t, 1, countLocks(t, e, "persisted"))
	assert.Equal(t, 1, hooks)

	err = runInTx(e.ctx, e.db, func(tx *Tx) error {
		insert(tx, "rolled-back")
		tx.AfterCommit(func() { hooks++ })
		return newError(CodeActivationExpired)
	})
	assert.Equal(t, CodeActivationExpired, CodeOf(err))
	assert.Equal(t, 0, countLocks(t, e, "rolled-back"))
	assert.Equal(t, 1, hooks, "hooks must not run on rollback")

	value, err := runInTxResult(e.ctx, e.db, func(tx *Tx) (string, error) {
		insert(tx, "committed")
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 1, countLocks(t, e, "committed"))
}

func statusChanges(t *testing.T, status models.ActivationStatus) float64 {
	t.Helper()
	metrics.MustRegister()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "powerauth_activation_status_changes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "status" && lp.GetValue() == string(status) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStatusChangeRecordedOnlyAfterCommit(t *testing.T) {
	e := newTestEnv(t)
	device := e.activate(t, "alice")
	before := statusChanges(t, models.ActivationStatusBlocked)
	events := len(e.notifier.Events())

	err := runInTx(e.ctx, e.db, func(tx *Tx) error {
		a, err := findActivation(e.ctx, tx, device.activationID, true)
		require.NoError(t, err)
		a.Status = models.ActivationStatusBlocked
		require.NoError(t, saveActivationAndLogChange(e.ctx, tx, a, e.clock.Now(), "", ""))
		notifyAfterCommit(e.ctx, tx, e.notifier, a)
		return errors.New("history write failed")
	})
	require.Error(t, err)
	assert.Equal(t, models.ActivationStatusActive, e.loadActivation(t, device.activationID).Status)
	assert.Equal(t, before, statusChanges(t, models.ActivationStatusBlocked), "rolled back transition")
	assert.Len(t, e.notifier.Events(), events)

	_, err = e.activations.Block(e.ctx, models.BlockActivationRequest{ActivationID: device.activationID})
	require.NoError(t, err)
	assert.Equal(t, before+1, statusChanges(t, models.ActivationStatusBlocked))
	assert.Len(t, e.notifier.Events(), events+1)
}

func TestClusterLock(t *testing.T) {
	e := newTestEnv(t)
	a := NewClusterLock(e.db, "node-a", e.clock.Now)
	b := NewClusterLock(e.db, "node-b", e.clock.Now)

	ok, err := a.TryLock(e.ctx, "expire-activations", time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryLock(e.ctx, "expire-activations", time.Minute, 0)
	require.NoError(t, err)
	assert.False(t, ok, "held by another node")

	// 다른 노드의 Unlock 은 영향이 없다
	require.NoError(t, b.Unlock(e.ctx, "expire-activations"))
	ok, err = b.TryLock(e.ctx, "expire-activations", time.Minute, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.Unlock(e.ctx, "expire-activations"))
	ok, err = b.TryLock(e.ctx, "expire-activations", time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// lockAtMostFor 가 지나면 다른 노드가 가져간다
	e.clock.Advance(2 * time.Minute)
	ok, err = a.TryLock(e.ctx, "expire-activations", time.Minute, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClusterLockHeldForAtLeast(t *testing.T) {
	e := newTestEnv(t)
	a := NewClusterLock(e.db, "node-a", e.clock.Now)
	b := NewClusterLock(e.db, "node-b", e.clock.Now)

	ok, err := a.TryLock(e.ctx, "expire-unique-values", 10*time.Minute, 48*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// 작업이 바로 끝나도 lockAtLeastFor 동안은 다른 노드가 같은 주기를 실행하지 못한다
	require.NoError(t, a.Unlock(e.ctx, "expire-unique-values"))
	e.clock.Advance(time.Second)
	ok, err = b.TryLock(e.ctx, "expire-unique-values", 10*time.Minute, 48*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "released before lockAtLeastFor elapsed")

	e.clock.Advance(47 * time.Second)
	ok, err = b.TryLock(e.ctx, "expire-unique-values", 10*time.Minute, 48*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// 작업이 lockAtLeastFor 보다 오래 걸리면 Unlock 즉시 풀린다
	e.clock.Advance(time.Minute)
	require.NoError(t, b.Unlock(e.ctx, "expire-unique-values"))
	ok, err = a.TryLock(e.ctx, "expire-unique-values", 10*time.Minute, 48*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReplayService(t *testing.T) {
	e := newTestEnv(t)
	now := e.clock.Now()
	ephemeral := []byte("ephemeral-public-key")
	nonce := []byte("0123456789abcdef")

	check := func(ts time.Time, id string) error {
		return runInTx(e.ctx, e.db, func(tx *Tx) error {
			return e.replay.CheckAndPersist(e.ctx, tx, models.UniqueValueApplicationScope, ts.UnixMilli(), ephemeral, nonce, id)
		})
	}

	require.NoError(t, check(now, "app-key"))
	assert.Equal(t, CodeInvalidRequest, CodeOf(check(now, "app-key")), "duplicate")
	require.NoError(t, check(now, "other-app-key"))

	assert.Equal(t, CodeInvalidRequest, CodeOf(check(now.Add(-e.cfg.Replay.RequestExpiration.Duration-time.Second), "old")))
	assert.Equal(t, CodeInvalidRequest, CodeOf(check(now.Add(e.cfg.Replay.MaxClockSkew.Duration+time.Second), "future")))

	e.clock.Advance(e.cfg.Replay.RequestExpiration.Duration + time.Second)
	deleted, err := e.replay.DeleteExpired(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func signTemporaryKeyRequest(t *testing.T, secret []byte, claims temporaryKeyRequestClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestTemporaryKeyApplicationScope(t *testing.T) {
	e := newTestEnv(t)
	svc := NewTemporaryKeyService(e.db, e.keys, 5*time.Minute, e.clock.Now)
	version := e.version()
	appSecret, err := base64.StdEncoding.DecodeString(version.ApplicationSecret)
	require.NoError(t, err)

	resp, err := svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, appSecret, temporaryKeyRequestClaims{
		ApplicationKey: version.ApplicationKey,
		Challenge:      "challenge-1",
	})})
	require.NoError(t, err)

	claims := &temporaryKeyResponseClaims{}
	_, err = jwt.ParseWithClaims(resp.JWT, claims, func(*jwt.Token) (interface{}, error) {
		return e.masterPublicKey(t), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}))
	require.NoError(t, err)
	assert.Equal(t, "challenge-1", claims.Challenge)
	assert.Equal(t, version.ApplicationKey, claims.ApplicationKey)
	assert.Empty(t, claims.ActivationID)

	priv, err := lookupTemporaryPrivateKey(e.ctx, e.db, e.keys, claims.Subject, version.ApplicationKey, "", e.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, claims.PublicKey, base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&priv.PublicKey)))

	_, err = lookupTemporaryPrivateKey(e.ctx, e.db, e.keys, claims.Subject, version.ApplicationKey, "a-1", e.clock.Now())
	assert.Equal(t, CodeMissingTemporaryKey, CodeOf(err), "scope mismatch")

	e.clock.Advance(6 * time.Minute)
	_, err = lookupTemporaryPrivateKey(e.ctx, e.db, e.keys, claims.Subject, version.ApplicationKey, "", e.clock.Now())
	assert.Equal(t, CodeMissingTemporaryKey, CodeOf(err), "expired")

	deleted, err := svc.DeleteExpired(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestTemporaryKeyWithCorruptExpiration(t *testing.T) {
	e := newTestEnv(t)
	svc := NewTemporaryKeyService(e.db, e.keys, 5*time.Minute, e.clock.Now)
	version := e.version()
	appSecret, err := base64.StdEncoding.DecodeString(version.ApplicationSecret)
	require.NoError(t, err)

	resp, err := svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, appSecret, temporaryKeyRequestClaims{
		ApplicationKey: version.ApplicationKey,
		Challenge:      "challenge-1",
	})})
	require.NoError(t, err)
	claims := &temporaryKeyResponseClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(resp.JWT, claims)
	require.NoError(t, err)

	_, err = e.db.ExecContext(e.ctx, `UPDATE temporary_keys SET timestamp_expires = ? WHERE id = ?`, "31/12/2999", claims.Subject)
	require.NoError(t, err)

	_, err = lookupTemporaryPrivateKey(e.ctx, e.db, e.keys, claims.Subject, version.ApplicationKey, "", e.clock.Now())
	assert.Equal(t, CodeMissingTemporaryKey, CodeOf(err))
}

func TestTemporaryKeyRejectsBadRequests(t *testing.T) {
	e := newTestEnv(t)
	svc := NewTemporaryKeyService(e.db, e.keys, 5*time.Minute, e.clock.Now)
	version := e.version()

	_, err := svc.Create(e.ctx, models.TemporaryKeyRequest{})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	_, err = svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, []byte("wrong-secret"), temporaryKeyRequestClaims{
		ApplicationKey: version.ApplicationKey,
	})})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	_, err = svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, []byte("secret"), temporaryKeyRequestClaims{
		ApplicationKey: "unknown",
	})})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	appSecret, err := base64.StdEncoding.DecodeString(version.ApplicationSecret)
	require.NoError(t, err)
	_, err = svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, appSecret, temporaryKeyRequestClaims{
		ApplicationKey: version.ApplicationKey,
		ActivationID:   "missing-activation",
	})})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))
}

func TestTemporaryKeyActivationScope(t *testing.T) {
	e := newTestEnv(t)
	svc := NewTemporaryKeyService(e.db, e.keys, 5*time.Minute, e.clock.Now)
	version := e.version()
	device := e.activate(t, "alice")

	shared, err := utils.SharedSecret(device.key, device.serverPublic)
	require.NoError(t, err)
	transport, err := utils.TransportKey(utils.MasterSecretKey(shared))
	require.NoError(t, err)
	appSecret, err := base64.StdEncoding.DecodeString(version.ApplicationSecret)
	require.NoError(t, err)

	resp, err := svc.Create(e.ctx, models.TemporaryKeyRequest{JWT: signTemporaryKeyRequest(t, utils.DeriveSecretKeyHmac(transport, appSecret), temporaryKeyRequestClaims{
		ApplicationKey: version.ApplicationKey,
		ActivationID:   device.activationID,
		Challenge:      "challenge-2",
	})})
	require.NoError(t, err)

	claims := &temporaryKeyResponseClaims{}
	_, err = jwt.ParseWithClaims(resp.JWT, claims, func(*jwt.Token) (interface{}, error) {
		return device.serverPublic, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}))
	require.NoError(t, err)
	assert.Equal(t, device.activationID, claims.ActivationID)

	_, err = lookupTemporaryPrivateKey(e.ctx, e.db, e.keys, claims.Subject, version.ApplicationKey, device.activationID, e.clock.Now())
	require.NoError(t, err)
}

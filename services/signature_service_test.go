package services

import (
	"crypto/ecdsa"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/models"
	"powerauthserver/signature"
	"powerauthserver/utils"
)

const signedData = "POST&L3BhL3NpZ25hdHVyZS92YWxpZGF0ZQ==&bm9uY2U=&Ym9keQ=="

func (e *testEnv) verifyOnline(t *testing.T, d *testDevice, sigType signature.Type, skip int) models.VerifySignatureResponse {
	t.Helper()
	version := e.version()
	value := d.sign(t, []byte(signedData), version.ApplicationSecret, sigType, signature.FormatBase64, 0, skip)
	resp, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID:     d.activationID,
		ApplicationKey:   version.ApplicationKey,
		Data:             signedData,
		Signature:        value,
		SignatureType:    string(sigType),
		SignatureVersion: "3.1",
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) verifyWrong(t *testing.T, d *testDevice, sigType signature.Type) models.VerifySignatureResponse {
	t.Helper()
	resp, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID:     d.activationID,
		ApplicationKey:   e.version().ApplicationKey,
		Data:             signedData,
		Signature:        base64.StdEncoding.EncodeToString(make([]byte, 32)),
		SignatureType:    string(sigType),
		SignatureVersion: "3.1",
	})
	require.NoError(t, err)
	return resp
}

func TestVerifySignatureValid(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	before := e.loadActivation(t, d.activationID)

	resp := e.verifyOnline(t, d, signature.PossessionKnowledge, 0)
	assert.True(t, resp.SignatureValid)
	assert.Equal(t, models.ActivationStatusActive, resp.ActivationStatus)
	assert.Equal(t, "alice", resp.UserID)
	assert.Equal(t, []string{"ROLE_MOBILE"}, resp.ApplicationRoles)
	assert.Equal(t, e.cfg.Activation.MaxFailedAttempts, resp.RemainingAttempts)
	assert.Equal(t, string(signature.PossessionKnowledge), resp.SignatureType)

	after := e.loadActivation(t, d.activationID)
	assert.Equal(t, int64(1), after.Counter)
	assert.Equal(t, d.ctrData.Base64(), after.CtrData)

	records := e.audit.Records()
	require.Len(t, records, 1)
	assert.True(t, records[0].Valid)
	assert.Equal(t, models.AuditNoteSignatureOK, records[0].Note)
	assert.Equal(t, before.Counter, records[0].ActivationCounter)
	assert.Equal(t, before.CtrData, records[0].ActivationCtrData)

	// 같은 카운터로 다시 보내면 실패
	d.ctrData = signature.HashChainCounter(mustDecode(t, before.CtrData))
	replayed := e.verifyOnline(t, d, signature.PossessionKnowledge, 0)
	assert.False(t, replayed.SignatureValid)
	assert.Equal(t, e.cfg.Activation.MaxFailedAttempts-1, replayed.RemainingAttempts)
}

func TestSignatureOnExpiredPendingActivation(t *testing.T) {
	e := newTestEnv(t)
	d := e.pendingCommit(t, "alice")
	e.clock.Advance(e.cfg.Activation.ValidityBeforeActive.Duration + time.Second)

	resp := e.verifyOnline(t, d, signature.PossessionKnowledge, 0)
	assert.False(t, resp.SignatureValid)
	assert.Equal(t, models.ActivationStatusRemoved, resp.ActivationStatus)
	assert.Equal(t, models.ActivationStatusRemoved, e.loadActivation(t, d.activationID).Status)

	records := e.audit.Records()
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditNoteInvalidState, records[0].Note)
	assert.Equal(t, models.ActivationStatusRemoved, records[0].ActivationStatus)

	events := e.notifier.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, models.ActivationStatusRemoved, events[len(events)-1].Status)
}

func TestSignatureLookaheadWindow(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	w := e.cfg.Signature.Lookahead

	resp := e.verifyOnline(t, d, signature.PossessionKnowledge, w-1)
	require.True(t, resp.SignatureValid)
	assert.Equal(t, int64(w), e.loadActivation(t, d.activationID).Counter)

	resp = e.verifyOnline(t, d, signature.PossessionKnowledge, w)
	assert.False(t, resp.SignatureValid)
	assert.Equal(t, int64(w), e.loadActivation(t, d.activationID).Counter)
}

func TestPossessionFailuresAreNotCounted(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")

	for i := 0; i < int(e.cfg.Activation.MaxFailedAttempts)+1; i++ {
		resp := e.verifyWrong(t, d, signature.Possession)
		assert.False(t, resp.SignatureValid)
	}
	a := e.loadActivation(t, d.activationID)
	assert.Zero(t, a.FailedAttempts)
	assert.Equal(t, models.ActivationStatusActive, a.Status)

	// POSSESSION 성공은 실패 횟수를 초기화하지 않는다
	e.verifyWrong(t, d, signature.PossessionKnowledge)
	require.True(t, e.verifyOnline(t, d, signature.Possession, 0).SignatureValid)
	assert.Equal(t, int64(1), e.loadActivation(t, d.activationID).FailedAttempts)

	require.True(t, e.verifyOnline(t, d, signature.PossessionKnowledge, 0).SignatureValid)
	assert.Zero(t, e.loadActivation(t, d.activationID).FailedAttempts)
}

func TestBlockOnFinalFailedSignature(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	before := len(e.notifier.Events())
	maxFailed := int(e.cfg.Activation.MaxFailedAttempts)

	var resp models.VerifySignatureResponse
	for i := 0; i < maxFailed; i++ {
		resp = e.verifyWrong(t, d, signature.PossessionKnowledge)
		assert.False(t, resp.SignatureValid)
	}
	assert.Equal(t, models.ActivationStatusBlocked, resp.ActivationStatus)
	assert.Equal(t, models.BlockedReasonMaxFailedAttempts, resp.BlockedReason)
	assert.Zero(t, resp.RemainingAttempts)

	events := e.notifier.Events()
	require.Len(t, events, before+1)
	assert.Equal(t, models.ActivationStatusBlocked, events[len(events)-1].Status)

	records := e.audit.Records()
	last := records[len(records)-1]
	assert.Equal(t, models.AuditNoteSignatureDoesNotMatch, last.Note)
	assert.Equal(t, models.BlockedReasonMaxFailedAttempts, last.AdditionalInfo[models.AdditionalInfoBlockedReason])

	// 차단 이후에는 올바른 서명도 거부되고 알림은 더 없다
	resp = e.verifyOnline(t, d, signature.PossessionKnowledge, 0)
	assert.False(t, resp.SignatureValid)
	assert.Len(t, e.notifier.Events(), before+1)
	records = e.audit.Records()
	assert.Equal(t, models.AuditNoteInvalidState, records[len(records)-1].Note)
}

func TestExhaustedActivationIsBlockedOnNextAttempt(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")

	a := e.loadActivation(t, d.activationID)
	a.FailedAttempts = a.MaxFailedAttempts
	require.NoError(t, updateActivation(e.ctx, e.db, a))

	resp := e.verifyOnline(t, d, signature.PossessionKnowledge, 0)
	assert.False(t, resp.SignatureValid)
	assert.Equal(t, models.ActivationStatusBlocked, resp.ActivationStatus)
	records := e.audit.Records()
	assert.Equal(t, models.AuditNoteInvalidStateCtrMismatch, records[len(records)-1].Note)
}

func TestSignatureWithForeignApplication(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	other, err := e.apps.Create(e.ctx, models.CreateApplicationRequest{Name: "other"})
	require.NoError(t, err)
	before := e.loadActivation(t, d.activationID)

	resp, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID:     d.activationID,
		ApplicationKey:   other.Versions[0].ApplicationKey,
		Data:             signedData,
		Signature:        "anything",
		SignatureType:    string(signature.PossessionKnowledge),
		SignatureVersion: "3.1",
	})
	require.NoError(t, err)
	assert.False(t, resp.SignatureValid)

	after := e.loadActivation(t, d.activationID)
	assert.Equal(t, before.Counter+1, after.Counter)
	assert.NotEqual(t, before.CtrData, after.CtrData)
	assert.Equal(t, int64(1), after.FailedAttempts)

	records := e.audit.Records()
	assert.Equal(t, models.AuditNoteInvalidApplication, records[len(records)-1].Note)

	// 한 칸 소모된 카운터 다음 위치의 서명은 여전히 통과
	assert.True(t, e.verifyOnline(t, d, signature.PossessionKnowledge, 1).SignatureValid)
}

func TestVerifySignatureRequestValidation(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")

	_, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID: d.activationID, ApplicationKey: e.version().ApplicationKey, Data: "x", Signature: "y",
		SignatureType: "FINGERPRINT", SignatureVersion: "3.1",
	})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	_, err = e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID: d.activationID, ApplicationKey: e.version().ApplicationKey, Data: "x", Signature: "y",
		SignatureType: "POSSESSION", SignatureVersion: "9.9",
	})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	resp, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID: "missing", ApplicationKey: e.version().ApplicationKey, Data: "x", Signature: "y",
		SignatureType: "POSSESSION", SignatureVersion: "3.1",
	})
	require.NoError(t, err)
	assert.False(t, resp.SignatureValid)
	assert.Equal(t, models.ActivationStatusRemoved, resp.ActivationStatus)
}

func TestDecimalSignatureVersion(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	version := e.version()

	value := d.sign(t, []byte(signedData), version.ApplicationSecret, signature.PossessionKnowledgeBiometry, signature.FormatDecimal, 0, 0)
	assert.Len(t, strings.Split(value, "-"), 3)
	resp, err := e.signatures.VerifySignature(e.ctx, models.VerifySignatureRequest{
		ActivationID:     d.activationID,
		ApplicationKey:   version.ApplicationKey,
		Data:             signedData,
		Signature:        value,
		SignatureType:    "possession_knowledge_biometry",
		SignatureVersion: "3.0",
	})
	require.NoError(t, err)
	assert.True(t, resp.SignatureValid)
}

func TestVerifyOfflineSignature(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")
	length := e.cfg.Signature.OfflineLength

	value := d.sign(t, []byte("qr-data"), offlineSecret, signature.PossessionKnowledge, signature.FormatDecimal, length, 0)
	resp, err := e.signatures.VerifyOfflineSignature(e.ctx, models.VerifyOfflineSignatureRequest{
		ActivationID: d.activationID, Data: "qr-data", Signature: value,
	})
	require.NoError(t, err)
	assert.True(t, resp.SignatureValid)

	value = d.sign(t, []byte("qr-data"), offlineSecret, signature.PossessionBiometry, signature.FormatDecimal, length, 0)
	resp, err = e.signatures.VerifyOfflineSignature(e.ctx, models.VerifyOfflineSignatureRequest{
		ActivationID: d.activationID, Data: "qr-data", Signature: value,
	})
	require.NoError(t, err)
	assert.False(t, resp.SignatureValid)

	d.ctrData = signature.HashChainCounter(mustDecode(t, e.loadActivation(t, d.activationID).CtrData))
	value = d.sign(t, []byte("qr-data"), offlineSecret, signature.PossessionBiometry, signature.FormatDecimal, length, 0)
	resp, err = e.signatures.VerifyOfflineSignature(e.ctx, models.VerifyOfflineSignatureRequest{
		ActivationID: d.activationID, Data: "qr-data", Signature: value, AllowBiometry: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.SignatureValid)
	assert.Equal(t, string(signature.PossessionBiometry), resp.SignatureType)

	records := e.audit.Records()
	assert.Equal(t, "TRUE", records[len(records)-1].AdditionalInfo[models.AdditionalInfoBiometryAllowed])
}

func TestOfflinePayloads(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")

	personalized, err := e.signatures.CreatePersonalizedOfflinePayload(e.ctx, models.OfflinePayloadRequest{ActivationID: d.activationID, Data: "5ff1b1ed"})
	require.NoError(t, err)
	assertOfflinePayload(t, personalized, "5ff1b1ed", keyIndicatorServer, d.serverPublic)

	generic, err := e.signatures.CreateNonPersonalizedOfflinePayload(e.ctx, models.OfflinePayloadRequest{ApplicationID: e.app.ID, Data: "5ff1b1ed"})
	require.NoError(t, err)
	assertOfflinePayload(t, generic, "5ff1b1ed", keyIndicatorMaster, e.masterPublicKey(t))

	_, err = e.signatures.CreatePersonalizedOfflinePayload(e.ctx, models.OfflinePayloadRequest{ActivationID: "missing", Data: "x"})
	assert.Equal(t, CodeActivationNotFound, CodeOf(err))
	_, err = e.signatures.CreateNonPersonalizedOfflinePayload(e.ctx, models.OfflinePayloadRequest{ApplicationID: 9999, Data: "x"})
	assert.Equal(t, CodeNoMasterServerKeyPair, CodeOf(err))
}

func assertOfflinePayload(t *testing.T, p models.OfflinePayloadResponse, data, indicator string, pub *ecdsa.PublicKey) {
	t.Helper()
	prefix := data + "\n" + p.Nonce + "\n" + indicator
	require.True(t, strings.HasPrefix(p.OfflineData, prefix))
	assert.Len(t, mustDecode(t, p.Nonce), offlineNonceSize)

	sig := mustDecode(t, strings.TrimPrefix(p.OfflineData, prefix))
	assert.True(t, utils.VerifyECDSA(pub, []byte(prefix), sig))
}

func TestVerifyECDSASignature(t *testing.T) {
	e := newTestEnv(t)
	d := e.activate(t, "alice")

	sig, err := utils.SignECDSA(d.key, []byte("device data"))
	require.NoError(t, err)

	resp, err := e.signatures.VerifyECDSASignature(e.ctx, models.VerifyECDSASignatureRequest{
		ActivationID: d.activationID,
		Data:         base64.StdEncoding.EncodeToString([]byte("device data")),
		Signature:    base64.StdEncoding.EncodeToString(sig),
	})
	require.NoError(t, err)
	assert.True(t, resp.SignatureValid)

	resp, err = e.signatures.VerifyECDSASignature(e.ctx, models.VerifyECDSASignatureRequest{
		ActivationID: d.activationID,
		Data:         base64.StdEncoding.EncodeToString([]byte("other data")),
		Signature:    base64.StdEncoding.EncodeToString(sig),
	})
	require.NoError(t, err)
	assert.False(t, resp.SignatureValid)
}

func TestSignatureAuditLog(t *testing.T) {
	e := newTestEnv(t)
	e.signatures = NewSignatureService(e.db, e.keys, NewDBAuditSink(e.db), e.notifier, e.cfg.Signature, e.clock.Now)
	d := e.activate(t, "alice")

	require.True(t, e.verifyOnline(t, d, signature.PossessionKnowledge, 0).SignatureValid)
	e.verifyWrong(t, d, signature.PossessionKnowledge)

	records, err := e.signatures.GetSignatureAuditLog(e.ctx, models.SignatureAuditRequest{UserID: "alice"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].Valid)
	assert.Equal(t, models.AuditNoteSignatureDoesNotMatch, records[0].Note)
	assert.True(t, records[1].Valid)
	assert.Equal(t, e.app.ID, records[1].ApplicationID)

	other := int64(9999)
	records, err = e.signatures.GetSignatureAuditLog(e.ctx, models.SignatureAuditRequest{UserID: "alice", ApplicationID: &other})
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = e.signatures.GetSignatureAuditLog(e.ctx, models.SignatureAuditRequest{})
	assert.Equal(t, CodeNoUserID, CodeOf(err))
}

func mustDecode(t *testing.T, value string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)
	return b
}

package services

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/ecies"
	"powerauthserver/identifier"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// activateWithRecovery 복구 코드가 발급되는 활성화를 만들고 평문 코드와 PUK 를 돌려준다
func (e *testEnv) activateWithRecovery(t *testing.T, userID string) (*testDevice, *models.ActivationRecovery) {
	t.Helper()
	initResp, err := e.activations.Init(e.ctx, models.InitActivationRequest{UserID: userID, ApplicationID: e.app.ID})
	require.NoError(t, err)

	device := newTestDevice(t)
	prepared, err := e.activations.Prepare(e.ctx, models.PrepareActivationRequest{
		ActivationCode:   initResp.ActivationCode,
		ApplicationKey:   e.version().ApplicationKey,
		EncryptedRequest: device.layer2(t, e, models.ActivationLayer2Request{ActivationName: "phone"}),
	})
	require.NoError(t, err)
	layer2 := device.completeKeyExchange(t, e, prepared.EncryptedResponse)
	require.NotNil(t, layer2.ActivationRecovery)

	_, err = e.activations.Commit(e.ctx, models.CommitActivationRequest{ActivationID: initResp.ActivationID})
	require.NoError(t, err)
	return device, layer2.ActivationRecovery
}

// activationRequest 서버 공개키와 transport 키로 activation scope 요청을 암호화한다
func (d *testDevice) activationRequest(t *testing.T, e *testEnv, sharedInfo1 ecies.SharedInfo1, body interface{}) models.EncryptedRequest {
	t.Helper()
	plain, err := json.Marshal(body)
	require.NoError(t, err)

	shared, err := utils.SharedSecret(d.key, d.serverPublic)
	require.NoError(t, err)
	transport, err := utils.TransportKey(utils.MasterSecretKey(shared))
	require.NoError(t, err)

	version := e.version()
	d.encryptor = ecies.NewEncryptor(d.serverPublic, sharedInfo1,
		ecies.ActivationSharedInfo2(transport, version.ApplicationSecret), d.protocol)
	c, p, err := d.encryptor.EncryptRequest(plain, ecies.AssociatedData(d.protocol, version.ApplicationKey, d.activationID))
	require.NoError(t, err)
	return encodeRequest(c, p, d.protocol)
}

func (e *testEnv) recoveryActivation(t *testing.T, code, puk string) (*testDevice, models.PrepareActivationResponse, error) {
	t.Helper()
	device := newTestDevice(t)
	resp, err := e.activations.CreateUsingRecoveryCode(e.ctx, models.RecoveryActivationRequest{
		RecoveryCode:     code,
		Puk:              puk,
		ApplicationKey:   e.version().ApplicationKey,
		EncryptedRequest: device.layer2(t, e, models.ActivationLayer2Request{ActivationName: "new phone"}),
	})
	return device, resp, err
}

func (e *testEnv) recoveryCodes(t *testing.T, req models.LookupRecoveryCodesRequest) []models.RecoveryCode {
	t.Helper()
	codes, err := e.recovery.LookupRecoveryCodes(e.ctx, req)
	require.NoError(t, err)
	return codes
}

func wrongPuk(puk string) string {
	if puk == "0000000000" {
		return "1111111111"
	}
	return "0000000000"
}

func TestActivationRecoveryCodeIssuedAndActivatedOnCommit(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)

	device, recovery := e.activateWithRecovery(t, "alice")
	assert.True(t, identifier.ValidateCode(recovery.RecoveryCode))
	assert.True(t, identifier.ValidatePuk(recovery.Puk))

	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: device.activationID})
	require.Len(t, codes, 1)
	assert.Equal(t, models.RecoveryCodeStatusActive, codes[0].Status)
	assert.Equal(t, identifier.MaskRecoveryCode(recovery.RecoveryCode), codes[0].CodeMasked)
	require.Len(t, codes[0].Puks, 1)
	assert.Equal(t, models.RecoveryPukStatusValid, codes[0].Puks[0].Status)
}

func TestRecoveryWithoutConfigIsRejected(t *testing.T) {
	e := newTestEnv(t)
	e.activate(t, "alice")

	_, _, err := e.recoveryActivation(t, "AAAAA-AAAAA-AAAAA-AAAAA", "0123456789")
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))
}

func TestRecoveryPukIsSingleUse(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)
	old, recovery := e.activateWithRecovery(t, "alice")

	device, resp, err := e.recoveryActivation(t, recovery.RecoveryCode, recovery.Puk)
	require.NoError(t, err)
	layer2 := device.completeKeyExchange(t, e, resp.EncryptedResponse)
	require.NotNil(t, layer2.ActivationRecovery)
	assert.NotEqual(t, recovery.RecoveryCode, layer2.ActivationRecovery.RecoveryCode)

	fresh := e.loadActivation(t, layer2.ActivationID)
	assert.Equal(t, models.ActivationStatusPendingCommit, fresh.Status)
	assert.Equal(t, "alice", fresh.UserID)
	assert.Equal(t, models.ActivationStatusRemoved, e.loadActivation(t, old.activationID).Status)

	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: old.activationID})
	require.Len(t, codes, 1)
	assert.Equal(t, models.RecoveryCodeStatusRevoked, codes[0].Status)
	assert.Equal(t, models.RecoveryPukStatusUsed, codes[0].Puks[0].Status)

	_, _, err = e.recoveryActivation(t, recovery.RecoveryCode, recovery.Puk)
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))
}

func TestRecoveryActivationKeepsFlags(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)
	old, recovery := e.activateWithRecovery(t, "alice")
	_, err := e.activations.AddFlags(e.ctx, models.ActivationFlagsRequest{ActivationID: old.activationID, ActivationFlags: []string{"VIP", "FRAUD_CHECK"}})
	require.NoError(t, err)

	device, resp, err := e.recoveryActivation(t, recovery.RecoveryCode, recovery.Puk)
	require.NoError(t, err)
	layer2 := device.completeKeyExchange(t, e, resp.EncryptedResponse)

	flags, err := e.activations.ListFlags(e.ctx, layer2.ActivationID)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP", "FRAUD_CHECK"}, flags.ActivationFlags)

	found, err := e.activations.Lookup(e.ctx, models.ActivationLookupRequest{UserIDs: []string{"alice"}, ActivationFlags: []string{"VIP"}})
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestRecoveryWrongPukBlocksCode(t *testing.T) {
	e := newTestEnv(t)
	e.cfg.Recovery.MaxFailedAttempts = 3
	e.activations = NewActivationService(e.db, e.keys, e.replay, e.notifier, e.cfg, e.clock.Now)
	e.enableRecovery(t)
	old, recovery := e.activateWithRecovery(t, "alice")

	for i := 1; i <= 3; i++ {
		_, _, err := e.recoveryActivation(t, recovery.RecoveryCode, wrongPuk(recovery.Puk))
		require.Error(t, err)
		assert.Equal(t, CodeInvalidRecoveryCode, CodeOf(err))

		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		if i < 3 {
			require.NotNil(t, svcErr.CurrentPukIndex)
			assert.Equal(t, int64(1), *svcErr.CurrentPukIndex)
		} else {
			assert.Nil(t, svcErr.CurrentPukIndex)
		}
	}

	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: old.activationID})
	require.Len(t, codes, 1)
	assert.Equal(t, models.RecoveryCodeStatusBlocked, codes[0].Status)
	assert.Equal(t, int64(3), codes[0].FailedAttempts)
	assert.Equal(t, models.RecoveryPukStatusInvalid, codes[0].Puks[0].Status)

	// 올바른 PUK 도 더 이상 통하지 않는다
	_, _, err := e.recoveryActivation(t, recovery.RecoveryCode, recovery.Puk)
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))
	assert.Equal(t, models.ActivationStatusActive, e.loadActivation(t, old.activationID).Status)
}

func TestRecoveryFailedAttemptsResetOnSuccess(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)
	old, recovery := e.activateWithRecovery(t, "alice")

	_, _, err := e.recoveryActivation(t, recovery.RecoveryCode, wrongPuk(recovery.Puk))
	require.Equal(t, CodeInvalidRecoveryCode, CodeOf(err))
	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: old.activationID})
	assert.Equal(t, int64(1), codes[0].FailedAttempts)

	_, _, err = e.recoveryActivation(t, recovery.RecoveryCode, recovery.Puk)
	require.NoError(t, err)
	codes = e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: old.activationID})
	assert.Equal(t, int64(0), codes[0].FailedAttempts)
}

func TestRemoveActivationRevokesRecoveryCodes(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)
	device, _ := e.activateWithRecovery(t, "alice")

	_, err := e.activations.Remove(e.ctx, models.RemoveActivationRequest{ActivationID: device.activationID, RevokeRecoveryCodes: true})
	require.NoError(t, err)

	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: device.activationID})
	require.Len(t, codes, 1)
	assert.Equal(t, models.RecoveryCodeStatusRevoked, codes[0].Status)
	assert.Equal(t, models.RecoveryPukStatusInvalid, codes[0].Puks[0].Status)
}

func TestRevokeRecoveryCodesLocksEachCode(t *testing.T) {
	e := newTestEnv(t)
	e.enableRecovery(t)
	device, _ := e.activateWithRecovery(t, "alice")

	rec := &lockRecorder{}
	require.NoError(t, runInTx(e.ctx, e.db, func(tx *Tx) error {
		rec.Querier = tx
		return revokeRecoveryCodesForActivation(e.ctx, rec, device.activationID, e.clock.Now())
	}))

	require.Len(t, rec.locked, 1)
	assert.Contains(t, rec.locked[0], "FROM recovery_codes WHERE id = ?")

	codes := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{ActivationID: device.activationID})
	require.Len(t, codes, 1)
	assert.Equal(t, models.RecoveryCodeStatusRevoked, codes[0].Status)
	assert.Equal(t, models.RecoveryPukStatusInvalid, codes[0].Puks[0].Status)
}

func TestPostcardRecoveryCodeLifecycle(t *testing.T) {
	e := newTestEnv(t)
	remote, err := utils.GenerateKeyPair()
	require.NoError(t, err)

	_, err = e.recovery.CreateRecoveryCode(e.ctx, models.CreateRecoveryCodeRequest{ApplicationID: e.app.ID, UserID: "alice", PukCount: 2})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err), "postcards disabled")

	cfg, err := e.recovery.UpdateRecoveryConfig(e.ctx, models.UpdateRecoveryConfigRequest{
		ApplicationID:             e.app.ID,
		ActivationRecoveryEnabled: true,
		RecoveryPostcardEnabled:   true,
		RemotePostcardPublicKey:   base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&remote.PublicKey)),
	})
	require.NoError(t, err)
	require.NotEmpty(t, cfg.PostcardPublicKey)

	created, err := e.recovery.CreateRecoveryCode(e.ctx, models.CreateRecoveryCodeRequest{ApplicationID: e.app.ID, UserID: "alice", PukCount: 2})
	require.NoError(t, err)
	assert.Equal(t, models.RecoveryCodeStatusCreated, created.Status)
	require.Len(t, created.Puks, 2)

	_, err = e.recovery.CreateRecoveryCode(e.ctx, models.CreateRecoveryCodeRequest{ApplicationID: e.app.ID, UserID: "alice", PukCount: 2})
	assert.Equal(t, CodeRecoveryCodeAlreadyExists, CodeOf(err))

	// 인쇄 측은 postcard 공개키와 자신의 개인키로 같은 코드와 PUK 를 얻는다
	postcardRaw, err := base64.StdEncoding.DecodeString(cfg.PostcardPublicKey)
	require.NoError(t, err)
	postcardPub, err := utils.BytesToPublicKey(postcardRaw)
	require.NoError(t, err)
	shared, err := utils.SharedSecret(remote, postcardPub)
	require.NoError(t, err)
	secret := utils.Reduce32To16(shared)
	nonce, err := base64.StdEncoding.DecodeString(created.Nonce)
	require.NoError(t, err)

	derivation, err := identifier.DeriveRecoveryCode(secret, nonce, 1)
	require.NoError(t, err)
	code := derivation.RecoveryCode
	assert.Equal(t, identifier.MaskRecoveryCode(code), created.RecoveryCodeMasked)

	pukBase, err := utils.DeriveSecretKey(utils.DeriveSecretKeyHmac(secret, nonce), 2)
	require.NoError(t, err)
	puk1, err := identifier.DerivePuk(pukBase, created.Puks[0].PukDerivationIndex)
	require.NoError(t, err)

	// CREATED 코드는 확인 전까지 복구에 쓸 수 없다
	_, _, err = e.recoveryActivation(t, code, puk1)
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	device, _ := e.activateWithRecovery(t, "alice")
	confirm := func() models.ConfirmRecoveryCodeLayer2Response {
		resp, err := e.recovery.ConfirmRecoveryCode(e.ctx, models.ConfirmRecoveryCodeRequest{
			ActivationID:   device.activationID,
			ApplicationKey: e.version().ApplicationKey,
			EncryptedRequest: device.activationRequest(t, e, ecies.SharedInfo1ConfirmRecoveryCode,
				models.ConfirmRecoveryCodeLayer2Request{RecoveryCode: code}),
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.UserID)

		data, err := base64.StdEncoding.DecodeString(resp.EncryptedResponse.EncryptedData)
		require.NoError(t, err)
		mac, err := base64.StdEncoding.DecodeString(resp.EncryptedResponse.Mac)
		require.NoError(t, err)
		plain, err := device.encryptor.DecryptResponse(
			ecies.Cryptogram{EncryptedData: data, Mac: mac},
			ecies.Parameters{
				Timestamp:      resp.EncryptedResponse.Timestamp,
				AssociatedData: ecies.AssociatedData(device.protocol, e.version().ApplicationKey, device.activationID),
			},
		)
		require.NoError(t, err)
		var layer2 models.ConfirmRecoveryCodeLayer2Response
		require.NoError(t, json.Unmarshal(plain, &layer2))
		return layer2
	}
	assert.False(t, confirm().AlreadyConfirmed)
	assert.True(t, confirm().AlreadyConfirmed)

	_, _, err = e.recoveryActivation(t, code, puk1)
	require.NoError(t, err)

	postcards := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{UserID: "alice", RecoveryPukStatus: models.RecoveryPukStatusUsed})
	require.Len(t, postcards, 1)
	assert.Equal(t, created.RecoveryCodeID, postcards[0].ID)
	assert.Equal(t, models.RecoveryCodeStatusActive, postcards[0].Status)

	all := e.recoveryCodes(t, models.LookupRecoveryCodesRequest{UserID: "alice"})
	var postcard models.RecoveryCode
	for _, c := range all {
		if c.ID == created.RecoveryCodeID {
			postcard = c
		}
	}
	require.Len(t, postcard.Puks, 2)
	assert.Equal(t, models.RecoveryPukStatusUsed, postcard.Puks[0].Status)
	assert.Equal(t, models.RecoveryPukStatusValid, postcard.Puks[1].Status)

	revoked, err := e.recovery.RevokeRecoveryCodes(e.ctx, models.RevokeRecoveryCodesRequest{RecoveryCodeIDs: []int64{created.RecoveryCodeID}})
	require.NoError(t, err)
	assert.True(t, revoked.Revoked)
	revoked, err = e.recovery.RevokeRecoveryCodes(e.ctx, models.RevokeRecoveryCodesRequest{RecoveryCodeIDs: []int64{created.RecoveryCodeID}})
	require.NoError(t, err)
	assert.False(t, revoked.Revoked)
}

func TestRecoveryConfigDefaults(t *testing.T) {
	e := newTestEnv(t)

	cfg, err := e.recovery.GetRecoveryConfig(e.ctx, e.app.ID)
	require.NoError(t, err)
	assert.False(t, cfg.ActivationRecoveryEnabled)
	assert.False(t, cfg.RecoveryPostcardEnabled)
	assert.Empty(t, cfg.PostcardPublicKey)

	_, err = e.recovery.GetRecoveryConfig(e.ctx, 9999)
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	_, err = e.recovery.UpdateRecoveryConfig(e.ctx, models.UpdateRecoveryConfigRequest{
		ApplicationID:           e.app.ID,
		RemotePostcardPublicKey: "not-a-key",
	})
	assert.Equal(t, CodeInvalidKeyFormat, CodeOf(err))
}

func TestLookupRecoveryCodesRequiresFilter(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.recovery.LookupRecoveryCodes(e.ctx, models.LookupRecoveryCodesRequest{})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	missing := int64(9999)
	_, err = e.recovery.LookupRecoveryCodes(e.ctx, models.LookupRecoveryCodesRequest{ApplicationID: &missing})
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))
}

package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/ecies"
	"powerauthserver/models"
)

// decryptorRequest 암호화된 요청에서 envelope 파라미터 요청을 만든다
func decryptorRequest(appKey, activationID string, req models.EncryptedRequest) models.EciesDecryptorRequest {
	return models.EciesDecryptorRequest{
		ApplicationKey:     appKey,
		ActivationID:       activationID,
		EphemeralPublicKey: req.EphemeralPublicKey,
		Nonce:              req.Nonce,
		Timestamp:          req.Timestamp,
		ProtocolVersion:    req.ProtocolVersion,
	}
}

// openWithDecryptor 응답의 secretKey 와 sharedInfo2 만으로 요청을 복호화한다
func openWithDecryptor(t *testing.T, resp models.EciesDecryptorResponse, req models.EncryptedRequest, associatedData []byte) string {
	t.Helper()
	secret, err := base64.StdEncoding.DecodeString(resp.SecretKey)
	require.NoError(t, err)
	sharedInfo2, err := base64.StdEncoding.DecodeString(resp.SharedInfo2)
	require.NoError(t, err)
	ephemeral, err := base64.StdEncoding.DecodeString(req.EphemeralPublicKey)
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(req.EncryptedData)
	require.NoError(t, err)
	mac, err := base64.StdEncoding.DecodeString(req.Mac)
	require.NoError(t, err)
	nonce, err := decodeBase64(req.Nonce)
	require.NoError(t, err)

	key, err := ecies.EnvelopeKeyFromBytes(secret, ephemeral)
	require.NoError(t, err)
	plain, err := ecies.NewDecryptorFromEnvelope(key, sharedInfo2, req.ProtocolVersion).DecryptRequest(
		ecies.Cryptogram{EphemeralPublicKey: ephemeral, EncryptedData: data, Mac: mac},
		ecies.Parameters{Nonce: nonce, Timestamp: req.Timestamp, AssociatedData: associatedData},
	)
	require.NoError(t, err)
	return string(plain)
}

func TestEciesDecryptorApplicationScope(t *testing.T) {
	e := newTestEnv(t)
	svc := NewEncryptionService(e.db, e.keys, e.replay, e.clock.Now)
	version := e.version()

	for _, protocol := range []string{ecies.Version30, ecies.Version31, ecies.Version32} {
		t.Run(protocol, func(t *testing.T) {
			ad := ecies.AssociatedData(protocol, version.ApplicationKey, "")
			enc := ecies.NewEncryptor(e.masterPublicKey(t), ecies.SharedInfo1ApplicationScopeGeneric,
				ecies.ApplicationSharedInfo2(version.ApplicationSecret), protocol)
			c, p, err := enc.EncryptRequest([]byte(`{"amount":100}`), ad)
			require.NoError(t, err)
			req := encodeRequest(c, p, protocol)

			resp, err := svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, "", req))
			require.NoError(t, err)
			assert.Equal(t, `{"amount":100}`, openWithDecryptor(t, resp, req, ad))
		})
	}
}

func TestEciesDecryptorActivationScope(t *testing.T) {
	e := newTestEnv(t)
	svc := NewEncryptionService(e.db, e.keys, e.replay, e.clock.Now)
	version := e.version()
	device := e.activate(t, "alice")

	req := device.activationRequest(t, e, ecies.SharedInfo1ActivationScopeGeneric, map[string]string{"note": "hello"})
	resp, err := svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, device.activationID, req))
	require.NoError(t, err)
	assert.JSONEq(t, `{"note":"hello"}`,
		openWithDecryptor(t, resp, req, ecies.AssociatedData(req.ProtocolVersion, version.ApplicationKey, device.activationID)))

	_, err = e.activations.Block(e.ctx, models.BlockActivationRequest{ActivationID: device.activationID})
	require.NoError(t, err)
	_, err = svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, device.activationID, req))
	assert.Equal(t, CodeActivationIncorrectState, CodeOf(err))

	_, err = svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, "missing", req))
	assert.Equal(t, CodeActivationNotFound, CodeOf(err))
}

func TestEciesDecryptorRejectsBadRequests(t *testing.T) {
	e := newTestEnv(t)
	svc := NewEncryptionService(e.db, e.keys, e.replay, e.clock.Now)
	version := e.version()

	enc := ecies.NewEncryptor(e.masterPublicKey(t), ecies.SharedInfo1ApplicationScopeGeneric,
		ecies.ApplicationSharedInfo2(version.ApplicationSecret), ecies.Version32)
	c, p, err := enc.EncryptRequest([]byte("x"), ecies.AssociatedData(ecies.Version32, version.ApplicationKey, ""))
	require.NoError(t, err)
	req := encodeRequest(c, p, ecies.Version32)

	_, err = svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, "", req))
	require.NoError(t, err)

	// 같은 nonce 와 timestamp 는 재사용할 수 없다
	_, err = svc.GetEciesDecryptor(e.ctx, decryptorRequest(version.ApplicationKey, "", req))
	assert.Equal(t, CodeInvalidRequest, CodeOf(err))

	tests := []struct {
		name   string
		mutate func(r *models.EciesDecryptorRequest)
	}{
		{"missing application key", func(r *models.EciesDecryptorRequest) { r.ApplicationKey = "" }},
		{"unsupported version", func(r *models.EciesDecryptorRequest) { r.ProtocolVersion = "2.1" }},
		{"3.2 without timestamp", func(r *models.EciesDecryptorRequest) { r.Timestamp = 0 }},
		{"bad ephemeral key", func(r *models.EciesDecryptorRequest) { r.EphemeralPublicKey = "AAAA" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := decryptorRequest(version.ApplicationKey, "", req)
			tt.mutate(&r)
			_, err := svc.GetEciesDecryptor(e.ctx, r)
			assert.Equal(t, CodeDecryptionFailed, CodeOf(err))
		})
	}
}

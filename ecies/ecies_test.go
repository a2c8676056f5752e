package ecies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerauthserver/utils"
)

var versions = []string{Version30, Version31, Version32}

func TestRoundTripAllVersions(t *testing.T) {
	server, err := utils.GenerateKeyPair()
	require.NoError(t, err)
	sharedInfo2 := ApplicationSharedInfo2("app-secret")

	for _, version := range versions {
		t.Run(version, func(t *testing.T) {
			ad := AssociatedData(version, "app-key", "")
			enc := NewEncryptor(&server.PublicKey, SharedInfo1ApplicationScopeGeneric, sharedInfo2, version)
			req, reqParams, err := enc.EncryptRequest([]byte(`{"hello":"world"}`), ad)
			require.NoError(t, err)

			dec := NewDecryptor(server, SharedInfo1ApplicationScopeGeneric, sharedInfo2, version)
			plain, err := dec.DecryptRequest(req, reqParams)
			require.NoError(t, err)
			assert.Equal(t, `{"hello":"world"}`, string(plain))

			resp, respParams, err := dec.EncryptResponse([]byte(`{"ok":true}`), ad)
			require.NoError(t, err)
			out, err := enc.DecryptResponse(resp, respParams)
			require.NoError(t, err)
			assert.Equal(t, `{"ok":true}`, string(out))
		})
	}
}

func TestDecryptFailsGenerically(t *testing.T) {
	server, err := utils.GenerateKeyPair()
	require.NoError(t, err)
	sharedInfo2 := ApplicationSharedInfo2("app-secret")

	enc := NewEncryptor(&server.PublicKey, SharedInfo1ActivationLayer2, sharedInfo2, Version32)
	req, params, err := enc.EncryptRequest([]byte("payload"), AssociatedData(Version32, "k", ""))
	require.NoError(t, err)

	tests := map[string]func() (*Decryptor, Cryptogram, Parameters){
		"tampered mac": func() (*Decryptor, Cryptogram, Parameters) {
			c := req
			c.Mac = append([]byte{}, req.Mac...)
			c.Mac[0] ^= 1
			return NewDecryptor(server, SharedInfo1ActivationLayer2, sharedInfo2, Version32), c, params
		},
		"wrong shared info 1": func() (*Decryptor, Cryptogram, Parameters) {
			return NewDecryptor(server, SharedInfo1ApplicationScopeGeneric, sharedInfo2, Version32), req, params
		},
		"wrong app secret": func() (*Decryptor, Cryptogram, Parameters) {
			return NewDecryptor(server, SharedInfo1ActivationLayer2, ApplicationSharedInfo2("x"), Version32), req, params
		},
		"associated data changed": func() (*Decryptor, Cryptogram, Parameters) {
			p := params
			p.AssociatedData = AssociatedData(Version32, "other", "")
			return NewDecryptor(server, SharedInfo1ActivationLayer2, sharedInfo2, Version32), req, p
		},
		"missing timestamp": func() (*Decryptor, Cryptogram, Parameters) {
			p := params
			p.Timestamp = 0
			return NewDecryptor(server, SharedInfo1ActivationLayer2, sharedInfo2, Version32), req, p
		},
		"bad ephemeral key": func() (*Decryptor, Cryptogram, Parameters) {
			c := req
			c.EphemeralPublicKey = []byte{1, 2, 3}
			return NewDecryptor(server, SharedInfo1ActivationLayer2, sharedInfo2, Version32), c, params
		},
	}

	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			dec, c, p := build()
			_, err := dec.DecryptRequest(c, p)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
		})
	}
}

func TestEnvelopeFromBytesMatchesDerived(t *testing.T) {
	server, err := utils.GenerateKeyPair()
	require.NoError(t, err)
	sharedInfo2 := ApplicationSharedInfo2("secret")

	enc := NewEncryptor(&server.PublicKey, SharedInfo1ApplicationScopeGeneric, sharedInfo2, Version31)
	req, params, err := enc.EncryptRequest([]byte("data"), nil)
	require.NoError(t, err)

	envelope, err := NewDecryptor(server, SharedInfo1ApplicationScopeGeneric, sharedInfo2, Version31).DeriveEnvelope(req.EphemeralPublicKey)
	require.NoError(t, err)

	restored, err := EnvelopeKeyFromBytes(envelope.Bytes(), req.EphemeralPublicKey)
	require.NoError(t, err)

	plain, err := NewDecryptorFromEnvelope(restored, sharedInfo2, Version31).DecryptRequest(req, params)
	require.NoError(t, err)
	assert.Equal(t, "data", string(plain))
}

func TestActivationSharedInfo2DiffersFromApplication(t *testing.T) {
	transport := make([]byte, 16)
	assert.NotEqual(t, ApplicationSharedInfo2("s"), ActivationSharedInfo2(transport, "s"))
	assert.Nil(t, AssociatedData(Version31, "k", "a"))
	assert.NotEmpty(t, AssociatedData(Version32, "k", "a"))
}

func TestValidateParameters(t *testing.T) {
	nonce := make([]byte, 16)
	assert.NoError(t, ValidateParameters(Version30, Parameters{}))
	assert.ErrorIs(t, ValidateParameters(Version31, Parameters{}), ErrInvalidParameters)
	assert.NoError(t, ValidateParameters(Version31, Parameters{Nonce: nonce}))
	assert.ErrorIs(t, ValidateParameters(Version32, Parameters{Nonce: nonce}), ErrInvalidParameters)
	assert.NoError(t, ValidateParameters(Version32, Parameters{Nonce: nonce, Timestamp: 1}))
	assert.ErrorIs(t, ValidateParameters("2.1", Parameters{}), ErrInvalidParameters)
}

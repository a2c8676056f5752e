package utils

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordHashCost = bcrypt.MinCost
}

func TestKeyConversionRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	require.NoError(t, err)

	pubBytes := PublicKeyToBytes(&priv.PublicKey)
	require.Len(t, pubBytes, 33)

	pub, err := BytesToPublicKey(pubBytes)
	require.NoError(t, err)
	assert.Equal(t, 0, pub.X.Cmp(priv.X))
	assert.Equal(t, 0, pub.Y.Cmp(priv.Y))

	restored, err := BytesToPrivateKey(PrivateKeyToBytes(priv))
	require.NoError(t, err)
	assert.Equal(t, 0, restored.X.Cmp(priv.X))
}

func TestBytesToPublicKeyRejectsInvalidPoints(t *testing.T) {
	tests := map[string][]byte{
		"empty":          {},
		"wrong prefix":   append([]byte{0x05}, bytes.Repeat([]byte{1}, 32)...),
		"not on curve":   append([]byte{0x04}, bytes.Repeat([]byte{1}, 64)...),
		"truncated":      {0x02, 0x01},
		"compressed off": append([]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...),
	}
	for name, input := range tests {
		_, err := BytesToPublicKey(input)
		assert.ErrorIs(t, err, ErrInvalidKey, name)
	}
}

func TestSharedSecretIsSymmetric(t *testing.T) {
	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	s1, err := SharedSecret(a, &b.PublicKey)
	require.NoError(t, err)
	s2, err := SharedSecret(b, &a.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.Len(t, MasterSecretKey(s1), 16)
}

func TestECDSASignVerify(t *testing.T) {
	priv, err := GenerateKeyPair()
	require.NoError(t, err)

	sig, err := SignECDSA(priv, []byte("ABCDE-FGHIJ-KLMNO-PQRST"))
	require.NoError(t, err)
	assert.True(t, VerifyECDSA(&priv.PublicKey, []byte("ABCDE-FGHIJ-KLMNO-PQRST"), sig))
	assert.False(t, VerifyECDSA(&priv.PublicKey, []byte("other"), sig))
}

func TestDeriveSecretKeyDistinctIndexes(t *testing.T) {
	master := bytes.Repeat([]byte{7}, 16)
	k1, err := DeriveSecretKey(master, KeyIndexPossession)
	require.NoError(t, err)
	k2, err := DeriveSecretKey(master, KeyIndexKnowledge)
	require.NoError(t, err)
	again, err := DeriveSecretKey(master, KeyIndexPossession)
	require.NoError(t, err)

	assert.Len(t, k1, 16)
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, k1, again)

	_, err = DeriveSecretKey([]byte("short"), 1)
	assert.Error(t, err)
}

func TestKDFX963Length(t *testing.T) {
	out := KDFX963([]byte("secret"), []byte("info"), 48)
	assert.Len(t, out, 48)
	assert.Equal(t, out[:32], KDFX963([]byte("secret"), []byte("info"), 32))
}

func TestReduce32To16(t *testing.T) {
	in, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f0f0e0d0c0b0a09080706050403020100")
	assert.Equal(t, bytes.Repeat([]byte{0x0f}, 16), Reduce32To16(in))
}

func TestAESCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{1}, 16)
	iv := bytes.Repeat([]byte{2}, 16)

	for _, size := range []int{0, 1, 15, 16, 17, 64} {
		plain := bytes.Repeat([]byte{'a'}, size)
		ct, err := EncryptAESCBC(key, iv, plain)
		require.NoError(t, err)
		assert.Equal(t, 0, len(ct)%16)

		out, err := DecryptAESCBC(key, iv, ct)
		require.NoError(t, err)
		assert.Equal(t, plain, out)
	}

	_, err := DecryptAESCBC(key, iv, []byte("not a block"))
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("1234567890")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "1234567890"))
	assert.False(t, CheckPassword(hash, "0987654321"))
}

func TestGenerateID(t *testing.T) {
	id, err := GenerateID("")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	prefixed, err := GenerateID("req")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prefixed, "req-"))
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, exp, err := issuer.GenerateToken("backend", []string{ScopeActivation})
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "backend", claims.Subject)
	assert.True(t, claims.HasScope(ScopeActivation))
	assert.False(t, claims.HasScope(ScopeRecovery))

	_, err = NewTokenIssuer("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestCallbackSignature(t *testing.T) {
	secret := []byte("callback-secret")
	body := []byte(`{"activationId":"a"}`)
	now := time.Now()

	header := SignCallbackPayload(secret, body, now)
	require.NoError(t, VerifyCallbackSignature(secret, header, body, time.Minute, now))
	assert.Error(t, VerifyCallbackSignature(secret, header, []byte("tampered"), time.Minute, now))
	assert.Error(t, VerifyCallbackSignature(secret, header, body, time.Minute, now.Add(2*time.Minute)))
	assert.Error(t, VerifyCallbackSignature(secret, "garbage", body, time.Minute, now))
}

func TestParseDBDate(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)
	parsed, err := ParseDBDate(FormatDateTimeForDB(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	zero, err := ParseDBDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

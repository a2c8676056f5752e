package identifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"powerauthserver/utils"
)

func derivePukBase(t *testing.T, secret, nonce []byte) []byte {
	t.Helper()
	seed := utils.DeriveSecretKeyHmac(secret, nonce)
	key, err := utils.DeriveSecretKey(seed, 2)
	require.NoError(t, err)
	return key
}

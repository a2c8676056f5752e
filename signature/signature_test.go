package signature

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) FactorKeys {
	t.Helper()
	keys, err := DeriveFactorKeys(bytes.Repeat([]byte{0x42}, 16))
	require.NoError(t, err)
	return keys
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("possession_knowledge")
	require.NoError(t, err)
	assert.Equal(t, PossessionKnowledge, typ)

	_, err = ParseType("password")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestFormatForVersion(t *testing.T) {
	tests := map[string]Format{
		"2.0": FormatDecimal,
		"2.1": FormatDecimal,
		"3.0": FormatDecimal,
		"3.1": FormatBase64,
		"3.2": FormatBase64,
	}
	for version, want := range tests {
		got, err := FormatForVersion(version)
		require.NoError(t, err)
		assert.Equal(t, want, got, version)
	}
	_, err := FormatForVersion("4.0")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestComputeDecimalShape(t *testing.T) {
	keys := testKeys(t)
	factorKeys, err := keys.ForType(PossessionKnowledgeBiometry)
	require.NoError(t, err)

	sig, err := Compute([]byte("POST&/pa/v3/test&data"), factorKeys, NumericCounter(0).Bytes(), FormatDecimal, 8)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}-\d{8}-\d{8}$`), sig)

	short, err := Compute([]byte("data"), factorKeys[:1], NumericCounter(0).Bytes(), FormatDecimal, 6)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), short)
}

func TestComputeBase64Length(t *testing.T) {
	keys := testKeys(t)
	factorKeys, err := keys.ForType(PossessionKnowledge)
	require.NoError(t, err)

	sig, err := Compute([]byte("data"), factorKeys, NumericCounter(5).Bytes(), FormatBase64, 0)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestComputeDependsOnCounterAndFactors(t *testing.T) {
	keys := testKeys(t)
	pk, _ := keys.ForType(PossessionKnowledge)
	pb, _ := keys.ForType(PossessionBiometry)

	a, _ := Compute([]byte("d"), pk, NumericCounter(1).Bytes(), FormatBase64, 0)
	b, _ := Compute([]byte("d"), pk, NumericCounter(2).Bytes(), FormatBase64, 0)
	c, _ := Compute([]byte("d"), pb, NumericCounter(1).Bytes(), FormatBase64, 0)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)

	ok, err := Validate([]byte("d"), a, pk, NumericCounter(1).Bytes(), FormatBase64, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCounters(t *testing.T) {
	n := NumericCounter(41)
	assert.Equal(t, NumericCounter(42), n.Next())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 41}, n.Bytes())

	chain, err := InitHashChain()
	require.NoError(t, err)
	next := chain.Next().(HashChainCounter)
	assert.Len(t, next, 16)
	assert.NotEqual(t, chain, next)
	assert.Equal(t, next, chain.Next())

	parsed, err := ParseHashChain(chain.Base64())
	require.NoError(t, err)
	assert.Equal(t, chain, parsed)

	_, err = ParseHashChain("AAAA")
	assert.Error(t, err)

	assert.Equal(t, Advance(chain, 2), next.Next())
}

func TestFindMatchWindowBoundary(t *testing.T) {
	keys := testKeys(t)
	pk, _ := keys.ForType(PossessionKnowledge)
	const lookahead = 5

	for _, start := range []Counter{NumericCounter(10), HashChainCounter(bytes.Repeat([]byte{1}, 16))} {
		for k := 0; k <= lookahead; k++ {
			ctr := Advance(start, k)
			sig, err := Compute([]byte("data"), pk, ctr.Bytes(), FormatBase64, 0)
			require.NoError(t, err)

			match, ok, err := FindMatch(keys, start, Request{
				Data:      []byte("data"),
				Signature: sig,
				Types:     []Type{Possession, PossessionKnowledge},
				Format:    FormatBase64,
				Lookahead: lookahead,
			})
			require.NoError(t, err)

			if k < lookahead {
				require.True(t, ok, "offset %d should verify", k)
				assert.Equal(t, k, match.Offset)
				assert.Equal(t, PossessionKnowledge, match.Type)
				assert.Equal(t, Advance(start, k+1), match.NextCounter())
			} else {
				assert.False(t, ok, "offset %d is outside the window", k)
			}
		}
	}
}

func TestFindMatchUnknownType(t *testing.T) {
	_, _, err := FindMatch(testKeys(t), NumericCounter(0), Request{Types: []Type{"PIN"}, Lookahead: 1})
	assert.ErrorIs(t, err, ErrUnknownType)
}

// Package signature implements the counter based multi-factor MAC used to
// authenticate requests of an activated device.
package signature

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"powerauthserver/utils"
)

// Type 서명에 사용된 팩터 조합
type Type string

const (
	Possession                  Type = "POSSESSION"
	Knowledge                   Type = "KNOWLEDGE"
	Biometry                    Type = "BIOMETRY"
	PossessionKnowledge         Type = "POSSESSION_KNOWLEDGE"
	PossessionBiometry          Type = "POSSESSION_BIOMETRY"
	PossessionKnowledgeBiometry Type = "POSSESSION_KNOWLEDGE_BIOMETRY"
)

// Format 서명 출력 형식
type Format string

const (
	FormatDecimal Format = "DECIMAL"
	FormatBase64  Format = "BASE64"
)

// DefaultDecimalLength 온라인 DECIMAL 서명 컴포넌트 길이
const DefaultDecimalLength = 8

var (
	// ErrUnknownType 지원하지 않는 서명 타입
	ErrUnknownType = errors.New("unknown signature type")
	// ErrUnsupportedVersion 지원하지 않는 서명 버전
	ErrUnsupportedVersion = errors.New("unsupported signature version")
	// ErrInvalidKeys 팩터 키 개수 불일치
	ErrInvalidKeys = errors.New("invalid signature keys")
)

// ParseType 대소문자 무시 파싱
func ParseType(value string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(value)))
	switch t {
	case Possession, Knowledge, Biometry, PossessionKnowledge, PossessionBiometry, PossessionKnowledgeBiometry:
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownType, value)
}

// IsPossessionOnly 1FA possession 서명 여부. 실패 카운트에 포함되지 않고 실패 카운터를 초기화하지 않는다.
func (t Type) IsPossessionOnly() bool {
	return t == Possession
}

// FormatForVersion 프로토콜 버전별 출력 형식
func FormatForVersion(version string) (Format, error) {
	switch version {
	case "2.0", "2.1", "3.0":
		return FormatDecimal, nil
	case "3.1", "3.2":
		return FormatBase64, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
}

// FactorKeys 마스터 비밀키에서 파생된 팩터별 서명 키
type FactorKeys struct {
	Possession []byte
	Knowledge  []byte
	Biometry   []byte
}

// DeriveFactorKeys KDF(master, 1..3)
func DeriveFactorKeys(master []byte) (FactorKeys, error) {
	possession, err := utils.DeriveSecretKey(master, utils.KeyIndexPossession)
	if err != nil {
		return FactorKeys{}, err
	}
	knowledge, err := utils.DeriveSecretKey(master, utils.KeyIndexKnowledge)
	if err != nil {
		return FactorKeys{}, err
	}
	biometry, err := utils.DeriveSecretKey(master, utils.KeyIndexBiometry)
	if err != nil {
		return FactorKeys{}, err
	}
	return FactorKeys{Possession: possession, Knowledge: knowledge, Biometry: biometry}, nil
}

// ForType 서명 타입에 해당하는 키 목록 (순서 고정)
func (k FactorKeys) ForType(t Type) ([][]byte, error) {
	switch t {
	case Possession:
		return [][]byte{k.Possession}, nil
	case Knowledge:
		return [][]byte{k.Knowledge}, nil
	case Biometry:
		return [][]byte{k.Biometry}, nil
	case PossessionKnowledge:
		return [][]byte{k.Possession, k.Knowledge}, nil
	case PossessionBiometry:
		return [][]byte{k.Possession, k.Biometry}, nil
	case PossessionKnowledgeBiometry:
		return [][]byte{k.Possession, k.Knowledge, k.Biometry}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
}

// Compute 서명 값 계산.
// 각 컴포넌트 i 의 키는 HMAC(key_i, ctr) 에 하위 팩터의 HMAC(key_j, ctr) 를 연쇄 적용해 만든다.
func Compute(data []byte, keys [][]byte, ctr []byte, format Format, length int) (string, error) {
	if len(keys) == 0 || len(keys) > 3 {
		return "", ErrInvalidKeys
	}
	if length <= 0 {
		length = DefaultDecimalLength
	}

	components := make([][]byte, 0, len(keys))
	for i := range keys {
		derived := utils.HmacSHA256(keys[i], ctr)
		for j := 0; j < i; j++ {
			inner := utils.HmacSHA256(keys[j+1], ctr)
			derived = utils.HmacSHA256(derived, inner)
		}
		components = append(components, utils.HmacSHA256(derived, data))
	}

	switch format {
	case FormatDecimal:
		parts := make([]string, 0, len(components))
		for _, c := range components {
			parts = append(parts, decimalComponent(c, length))
		}
		return strings.Join(parts, "-"), nil
	case FormatBase64:
		out := make([]byte, 0, 16*len(components))
		for _, c := range components {
			out = append(out, c[len(c)-16:]...)
		}
		return base64.StdEncoding.EncodeToString(out), nil
	}
	return "", fmt.Errorf("unknown signature format: %s", format)
}

func decimalComponent(mac []byte, length int) string {
	n := binary.BigEndian.Uint32(mac[len(mac)-4:]) & 0x7FFFFFFF
	mod := uint32(1)
	for i := 0; i < length; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", length, n%mod)
}

// Validate 상수 시간 비교로 서명 검증
func Validate(data []byte, signature string, keys [][]byte, ctr []byte, format Format, length int) (bool, error) {
	expected, err := Compute(data, keys, ctr, format, length)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// NormalizeData 서명 대상 데이터: data + "&" + secret
func NormalizeData(data []byte, secret string) []byte {
	return utils.ConcatBytes(data, []byte("&"), []byte(secret))
}

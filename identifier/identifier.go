// Package identifier generates and validates activation codes, recovery codes
// and recovery PUKs.
package identifier

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"powerauthserver/utils"
)

const (
	// CodeLength XXXXX-XXXXX-XXXXX-XXXXX
	CodeLength = 23
	// PukLength 10자리 숫자
	PukLength = 10

	codeRandomBytes = 10
)

var (
	encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

	// ErrInvalidCode 코드 형식 또는 체크섬 오류
	ErrInvalidCode = errors.New("invalid code")
)

// GenerateActivationCode 10 랜덤 바이트 + CRC-16 을 Base32 로 인코딩
func GenerateActivationCode() (string, error) {
	b, err := utils.RandomBytes(codeRandomBytes)
	if err != nil {
		return "", err
	}
	return encodeCode(b), nil
}

// GenerateRecoveryCode 활성화 코드와 동일 형식
func GenerateRecoveryCode() (string, error) {
	return GenerateActivationCode()
}

func encodeCode(random []byte) string {
	buf := make([]byte, codeRandomBytes+2)
	copy(buf, random[:codeRandomBytes])
	binary.BigEndian.PutUint16(buf[codeRandomBytes:], crc16(buf[:codeRandomBytes]))

	s := encoding.EncodeToString(buf)
	return s[0:5] + "-" + s[5:10] + "-" + s[10:15] + "-" + s[15:20]
}

// ValidateCode 형식과 체크섬 검증
func ValidateCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i, r := range code {
		if (i+1)%6 == 0 {
			if r != '-' {
				return false
			}
			continue
		}
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", r) {
			return false
		}
	}

	raw, err := encoding.DecodeString(strings.ReplaceAll(code, "-", ""))
	if err != nil || len(raw) != codeRandomBytes+2 {
		return false
	}
	return binary.BigEndian.Uint16(raw[codeRandomBytes:]) == crc16(raw[:codeRandomBytes])
}

// MaskRecoveryCode 마지막 그룹만 노출
func MaskRecoveryCode(code string) string {
	if len(code) != CodeLength {
		return code
	}
	return "XXXXX-XXXXX-XXXXX-" + code[18:]
}

// GeneratePuk 10자리 랜덤 PUK
func GeneratePuk() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10_000_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%010d", n.Int64()), nil
}

// ValidatePuk 숫자 10자리 여부
func ValidatePuk(puk string) bool {
	if len(puk) != PukLength {
		return false
	}
	for _, r := range puk {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RecoveryCodeDerivation 포스트카드 복구 코드 파생 결과
type RecoveryCodeDerivation struct {
	RecoveryCode string
	// Puks PUK 인덱스(1부터) -> PUK
	Puks map[int]string
	// PukDerivationIndexes PUK 인덱스 -> 파생 인덱스
	PukDerivationIndexes map[int]uint64
}

// DeriveRecoveryCode derives a recovery code and pukCount PUKs from the
// postcard shared secret and nonce. The printing side repeats the derivation
// with the same nonce and derivation indexes.
func DeriveRecoveryCode(secret, nonce []byte, pukCount int) (RecoveryCodeDerivation, error) {
	if pukCount < 1 {
		return RecoveryCodeDerivation{}, errors.New("puk count must be positive")
	}

	seed := utils.DeriveSecretKeyHmac(secret, nonce)
	codeKey, err := utils.DeriveSecretKey(seed, 1)
	if err != nil {
		return RecoveryCodeDerivation{}, err
	}
	pukBaseKey, err := utils.DeriveSecretKey(seed, 2)
	if err != nil {
		return RecoveryCodeDerivation{}, err
	}

	result := RecoveryCodeDerivation{
		RecoveryCode:         encodeCode(codeKey),
		Puks:                 make(map[int]string, pukCount),
		PukDerivationIndexes: make(map[int]uint64, pukCount),
	}

	used := make(map[uint64]struct{}, pukCount)
	seen := make(map[string]struct{}, pukCount)
	for i := 1; i <= pukCount; {
		raw, err := utils.RandomBytes(8)
		if err != nil {
			return RecoveryCodeDerivation{}, err
		}
		index := binary.BigEndian.Uint64(raw)
		if _, dup := used[index]; dup {
			continue
		}

		puk, err := DerivePuk(pukBaseKey, index)
		if err != nil {
			return RecoveryCodeDerivation{}, err
		}
		if _, dup := seen[puk]; dup {
			continue
		}

		used[index] = struct{}{}
		seen[puk] = struct{}{}
		result.Puks[i] = puk
		result.PukDerivationIndexes[i] = index
		i++
	}

	return result, nil
}

// DerivePuk PUK = KDF(pukBaseKey, index) 의 마지막 8바이트 mod 10^10
func DerivePuk(pukBaseKey []byte, index uint64) (string, error) {
	key, err := utils.DeriveSecretKey(pukBaseKey, index)
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(key[8:]) % 10_000_000_000
	return fmt.Sprintf("%010d", n), nil
}

// crc16 CRC-16/ARC (poly 0xA001 reflected, init 0)
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

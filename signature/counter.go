package signature

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"powerauthserver/utils"
)

// Counter 서명 카운터 (v2 숫자 카운터 또는 v3 해시 체인)
type Counter interface {
	// Bytes 서명 계산에 사용되는 16바이트 값
	Bytes() []byte
	// Next 다음 카운터 값
	Next() Counter
}

// NumericCounter 프로토콜 v2 정수 카운터
type NumericCounter uint64

// Bytes 마지막 8바이트에 big-endian 정수
func (c NumericCounter) Bytes() []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[8:], uint64(c))
	return out
}

// Next +1
func (c NumericCounter) Next() Counter {
	return c + 1
}

// HashChainCounter 프로토콜 v3 해시 체인 카운터
type HashChainCounter []byte

// Bytes 복사본 반환
func (c HashChainCounter) Bytes() []byte {
	return append([]byte{}, c...)
}

// Next SHA-256 후 앞 16바이트
func (c HashChainCounter) Next() Counter {
	sum := sha256.Sum256(c)
	return HashChainCounter(sum[:16])
}

// Base64 저장용 인코딩
func (c HashChainCounter) Base64() string {
	return base64.StdEncoding.EncodeToString(c)
}

// InitHashChain 새 16바이트 난수 ctrData
func InitHashChain() (HashChainCounter, error) {
	b, err := utils.RandomBytes(16)
	if err != nil {
		return nil, err
	}
	return HashChainCounter(b), nil
}

// ParseHashChain base64 ctrData 파싱
func ParseHashChain(value string) (HashChainCounter, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(b) != 16 {
		return nil, fmt.Errorf("invalid ctr data")
	}
	return HashChainCounter(b), nil
}

// Advance n 단계 진행
func Advance(c Counter, n int) Counter {
	for i := 0; i < n; i++ {
		c = c.Next()
	}
	return c
}

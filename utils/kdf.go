package utils

import (
	"crypto/aes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// Factor key derivation indexes.
const (
	KeyIndexPossession  = 1
	KeyIndexKnowledge   = 2
	KeyIndexBiometry    = 3
	KeyIndexTransport   = 1000
	KeyIndexVault       = 2000
	KeyIndexTransportIV = 3000
	KeyIndexStatusBlob  = 4000
)

// Reduce32To16 32바이트 값을 앞/뒤 절반 XOR 로 16바이트로 축약
func Reduce32To16(b []byte) []byte {
	half := len(b) / 2
	out := make([]byte, half)
	for i := 0; i < half; i++ {
		out[i] = b[i] ^ b[i+half]
	}
	return out
}

// MasterSecretKey ECDH 결과로부터 16바이트 마스터 비밀키 생성
func MasterSecretKey(sharedSecret []byte) []byte {
	return Reduce32To16(sharedSecret)
}

// DeriveSecretKey KDF(key, index): 인덱스를 마지막 8바이트에 담은 블록을 AES-128 로 암호화
func DeriveSecretKey(key []byte, index uint64) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("kdf cipher: %w", err)
	}
	in := make([]byte, aes.BlockSize)
	binary.BigEndian.PutUint64(in[8:], index)
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, in)
	return out, nil
}

// DeriveSecretKeyHmac KDF_INTERNAL: HMAC-SHA256 을 16바이트로 축약
func DeriveSecretKeyHmac(key, data []byte) []byte {
	return Reduce32To16(HmacSHA256(key, data))
}

// HmacSHA256 HMAC-SHA256
func HmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// KDFX963 ANSI X9.63 KDF (SHA-256)
func KDFX963(secret, info []byte, length int) []byte {
	out := make([]byte, 0, length+sha256.Size)
	counter := make([]byte, 4)
	for i := uint32(1); len(out) < length; i++ {
		binary.BigEndian.PutUint32(counter, i)
		h := sha256.New()
		h.Write(secret)
		h.Write(counter)
		h.Write(info)
		out = h.Sum(out)
	}
	return out[:length]
}

// TransportKey 마스터 비밀키에서 전송 키 파생
func TransportKey(master []byte) ([]byte, error) {
	return DeriveSecretKey(master, KeyIndexTransport)
}

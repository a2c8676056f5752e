package utils

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidKey 잘못된 EC 키 형식
var ErrInvalidKey = errors.New("invalid EC key")

// GenerateKeyPair P-256 키쌍 생성
func GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// PublicKeyToBytes 압축 포맷(33바이트) 공개키
func PublicKeyToBytes(pub *ecdsa.PublicKey) []byte {
	return elliptic.MarshalCompressed(elliptic.P256(), pub.X, pub.Y)
}

// PrivateKeyToBytes 32바이트 스칼라
func PrivateKeyToBytes(priv *ecdsa.PrivateKey) []byte {
	return priv.D.FillBytes(make([]byte, 32))
}

// BytesToPublicKey 압축(33) 또는 비압축(65) 포맷을 파싱하고 곡선 위의 점인지 검증
func BytesToPublicKey(b []byte) (*ecdsa.PublicKey, error) {
	curve := elliptic.P256()

	var uncompressed []byte
	switch {
	case len(b) == 33 && (b[0] == 0x02 || b[0] == 0x03):
		x, y := elliptic.UnmarshalCompressed(curve, b)
		if x == nil {
			return nil, ErrInvalidKey
		}
		uncompressed = make([]byte, 65)
		uncompressed[0] = 0x04
		x.FillBytes(uncompressed[1:33])
		y.FillBytes(uncompressed[33:65])
	case len(b) == 65 && b[0] == 0x04:
		uncompressed = b
	default:
		return nil, ErrInvalidKey
	}

	// ecdh 파서가 무한원점/곡선 밖의 점을 거부
	if _, err := ecdh.P256().NewPublicKey(uncompressed); err != nil {
		return nil, ErrInvalidKey
	}

	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(uncompressed[1:33]),
		Y:     new(big.Int).SetBytes(uncompressed[33:65]),
	}, nil
}

// BytesToPrivateKey 32바이트 스칼라를 개인키로 변환
func BytesToPrivateKey(b []byte) (*ecdsa.PrivateKey, error) {
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	ek, err := ecdh.P256().NewPrivateKey(b)
	if err != nil {
		return nil, ErrInvalidKey
	}
	pub := ek.PublicKey().Bytes()

	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(pub[1:33]),
			Y:     new(big.Int).SetBytes(pub[33:65]),
		},
		D: new(big.Int).SetBytes(b),
	}, nil
}

// SharedSecret ECDH 공유 비밀 (x 좌표 32바이트)
func SharedSecret(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	ecdhPriv, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("convert private key: %w", err)
	}
	ecdhPub, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("convert public key: %w", err)
	}
	secret, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	return secret, nil
}

// SignECDSA SHA256withECDSA (ASN.1 DER)
func SignECDSA(priv *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return ecdsa.SignASN1(rand.Reader, priv, digest[:])
}

// VerifyECDSA SHA256withECDSA 검증
func VerifyECDSA(pub *ecdsa.PublicKey, data, signature []byte) bool {
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], signature)
}

package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateID UUID 기반 ID 생성 (prefix 가 있으면 "prefix-uuid")
func GenerateID(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	if prefix != "" {
		return fmt.Sprintf("%s-%s", prefix, id.String()), nil
	}
	return id.String(), nil
}

// RandomBytes 암호학적 난수 바이트 생성
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return b, nil
}

// GenerateApplicationCredential 애플리케이션 키/시크릿용 16바이트 base64 값
func GenerateApplicationCredential() (string, error) {
	b, err := RandomBytes(16)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// PasswordHashCost bcrypt cost (테스트에서 낮춰 사용)
var PasswordHashCost = bcrypt.DefaultCost

// HashPassword OTP/PUK 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword OTP/PUK 검증
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// SHA256 해시
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ConcatBytes 여러 바이트 배열을 하나로 연결
func ConcatBytes(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

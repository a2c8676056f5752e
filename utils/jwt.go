package utils

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// API 토큰 scope
const (
	ScopeActivation = "activation"
	ScopeSignature  = "signature"
	ScopeRecovery   = "recovery"
	ScopeEncryption = "encryption"
	ScopeAdmin      = "admin"
)

// AllScopes 발급 가능한 전체 scope
var AllScopes = []string{ScopeActivation, ScopeSignature, ScopeRecovery, ScopeEncryption, ScopeAdmin}

// Claims API 호출자 토큰 클레임
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// HasScope scope 포함 여부 (admin 은 모든 scope 허용)
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope) || slices.Contains(c.Scopes, ScopeAdmin)
}

// TokenIssuer HS256 API 토큰 발급/검증기
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer 토큰 발급기 생성
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// GenerateToken JWT 토큰 생성
func (t *TokenIssuer) GenerateToken(subject string, scopes []string) (string, int64, error) {
	if len(t.secret) == 0 {
		return "", 0, errors.New("jwt secret is not configured")
	}
	expirationTime := time.Now().Add(t.ttl)

	claims := &Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", 0, err
	}

	return tokenString, expirationTime.Unix(), nil
}

// ValidateToken JWT 토큰 검증
func (t *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, errors.New("jwt secret is not configured")
	}
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

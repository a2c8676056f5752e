package models

import "time"

// TemporaryKey 순방향 보안을 위한 단기 ECIES 키
type TemporaryKey struct {
	ID                   string         `json:"id" db:"id"`
	ApplicationKey       string         `json:"application_key" db:"application_key"`
	ActivationID         string         `json:"activation_id,omitempty" db:"activation_id"`
	PrivateKey           string         `json:"-" db:"private_key_base64"`
	PrivateKeyEncryption EncryptionMode `json:"-" db:"private_key_encryption"`
	PublicKey            string         `json:"public_key" db:"public_key_base64"`
	ExpiresAt            time.Time      `json:"timestamp_expires" db:"timestamp_expires"`
}

// TemporaryKeyRequest 클라이언트가 서명한 JWT
type TemporaryKeyRequest struct {
	JWT string `json:"jwt"`
}

// TemporaryKeyResponse 서버가 서명한 JWT
type TemporaryKeyResponse struct {
	JWT string `json:"jwt"`
}

// RemoveTemporaryKeyRequest 임시 키 삭제 요청
type RemoveTemporaryKeyRequest struct {
	ID string `json:"id"`
}

package models

import "time"

// RecoveryCodeStatus 복구 코드 상태
type RecoveryCodeStatus string

const (
	RecoveryCodeStatusCreated RecoveryCodeStatus = "CREATED"
	RecoveryCodeStatusActive  RecoveryCodeStatus = "ACTIVE"
	RecoveryCodeStatusBlocked RecoveryCodeStatus = "BLOCKED"
	RecoveryCodeStatusRevoked RecoveryCodeStatus = "REVOKED"
)

// RecoveryPukStatus PUK 상태
type RecoveryPukStatus string

const (
	RecoveryPukStatusValid   RecoveryPukStatus = "VALID"
	RecoveryPukStatusUsed    RecoveryPukStatus = "USED"
	RecoveryPukStatusInvalid RecoveryPukStatus = "INVALID"
)

// RecoveryCode 복구 코드. 코드 원문과 PUK 해시는 응답에 노출하지 않는다
type RecoveryCode struct {
	ID                  int64              `json:"recovery_code_id" db:"id"`
	ApplicationID       int64              `json:"application_id" db:"application_id"`
	UserID              string             `json:"user_id" db:"user_id"`
	ActivationID        string             `json:"activation_id,omitempty" db:"activation_id"`
	Code                string             `json:"-" db:"recovery_code"`
	CodeMasked          string             `json:"recovery_code_masked" db:"recovery_code_masked"`
	Status              RecoveryCodeStatus `json:"status" db:"status"`
	FailedAttempts      int64              `json:"failed_attempts" db:"failed_attempts"`
	MaxFailedAttempts   int64              `json:"max_failed_attempts" db:"max_failed_attempts"`
	TimestampCreated    time.Time          `json:"timestamp_created" db:"timestamp_created"`
	TimestampLastUsed   time.Time          `json:"timestamp_last_used,omitempty" db:"timestamp_last_used"`
	TimestampLastChange time.Time          `json:"timestamp_last_change,omitempty" db:"timestamp_last_change"`
	Puks                []RecoveryPuk      `json:"puks"`
}

// FirstValidPuk 인덱스 순서상 첫 VALID PUK
func (c *RecoveryCode) FirstValidPuk() *RecoveryPuk {
	for i := range c.Puks {
		if c.Puks[i].Status == RecoveryPukStatusValid {
			return &c.Puks[i]
		}
	}
	return nil
}

// RecoveryPuk 복구 PUK
type RecoveryPuk struct {
	ID                  int64             `json:"-" db:"id"`
	RecoveryCodeID      int64             `json:"-" db:"recovery_code_id"`
	PukHash             string            `json:"-" db:"puk"`
	PukEncryption       EncryptionMode    `json:"-" db:"puk_encryption"`
	PukIndex            int64             `json:"puk_index" db:"puk_index"`
	Status              RecoveryPukStatus `json:"status" db:"status"`
	TimestampLastChange time.Time         `json:"timestamp_last_change,omitempty" db:"timestamp_last_change"`
}

// RecoveryConfig 애플리케이션별 복구 설정
type RecoveryConfig struct {
	ApplicationID                int64          `json:"application_id" db:"application_id"`
	ActivationRecoveryEnabled    bool           `json:"activation_recovery_enabled" db:"activation_recovery_enabled"`
	RecoveryPostcardEnabled      bool           `json:"recovery_postcard_enabled" db:"recovery_postcard_enabled"`
	AllowMultipleRecoveryCodes   bool           `json:"allow_multiple_recovery_codes" db:"allow_multiple_recovery_codes"`
	PostcardPrivateKey           string         `json:"-" db:"postcard_private_key_base64"`
	PostcardPrivateKeyEncryption EncryptionMode `json:"-" db:"postcard_private_key_encryption"`
	PostcardPublicKey            string         `json:"postcard_public_key,omitempty" db:"postcard_public_key_base64"`
	RemotePostcardPublicKey      string         `json:"remote_postcard_public_key,omitempty" db:"remote_public_key_base64"`
}

// CreateRecoveryCodeRequest 포스트카드 복구 코드 생성 요청
type CreateRecoveryCodeRequest struct {
	ApplicationID int64  `json:"application_id"`
	UserID        string `json:"user_id"`
	PukCount      int    `json:"puk_count"`
}

// RecoveryPukDetail 생성 응답의 PUK 정보 (값 없음)
type RecoveryPukDetail struct {
	PukIndex           int64  `json:"puk_index"`
	PukDerivationIndex uint64 `json:"puk_derivation_index"`
}

// CreateRecoveryCodeResponse 포스트카드 생성 응답
type CreateRecoveryCodeResponse struct {
	Nonce              string              `json:"nonce"`
	UserID             string              `json:"user_id"`
	RecoveryCodeID     int64               `json:"recovery_code_id"`
	RecoveryCodeMasked string              `json:"recovery_code_masked"`
	Status             RecoveryCodeStatus  `json:"status"`
	Puks               []RecoveryPukDetail `json:"puks"`
}

// ConfirmRecoveryCodeRequest 복구 코드 확인 요청 (activation scope ECIES)
type ConfirmRecoveryCodeRequest struct {
	ActivationID   string `json:"activation_id"`
	ApplicationKey string `json:"application_key"`
	EncryptedRequest
}

// ConfirmRecoveryCodeResponse 확인 응답
type ConfirmRecoveryCodeResponse struct {
	ActivationID string `json:"activation_id"`
	UserID       string `json:"user_id"`
	EncryptedResponse
}

// ConfirmRecoveryCodeLayer2Request 복호화된 확인 요청
type ConfirmRecoveryCodeLayer2Request struct {
	RecoveryCode string `json:"recoveryCode"`
}

// ConfirmRecoveryCodeLayer2Response 암호화되는 확인 응답
type ConfirmRecoveryCodeLayer2Response struct {
	AlreadyConfirmed bool `json:"alreadyConfirmed"`
}

// LookupRecoveryCodesRequest 복구 코드 검색 조건
type LookupRecoveryCodesRequest struct {
	UserID             string             `json:"user_id,omitempty"`
	ActivationID       string             `json:"activation_id,omitempty"`
	ApplicationID      *int64             `json:"application_id,omitempty"`
	RecoveryCodeStatus RecoveryCodeStatus `json:"recovery_code_status,omitempty"`
	RecoveryPukStatus  RecoveryPukStatus  `json:"recovery_puk_status,omitempty"`
}

// RevokeRecoveryCodesRequest 폐기 요청
type RevokeRecoveryCodesRequest struct {
	RecoveryCodeIDs []int64 `json:"recovery_code_ids"`
}

// RevokeRecoveryCodesResponse 폐기 응답
type RevokeRecoveryCodesResponse struct {
	Revoked bool `json:"revoked"`
}

// UpdateRecoveryConfigRequest 복구 설정 변경
type UpdateRecoveryConfigRequest struct {
	ApplicationID              int64  `json:"application_id"`
	ActivationRecoveryEnabled  bool   `json:"activation_recovery_enabled"`
	RecoveryPostcardEnabled    bool   `json:"recovery_postcard_enabled"`
	AllowMultipleRecoveryCodes bool   `json:"allow_multiple_recovery_codes"`
	RemotePostcardPublicKey    string `json:"remote_postcard_public_key,omitempty"`
}

package models

import (
	"slices"
	"time"
)

// ActivationStatus 활성화 상태
type ActivationStatus string

// ActivationStatus 상태 상수
const (
	ActivationStatusCreated       ActivationStatus = "CREATED"
	ActivationStatusPendingCommit ActivationStatus = "PENDING_COMMIT"
	ActivationStatusActive        ActivationStatus = "ACTIVE"
	ActivationStatusBlocked       ActivationStatus = "BLOCKED"
	ActivationStatusRemoved       ActivationStatus = "REMOVED"
)

// Byte 상태 blob 에 기록되는 값
func (s ActivationStatus) Byte() byte {
	switch s {
	case ActivationStatusCreated:
		return 1
	case ActivationStatusPendingCommit:
		return 2
	case ActivationStatusActive:
		return 3
	case ActivationStatusBlocked:
		return 4
	case ActivationStatusRemoved:
		return 5
	}
	return 0
}

// OtpValidation OTP 검증 단계
type OtpValidation string

const (
	OtpValidationNone          OtpValidation = "NONE"
	OtpValidationOnKeyExchange OtpValidation = "ON_KEY_EXCHANGE"
	OtpValidationOnCommit      OtpValidation = "ON_COMMIT"
)

// ParseOtpValidation 빈 값은 NONE
func ParseOtpValidation(value string) (OtpValidation, bool) {
	switch OtpValidation(value) {
	case "", OtpValidationNone:
		return OtpValidationNone, true
	case OtpValidationOnKeyExchange:
		return OtpValidationOnKeyExchange, true
	case OtpValidationOnCommit:
		return OtpValidationOnCommit, true
	}
	return "", false
}

// EncryptionMode 서버 개인키/PUK 저장 암호화 모드
type EncryptionMode string

const (
	EncryptionModeNone    EncryptionMode = "NO_ENCRYPTION"
	EncryptionModeAESHMAC EncryptionMode = "AES_HMAC"
)

// Blocked reasons.
const (
	BlockedReasonNotSpecified      = "NOT_SPECIFIED"
	BlockedReasonMaxFailedAttempts = "MAX_FAILED_ATTEMPTS"
)

// Activation 디바이스 활성화 레코드
type Activation struct {
	ActivationID               string           `json:"activation_id" db:"activation_id"`
	ApplicationID              int64            `json:"application_id" db:"application_id"`
	UserID                     string           `json:"user_id" db:"user_id"`
	ActivationName             string           `json:"activation_name" db:"activation_name"`
	ActivationCode             string           `json:"activation_code,omitempty" db:"activation_code"`
	Status                     ActivationStatus `json:"activation_status" db:"activation_status"`
	BlockedReason              string           `json:"blocked_reason,omitempty" db:"blocked_reason"`
	Counter                    int64            `json:"counter" db:"counter"`
	CtrData                    string           `json:"-" db:"ctr_data"`
	DevicePublicKey            string           `json:"-" db:"device_public_key"`
	ServerPublicKey            string           `json:"-" db:"server_public_key"`
	ServerPrivateKey           string           `json:"-" db:"server_private_key"`
	ServerPrivateKeyEncryption EncryptionMode   `json:"-" db:"server_private_key_encryption"`
	MasterKeyPairID            int64            `json:"-" db:"master_keypair_id"`
	FailedAttempts             int64            `json:"failed_attempts" db:"failed_attempts"`
	MaxFailedAttempts          int64            `json:"max_failed_attempts" db:"max_failed_attempts"`
	OtpHash                    string           `json:"-" db:"activation_otp"`
	OtpValidation              OtpValidation    `json:"activation_otp_validation" db:"activation_otp_validation"`
	Platform                   string           `json:"platform" db:"platform"`
	DeviceInfo                 string           `json:"device_info" db:"device_info"`
	Extras                     string           `json:"extras,omitempty" db:"extras"`
	Flags                      []string         `json:"activation_flags" db:"flags"`
	Version                    int              `json:"version" db:"version"`
	CreatedAt                  time.Time        `json:"timestamp_created" db:"timestamp_created"`
	LastUsedAt                 time.Time        `json:"timestamp_last_used" db:"timestamp_last_used"`
	LastChangeAt               time.Time        `json:"timestamp_last_change,omitempty" db:"timestamp_last_change"`
	ExpiresAt                  time.Time        `json:"timestamp_activation_expire" db:"timestamp_activation_expire"`
}

// IsPending CREATED 또는 PENDING_COMMIT
func (a *Activation) IsPending() bool {
	return a.Status == ActivationStatusCreated || a.Status == ActivationStatusPendingCommit
}

// IsExpired 대기 상태에서 만료 시각 경과 여부
func (a *Activation) IsExpired(now time.Time) bool {
	return a.IsPending() && now.After(a.ExpiresAt)
}

// HasFlag 플래그 포함 여부
func (a *Activation) HasFlag(flag string) bool {
	return slices.Contains(a.Flags, flag)
}

// ActivationHistory 상태 변경 이력
type ActivationHistory struct {
	ID               int64            `json:"id" db:"id"`
	ActivationID     string           `json:"activation_id" db:"activation_id"`
	Status           ActivationStatus `json:"activation_status" db:"activation_status"`
	EventReason      string           `json:"event_reason,omitempty" db:"event_reason"`
	ExternalUserID   string           `json:"external_user_id,omitempty" db:"external_user_id"`
	TimestampCreated time.Time        `json:"timestamp_created" db:"timestamp_created"`
}

// History event reasons.
const (
	HistoryReasonOtpUpdated = "OTP_UPDATED"
	HistoryReasonRecovery   = "ACTIVATION_RECOVERY"
)

// InitActivationRequest 활성화 초기화 요청
type InitActivationRequest struct {
	UserID              string     `json:"user_id"`
	ApplicationID       int64      `json:"application_id"`
	MaxFailureCount     *int64     `json:"max_failure_count,omitempty"`
	TimestampExpiration *time.Time `json:"timestamp_activation_expire,omitempty"`
	ActivationOtp       string     `json:"activation_otp,omitempty"`
	OtpValidation       string     `json:"activation_otp_validation,omitempty"`
}

// InitActivationResponse 활성화 초기화 응답
type InitActivationResponse struct {
	ActivationID        string `json:"activation_id"`
	ActivationCode      string `json:"activation_code"`
	ActivationSignature string `json:"activation_signature"`
	UserID              string `json:"user_id"`
	ApplicationID       int64  `json:"application_id"`
}

// PrepareActivationRequest 키 교환 요청 (ECIES 암호화된 layer 2)
type PrepareActivationRequest struct {
	ActivationCode string `json:"activation_code"`
	ApplicationKey string `json:"application_key"`
	EncryptedRequest
}

// PrepareActivationResponse 키 교환 응답
type PrepareActivationResponse struct {
	ActivationID     string           `json:"activation_id"`
	UserID           string           `json:"user_id"`
	ApplicationID    int64            `json:"application_id"`
	ActivationStatus ActivationStatus `json:"activation_status"`
	EncryptedResponse
}

// CreateActivationRequest 초기화와 키 교환을 한 번에 수행
type CreateActivationRequest struct {
	UserID              string     `json:"user_id"`
	ApplicationKey      string     `json:"application_key"`
	MaxFailureCount     *int64     `json:"max_failure_count,omitempty"`
	TimestampExpiration *time.Time `json:"timestamp_activation_expire,omitempty"`
	ActivationOtp       string     `json:"activation_otp,omitempty"`
	EncryptedRequest
}

// CreateActivationResponse 생성 응답
type CreateActivationResponse = PrepareActivationResponse

// ActivationLayer2Request 복호화된 키 교환 요청 본문
type ActivationLayer2Request struct {
	DevicePublicKey string `json:"devicePublicKey"`
	ActivationName  string `json:"activationName"`
	Extras          string `json:"extras,omitempty"`
	Platform        string `json:"platform,omitempty"`
	DeviceInfo      string `json:"deviceInfo,omitempty"`
	ActivationOtp   string `json:"activationOtp,omitempty"`
}

// ActivationLayer2Response 암호화되는 키 교환 응답 본문
type ActivationLayer2Response struct {
	ActivationID       string              `json:"activationId"`
	CtrData            string              `json:"ctrData"`
	ServerPublicKey    string              `json:"serverPublicKey"`
	ActivationRecovery *ActivationRecovery `json:"activationRecovery,omitempty"`
}

// ActivationRecovery 활성화에 연결된 복구 코드 (평문 1회 전달)
type ActivationRecovery struct {
	RecoveryCode string `json:"recoveryCode"`
	Puk          string `json:"puk"`
}

// CommitActivationRequest 커밋 요청
type CommitActivationRequest struct {
	ActivationID   string `json:"activation_id"`
	ActivationOtp  string `json:"activation_otp,omitempty"`
	ExternalUserID string `json:"external_user_id,omitempty"`
}

// CommitActivationResponse 커밋 응답
type CommitActivationResponse struct {
	ActivationID string `json:"activation_id"`
	Activated    bool   `json:"activated"`
}

// UpdateActivationOtpRequest OTP 갱신 요청
type UpdateActivationOtpRequest struct {
	ActivationID   string `json:"activation_id"`
	ActivationOtp  string `json:"activation_otp"`
	ExternalUserID string `json:"external_user_id,omitempty"`
}

// BlockActivationRequest 차단 요청
type BlockActivationRequest struct {
	ActivationID   string `json:"activation_id"`
	Reason         string `json:"reason,omitempty"`
	ExternalUserID string `json:"external_user_id,omitempty"`
}

// RemoveActivationRequest 삭제 요청
type RemoveActivationRequest struct {
	ActivationID        string `json:"activation_id"`
	ExternalUserID      string `json:"external_user_id,omitempty"`
	RevokeRecoveryCodes bool   `json:"revoke_recovery_codes"`
}

// ActivationStatusChangeResponse 차단/해제/삭제 응답
type ActivationStatusChangeResponse struct {
	ActivationID     string           `json:"activation_id"`
	ActivationStatus ActivationStatus `json:"activation_status"`
	BlockedReason    string           `json:"blocked_reason,omitempty"`
}

// ActivationStatusResponse 상태 조회 응답
type ActivationStatusResponse struct {
	ActivationID               string           `json:"activation_id"`
	ActivationStatus           ActivationStatus `json:"activation_status"`
	ActivationOtpValidation    OtpValidation    `json:"activation_otp_validation"`
	BlockedReason              string           `json:"blocked_reason,omitempty"`
	ActivationName             string           `json:"activation_name,omitempty"`
	UserID                     string           `json:"user_id"`
	ApplicationID              int64            `json:"application_id"`
	Extras                     string           `json:"extras,omitempty"`
	Platform                   string           `json:"platform,omitempty"`
	DeviceInfo                 string           `json:"device_info,omitempty"`
	ActivationFlags            []string         `json:"activation_flags"`
	TimestampCreated           time.Time        `json:"timestamp_created"`
	TimestampLastUsed          time.Time        `json:"timestamp_last_used"`
	TimestampLastChange        time.Time        `json:"timestamp_last_change"`
	EncryptedStatusBlob        string           `json:"encrypted_status_blob"`
	EncryptedStatusBlobNonce   string           `json:"encrypted_status_blob_nonce,omitempty"`
	ActivationCode             string           `json:"activation_code,omitempty"`
	ActivationSignature        string           `json:"activation_signature,omitempty"`
	DevicePublicKeyFingerprint string           `json:"device_public_key_fingerprint,omitempty"`
	Version                    int              `json:"version"`
}

// ActivationLookupRequest 활성화 검색 조건
type ActivationLookupRequest struct {
	UserIDs                []string          `json:"user_ids"`
	ApplicationIDs         []int64           `json:"application_ids,omitempty"`
	TimestampLastUsedAfter *time.Time        `json:"timestamp_last_used_after,omitempty"`
	ActivationStatus       *ActivationStatus `json:"activation_status,omitempty"`
	ActivationFlags        []string          `json:"activation_flags,omitempty"`
}

// ActivationFlagsRequest 플래그 추가/삭제 요청
type ActivationFlagsRequest struct {
	ActivationID    string   `json:"activation_id"`
	ActivationFlags []string `json:"activation_flags"`
}

// ActivationFlagsResponse 플래그 목록
type ActivationFlagsResponse struct {
	ActivationID    string   `json:"activation_id"`
	ActivationFlags []string `json:"activation_flags"`
}

// RecoveryActivationRequest 복구 코드로 활성화 생성
type RecoveryActivationRequest struct {
	RecoveryCode    string `json:"recovery_code"`
	Puk             string `json:"puk"`
	ApplicationKey  string `json:"application_key"`
	MaxFailureCount *int64 `json:"max_failure_count,omitempty"`
	ActivationOtp   string `json:"activation_otp,omitempty"`
	EncryptedRequest
}

// ActivationStatusRequest 상태 조회 요청. challenge 가 있으면 상태 블롭에 nonce 를 섞는다
type ActivationStatusRequest struct {
	ActivationID string `json:"activation_id"`
	Challenge    string `json:"challenge,omitempty"`
}

// UnblockActivationRequest 차단 해제 요청
type UnblockActivationRequest struct {
	ActivationID   string `json:"activation_id"`
	ExternalUserID string `json:"external_user_id,omitempty"`
}

// ListActivationsRequest 사용자 활성화 목록 요청
type ListActivationsRequest struct {
	UserID        string `json:"user_id"`
	ApplicationID *int64 `json:"application_id,omitempty"`
}

// ActivationHistoryRequest 이력 조회 요청 (양 끝 포함)
type ActivationHistoryRequest struct {
	ActivationID  string    `json:"activation_id"`
	TimestampFrom time.Time `json:"timestamp_from"`
	TimestampTo   time.Time `json:"timestamp_to"`
}

// ActivationIDRequest 활성화 ID 만 받는 요청
type ActivationIDRequest struct {
	ActivationID string `json:"activation_id"`
}

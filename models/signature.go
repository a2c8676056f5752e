package models

import "time"

// Signature audit notes.
const (
	AuditNoteSignatureOK             = "signature_ok"
	AuditNoteSignatureDoesNotMatch   = "signature_does_not_match"
	AuditNoteInvalidState            = "activation_invalid_state"
	AuditNoteInvalidStateCtrMismatch = "activation_invalid_state_ctr_mismatch"
	AuditNoteInvalidApplication      = "activation_invalid_application"
	AdditionalInfoBlockedReason      = "BLOCKED_REASON"
	AdditionalInfoBiometryAllowed    = "BIOMETRY_ALLOWED"
)

// SignatureAudit 서명 검증 시도 1건
type SignatureAudit struct {
	ID                int64             `json:"id" db:"id"`
	ActivationID      string            `json:"activation_id" db:"activation_id"`
	ApplicationID     int64             `json:"application_id" db:"application_id"`
	UserID            string            `json:"user_id" db:"user_id"`
	ActivationCounter int64             `json:"activation_counter" db:"activation_counter"`
	ActivationCtrData string            `json:"activation_ctr_data,omitempty" db:"activation_ctr_data"`
	ActivationStatus  ActivationStatus  `json:"activation_status" db:"activation_status"`
	AdditionalInfo    map[string]string `json:"additional_info,omitempty" db:"additional_info"`
	DataBase64        string            `json:"data_base64" db:"data_base64"`
	SignatureType     string            `json:"signature_type" db:"signature_type"`
	Signature         string            `json:"signature" db:"signature"`
	Valid             bool              `json:"valid" db:"valid"`
	Note              string            `json:"note" db:"note"`
	Version           int               `json:"version" db:"version"`
	SignatureVersion  string            `json:"signature_version,omitempty" db:"signature_version"`
	TimestampCreated  time.Time         `json:"timestamp_created" db:"timestamp_created"`
}

// VerifySignatureRequest 온라인 서명 검증 요청
type VerifySignatureRequest struct {
	ActivationID           string            `json:"activation_id"`
	ApplicationKey         string            `json:"application_key"`
	Data                   string            `json:"data"`
	Signature              string            `json:"signature"`
	SignatureType          string            `json:"signature_type"`
	SignatureVersion       string            `json:"signature_version"`
	ForcedSignatureVersion int               `json:"forced_signature_version,omitempty"`
	AdditionalInfo         map[string]string `json:"additional_info,omitempty"`
}

// VerifyOfflineSignatureRequest 오프라인 서명 검증 요청
type VerifyOfflineSignatureRequest struct {
	ActivationID   string            `json:"activation_id"`
	Data           string            `json:"data"`
	Signature      string            `json:"signature"`
	AllowBiometry  bool              `json:"allow_biometry"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty"`
}

// VerifySignatureResponse 서명 검증 결과
type VerifySignatureResponse struct {
	SignatureValid    bool             `json:"signature_valid"`
	ActivationID      string           `json:"activation_id"`
	ActivationStatus  ActivationStatus `json:"activation_status"`
	BlockedReason     string           `json:"blocked_reason,omitempty"`
	UserID            string           `json:"user_id,omitempty"`
	ApplicationID     int64            `json:"application_id,omitempty"`
	ApplicationRoles  []string         `json:"application_roles"`
	ActivationFlags   []string         `json:"activation_flags"`
	RemainingAttempts int64            `json:"remaining_attempts"`
	SignatureType     string           `json:"signature_type,omitempty"`
}

// OfflinePayloadRequest 오프라인 서명 QR 페이로드 생성 요청
type OfflinePayloadRequest struct {
	ActivationID  string `json:"activation_id,omitempty"`
	ApplicationID int64  `json:"application_id,omitempty"`
	Data          string `json:"data"`
}

// OfflinePayloadResponse QR 코드 데이터와 nonce
type OfflinePayloadResponse struct {
	OfflineData string `json:"offline_data"`
	Nonce       string `json:"nonce"`
}

// VerifyECDSASignatureRequest 디바이스 ECDSA 서명 검증 요청
type VerifyECDSASignatureRequest struct {
	ActivationID string `json:"activation_id"`
	Data         string `json:"data"`
	Signature    string `json:"signature"`
}

// VerifyECDSASignatureResponse 검증 결과
type VerifyECDSASignatureResponse struct {
	SignatureValid bool `json:"signature_valid"`
}

// SignatureAuditRequest 감사 로그 조회 조건
type SignatureAuditRequest struct {
	UserID        string     `json:"user_id"`
	ApplicationID *int64     `json:"application_id,omitempty"`
	From          *time.Time `json:"timestamp_from,omitempty"`
	To            *time.Time `json:"timestamp_to,omitempty"`
}

package models

// EncryptedRequest ECIES 요청 필드 (모든 바이너리 값은 base64)
type EncryptedRequest struct {
	EphemeralPublicKey string `json:"ephemeral_public_key"`
	EncryptedData      string `json:"encrypted_data"`
	Mac                string `json:"mac"`
	Nonce              string `json:"nonce,omitempty"`
	Timestamp          int64  `json:"timestamp,omitempty"`
	ProtocolVersion    string `json:"protocol_version"`
	TemporaryKeyID     string `json:"temporary_key_id,omitempty"`
}

// EncryptedResponse ECIES 응답 필드
type EncryptedResponse struct {
	EncryptedData string `json:"encrypted_data"`
	Mac           string `json:"mac"`
	Nonce         string `json:"nonce,omitempty"`
	Timestamp     int64  `json:"timestamp,omitempty"`
}

// EciesDecryptorRequest 외부 서비스용 ECIES 복호화 파라미터 요청
type EciesDecryptorRequest struct {
	ApplicationKey     string `json:"application_key"`
	ActivationID       string `json:"activation_id,omitempty"`
	EphemeralPublicKey string `json:"ephemeral_public_key"`
	Nonce              string `json:"nonce,omitempty"`
	Timestamp          int64  `json:"timestamp,omitempty"`
	ProtocolVersion    string `json:"protocol_version"`
	TemporaryKeyID     string `json:"temporary_key_id,omitempty"`
}

// EciesDecryptorResponse envelope 키와 sharedInfo2
type EciesDecryptorResponse struct {
	SecretKey   string `json:"secret_key"`
	SharedInfo2 string `json:"shared_info2"`
}

// UniqueValueType 재전송 방지 값 범위
type UniqueValueType string

const (
	UniqueValueApplicationScope UniqueValueType = "ECIES_APPLICATION_SCOPE"
	UniqueValueActivationScope  UniqueValueType = "ECIES_ACTIVATION_SCOPE"
)

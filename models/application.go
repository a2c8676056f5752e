package models

import "time"

// Application 애플리케이션
type Application struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Roles     []string  `json:"roles" db:"roles"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ApplicationVersion 애플리케이션 버전 (키/시크릿 쌍)
type ApplicationVersion struct {
	ID                int64  `json:"id" db:"id"`
	ApplicationID     int64  `json:"application_id" db:"application_id"`
	Name              string `json:"name" db:"name"`
	ApplicationKey    string `json:"application_key" db:"application_key"`
	ApplicationSecret string `json:"application_secret" db:"application_secret"`
	Supported         bool   `json:"supported" db:"supported"`
}

// MasterKeyPair 애플리케이션 마스터 키쌍
type MasterKeyPair struct {
	ID            int64     `json:"id" db:"id"`
	ApplicationID int64     `json:"application_id" db:"application_id"`
	Name          string    `json:"name" db:"name"`
	PrivateKey    string    `json:"-" db:"master_key_private_base64"`
	PublicKey     string    `json:"master_public_key" db:"master_key_public_base64"`
	CreatedAt     time.Time `json:"created_at" db:"timestamp_created"`
}

// CallbackURL 상태 변경 알림 대상
type CallbackURL struct {
	ID            string `json:"id" db:"id"`
	ApplicationID int64  `json:"application_id" db:"application_id"`
	Name          string `json:"name" db:"name"`
	URL           string `json:"callback_url" db:"callback_url"`
}

// ApplicationDetail 애플리케이션 상세
type ApplicationDetail struct {
	Application
	MasterPublicKey string               `json:"master_public_key"`
	Versions        []ApplicationVersion `json:"versions"`
}

// CreateApplicationRequest 애플리케이션 생성 요청
type CreateApplicationRequest struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`
}

// CreateCallbackURLRequest 콜백 등록 요청
type CreateCallbackURLRequest struct {
	ApplicationID int64  `json:"application_id"`
	Name          string `json:"name"`
	URL           string `json:"callback_url"`
}

// ActivationChangeEvent 콜백 본문
type ActivationChangeEvent struct {
	ActivationID     string           `json:"activationId"`
	UserID           string           `json:"userId"`
	ApplicationID    int64            `json:"applicationId"`
	ActivationStatus ActivationStatus `json:"activationStatus"`
	BlockedReason    string           `json:"blockedReason,omitempty"`
	ActivationFlags  []string         `json:"activationFlags"`
	Timestamp        time.Time        `json:"timestamp"`
}

// CreateApplicationVersionRequest 버전 추가 요청
type CreateApplicationVersionRequest struct {
	ApplicationID int64  `json:"application_id"`
	Name          string `json:"name"`
}

// ApplicationVersionSupportRequest 버전 지원 여부 변경
type ApplicationVersionSupportRequest struct {
	VersionID int64 `json:"version_id"`
	Supported bool  `json:"supported"`
}

// ApplicationIDRequest 애플리케이션 ID 만 받는 요청
type ApplicationIDRequest struct {
	ApplicationID int64 `json:"application_id"`
}

// RemoveCallbackURLRequest 콜백 삭제 요청
type RemoveCallbackURLRequest struct {
	ID string `json:"id"`
}

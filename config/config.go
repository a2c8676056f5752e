// Package config handles configuration loading and validation for the server.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration time.Duration 래퍼 ("5m", "1h30m" 형식의 문자열 지원)
type Duration struct {
	time.Duration
}

// UnmarshalText 문자열을 Duration 으로 변환
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText Duration 을 문자열로 변환
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the root server configuration.
type Config struct {
	Server       ServerConfig       `toml:"server" json:"server" yaml:"server"`
	Database     DatabaseConfig     `toml:"database" json:"database" yaml:"database"`
	Log          LogConfig          `toml:"log" json:"log" yaml:"log"`
	Auth         AuthConfig         `toml:"auth" json:"auth" yaml:"auth"`
	Activation   ActivationConfig   `toml:"activation" json:"activation" yaml:"activation"`
	Signature    SignatureConfig    `toml:"signature" json:"signature" yaml:"signature"`
	Crypto       CryptoConfig       `toml:"crypto" json:"crypto" yaml:"crypto"`
	Replay       ReplayConfig       `toml:"replay" json:"replay" yaml:"replay"`
	TemporaryKey TemporaryKeyConfig `toml:"temporary_key" json:"temporary_key" yaml:"temporary_key"`
	Recovery     RecoveryConfig     `toml:"recovery" json:"recovery" yaml:"recovery"`
	Callback     CallbackConfig     `toml:"callback" json:"callback" yaml:"callback"`
	Scheduler    SchedulerConfig    `toml:"scheduler" json:"scheduler" yaml:"scheduler"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Addr         string   `toml:"addr" json:"addr" yaml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout" json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  Duration `toml:"idle_timeout" json:"idle_timeout" yaml:"idle_timeout"`
	Locale       string   `toml:"locale" json:"locale" yaml:"locale"`
}

// DatabaseConfig 데이터베이스 설정
// Driver: "sqlite" 또는 "mysql"
type DatabaseConfig struct {
	Driver string `toml:"driver" json:"driver" yaml:"driver"`
	DSN    string `toml:"dsn" json:"dsn" yaml:"dsn"`
}

// LogConfig 로거 설정
type LogConfig struct {
	Level      string `toml:"level" json:"level" yaml:"level"`
	Dir        string `toml:"dir" json:"dir" yaml:"dir"`
	MaxSizeMB  int64  `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days" yaml:"max_age_days"`
	Color      bool   `toml:"color" json:"color" yaml:"color"`
}

// AuthConfig API 토큰 설정
type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret" json:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl" json:"token_ttl" yaml:"token_ttl"`
	Disabled  bool     `toml:"disabled" json:"disabled" yaml:"disabled"`
}

// ActivationConfig 활성화 수명주기 설정
type ActivationConfig struct {
	ValidityBeforeActive   Duration `toml:"validity_before_active" json:"validity_before_active" yaml:"validity_before_active"`
	MaxFailedAttempts      int64    `toml:"max_failed_attempts" json:"max_failed_attempts" yaml:"max_failed_attempts"`
	GenerateIDIterations   int      `toml:"generate_id_iterations" json:"generate_id_iterations" yaml:"generate_id_iterations"`
	GenerateCodeIterations int      `toml:"generate_code_iterations" json:"generate_code_iterations" yaml:"generate_code_iterations"`
	ExpiryLookBack         Duration `toml:"expiry_look_back" json:"expiry_look_back" yaml:"expiry_look_back"`
}

// SignatureConfig 서명 검증 설정
type SignatureConfig struct {
	Lookahead     int `toml:"lookahead" json:"lookahead" yaml:"lookahead"`
	OfflineLength int `toml:"offline_length" json:"offline_length" yaml:"offline_length"`
}

// CryptoConfig 저장 데이터 암호화 설정
type CryptoConfig struct {
	// MasterDBEncryptionKey base64 인코딩된 16바이트 키. 비어 있으면 서버 개인키를 평문으로 저장
	MasterDBEncryptionKey string `toml:"master_db_encryption_key" json:"master_db_encryption_key" yaml:"master_db_encryption_key"`
}

// ReplayConfig 재전송 방지 설정
type ReplayConfig struct {
	RequestExpiration Duration `toml:"request_expiration" json:"request_expiration" yaml:"request_expiration"`
	MaxClockSkew      Duration `toml:"max_clock_skew" json:"max_clock_skew" yaml:"max_clock_skew"`
}

// TemporaryKeyConfig 임시 키 설정
type TemporaryKeyConfig struct {
	Validity Duration `toml:"validity" json:"validity" yaml:"validity"`
}

// RecoveryConfig 복구 코드 설정
type RecoveryConfig struct {
	MaxFailedAttempts   int64 `toml:"max_failed_attempts" json:"max_failed_attempts" yaml:"max_failed_attempts"`
	GenerateIterations  int   `toml:"generate_iterations" json:"generate_iterations" yaml:"generate_iterations"`
	MaxPostcardPukCount int   `toml:"max_postcard_puk_count" json:"max_postcard_puk_count" yaml:"max_postcard_puk_count"`
}

// CallbackConfig 콜백 알림 설정
type CallbackConfig struct {
	Secret       string   `toml:"secret" json:"secret" yaml:"secret"`
	RetryMax     int      `toml:"retry_max" json:"retry_max" yaml:"retry_max"`
	RetryWaitMin Duration `toml:"retry_wait_min" json:"retry_wait_min" yaml:"retry_wait_min"`
	RetryWaitMax Duration `toml:"retry_wait_max" json:"retry_wait_max" yaml:"retry_wait_max"`
	Timeout      Duration `toml:"timeout" json:"timeout" yaml:"timeout"`
}

// SchedulerConfig cron 스케줄 설정
type SchedulerConfig struct {
	Enabled             bool     `toml:"enabled" json:"enabled" yaml:"enabled"`
	ExpireActivations   string   `toml:"expire_activations" json:"expire_activations" yaml:"expire_activations"`
	ExpireTemporaryKeys string   `toml:"expire_temporary_keys" json:"expire_temporary_keys" yaml:"expire_temporary_keys"`
	ExpireUniqueValues  string   `toml:"expire_unique_values" json:"expire_unique_values" yaml:"expire_unique_values"`
	LockAtMostFor       Duration `toml:"lock_at_most_for" json:"lock_at_most_for" yaml:"lock_at_most_for"`
	NodeName            string   `toml:"node_name" json:"node_name" yaml:"node_name"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	hostname, _ := os.Hostname()
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{15 * time.Second},
			IdleTimeout:  Duration{60 * time.Second},
			Locale:       "en",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./powerauth.db",
		},
		Log: LogConfig{
			Level:      "info",
			Dir:        "./logs",
			MaxSizeMB:  10,
			MaxAgeDays: 7,
			Color:      true,
		},
		Auth: AuthConfig{
			TokenTTL: Duration{24 * time.Hour},
		},
		Activation: ActivationConfig{
			ValidityBeforeActive:   Duration{5 * time.Minute},
			MaxFailedAttempts:      5,
			GenerateIDIterations:   10,
			GenerateCodeIterations: 10,
			ExpiryLookBack:         Duration{7 * 24 * time.Hour},
		},
		Signature: SignatureConfig{
			Lookahead:     20,
			OfflineLength: 8,
		},
		Replay: ReplayConfig{
			RequestExpiration: Duration{60 * time.Second},
			MaxClockSkew:      Duration{5 * time.Second},
		},
		TemporaryKey: TemporaryKeyConfig{
			Validity: Duration{5 * time.Minute},
		},
		Recovery: RecoveryConfig{
			MaxFailedAttempts:   10,
			GenerateIterations:  10,
			MaxPostcardPukCount: 100,
		},
		Callback: CallbackConfig{
			RetryMax:     3,
			RetryWaitMin: Duration{2 * time.Second},
			RetryWaitMax: Duration{5 * time.Second},
			Timeout:      Duration{10 * time.Second},
		},
		Scheduler: SchedulerConfig{
			Enabled:             true,
			ExpireActivations:   "@every 1m",
			ExpireTemporaryKeys: "@every 1m",
			ExpireUniqueValues:  "@every 1m",
			LockAtMostFor:       Duration{5 * time.Minute},
			NodeName:            hostname,
		},
	}
}

// ApplyEnvOverrides overrides file values with POWERAUTH_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("POWERAUTH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("POWERAUTH_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("POWERAUTH_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("POWERAUTH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("POWERAUTH_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("POWERAUTH_MASTER_DB_ENCRYPTION_KEY"); v != "" {
		c.Crypto.MasterDBEncryptionKey = v
	}
	if v := os.Getenv("POWERAUTH_CALLBACK_SECRET"); v != "" {
		c.Callback.Secret = v
	}
	if v := os.Getenv("POWERAUTH_SIGNATURE_LOOKAHEAD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Signature.Lookahead = n
		}
	}
	if v := os.Getenv("POWERAUTH_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Scheduler.Enabled = b
		}
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Activation.MaxFailedAttempts <= 0 {
		errs = append(errs, errors.New("activation.max_failed_attempts must be positive"))
	}
	if c.Activation.GenerateIDIterations <= 0 || c.Activation.GenerateCodeIterations <= 0 {
		errs = append(errs, errors.New("activation generate iterations must be positive"))
	}
	if c.Signature.Lookahead <= 0 {
		errs = append(errs, errors.New("signature.lookahead must be positive"))
	}
	if c.Signature.OfflineLength < 4 || c.Signature.OfflineLength > 8 {
		errs = append(errs, errors.New("signature.offline_length must be between 4 and 8"))
	}
	if c.Replay.RequestExpiration.Duration <= 0 {
		errs = append(errs, errors.New("replay.request_expiration must be positive"))
	}
	if c.TemporaryKey.Validity.Duration <= 0 {
		errs = append(errs, errors.New("temporary_key.validity must be positive"))
	}
	if c.Recovery.MaxPostcardPukCount < 1 || c.Recovery.MaxPostcardPukCount > 100 {
		errs = append(errs, errors.New("recovery.max_postcard_puk_count must be between 1 and 100"))
	}
	if c.Recovery.MaxFailedAttempts <= 0 {
		errs = append(errs, errors.New("recovery.max_failed_attempts must be positive"))
	}
	if key := c.Crypto.MasterDBEncryptionKey; key != "" {
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil || len(raw) != 16 {
			errs = append(errs, errors.New("crypto.master_db_encryption_key must be 16 bytes encoded in base64"))
		}
	}

	return errors.Join(errs...)
}

// MasterDBEncryptionKeyBytes returns the decoded database encryption key or nil.
func (c *Config) MasterDBEncryptionKeyBytes() []byte {
	if c.Crypto.MasterDBEncryptionKey == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(c.Crypto.MasterDBEncryptionKey)
	if err != nil {
		return nil
	}
	return raw
}

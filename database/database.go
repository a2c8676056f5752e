package database

import (
	"database/sql"
	"fmt"
	"strings"

	"powerauthserver/logger"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect SQL 방언
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// ForUpdate 행 잠금 접미사. SQLite 는 단일 커넥션으로 직렬화되므로 비어 있다
func (d Dialect) ForUpdate() string {
	if d == DialectMySQL {
		return " FOR UPDATE"
	}
	return ""
}

var DB *sql.DB
var dbType Dialect // 데이터베이스 타입 저장

// Type 현재 전역 DB 의 방언
func Type() Dialect {
	return dbType
}

// Initialize 전역 데이터베이스 초기화
// driver: "sqlite" 또는 "mysql"
// dsn: SQLite 파일 경로 또는 MySQL DSN
func Initialize(driver, dsn string) error {
	db, dialect, err := Open(driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	dbType = dialect
	logger.Info("Database initialized successfully (driver=%s)", dialect)
	return nil
}

// Open 연결을 열고 스키마를 보장한다
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	// 기본값 설정
	if driver == "" {
		driver = string(DialectSQLite)
	}
	dialect := Dialect(driver)
	if dialect != DialectSQLite && dialect != DialectMySQL {
		return nil, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
	if dsn == "" && dialect == DialectSQLite {
		dsn = "./powerauth.db"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite 는 쓰기 잠금이 파일 단위이므로 커넥션 하나로 직렬화한다
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite 전용: 외래키 강제 활성화 (기본값 off)
	if dialect == DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := Migrate(db, dialect); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to create tables: %w", err)
	}
	return db, dialect, nil
}

// Migrate 테이블 생성
func Migrate(db *sql.DB, dialect Dialect) error {
	for _, stmt := range schema(dialect) {
		if _, err := db.Exec(stmt); err != nil {
			// MySQL 은 CREATE INDEX IF NOT EXISTS 를 지원하지 않는다
			if dialect == DialectMySQL && strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("failed to execute SQL: %w", err)
		}
	}
	return nil
}

// schema 방언별 DDL
func schema(dialect Dialect) []string {
	autoID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	tableOpts := ""
	createIndex := "CREATE INDEX IF NOT EXISTS"
	if dialect == DialectMySQL {
		autoID = "BIGINT AUTO_INCREMENT PRIMARY KEY"
		tableOpts = " CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"
		createIndex = "CREATE INDEX"
	}

	tables := []string{
		// 애플리케이션
		`CREATE TABLE IF NOT EXISTS applications (
			id ` + autoID + `,
			name VARCHAR(255) UNIQUE NOT NULL,
			roles TEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 애플리케이션 버전
		`CREATE TABLE IF NOT EXISTS application_versions (
			id ` + autoID + `,
			application_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			application_key VARCHAR(255) UNIQUE NOT NULL,
			application_secret VARCHAR(255) NOT NULL,
			supported INT NOT NULL DEFAULT 1,
			FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
		)`,

		// 마스터 키쌍
		`CREATE TABLE IF NOT EXISTS master_keypairs (
			id ` + autoID + `,
			application_id BIGINT NOT NULL,
			name VARCHAR(255),
			master_key_private_base64 VARCHAR(255) NOT NULL,
			master_key_public_base64 VARCHAR(255) NOT NULL,
			timestamp_created VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
		)`,

		// 복구 설정
		`CREATE TABLE IF NOT EXISTS recovery_configs (
			application_id BIGINT PRIMARY KEY,
			activation_recovery_enabled INT NOT NULL DEFAULT 0,
			recovery_postcard_enabled INT NOT NULL DEFAULT 0,
			allow_multiple_recovery_codes INT NOT NULL DEFAULT 0,
			postcard_private_key_base64 VARCHAR(255),
			postcard_private_key_encryption VARCHAR(32) NOT NULL DEFAULT 'NO_ENCRYPTION',
			postcard_public_key_base64 VARCHAR(255),
			remote_public_key_base64 VARCHAR(255),
			FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
		)`,

		// 콜백 URL
		`CREATE TABLE IF NOT EXISTS callback_urls (
			id VARCHAR(50) PRIMARY KEY,
			application_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			callback_url VARCHAR(1024) NOT NULL,
			FOREIGN KEY (application_id) REFERENCES applications(id) ON DELETE CASCADE
		)`,

		// 활성화
		`CREATE TABLE IF NOT EXISTS activations (
			activation_id VARCHAR(37) PRIMARY KEY,
			application_id BIGINT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			activation_name VARCHAR(255),
			activation_code VARCHAR(255),
			activation_status VARCHAR(32) NOT NULL,
			blocked_reason VARCHAR(255),
			counter BIGINT NOT NULL DEFAULT 0,
			ctr_data VARCHAR(255),
			device_public_key VARCHAR(255),
			server_public_key VARCHAR(255) NOT NULL,
			server_private_key VARCHAR(255) NOT NULL,
			server_private_key_encryption VARCHAR(32) NOT NULL DEFAULT 'NO_ENCRYPTION',
			master_keypair_id BIGINT,
			failed_attempts BIGINT NOT NULL DEFAULT 0,
			max_failed_attempts BIGINT NOT NULL DEFAULT 5,
			activation_otp VARCHAR(255),
			activation_otp_validation VARCHAR(32) NOT NULL DEFAULT 'NONE',
			platform VARCHAR(255),
			device_info VARCHAR(255),
			extras TEXT,
			flags TEXT,
			version INT,
			timestamp_created VARCHAR(50) NOT NULL DEFAULT '',
			timestamp_last_used VARCHAR(50) NOT NULL DEFAULT '',
			timestamp_last_change VARCHAR(50),
			timestamp_activation_expire VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (application_id) REFERENCES applications(id),
			FOREIGN KEY (master_keypair_id) REFERENCES master_keypairs(id)
		)`,

		// 활성화 이력
		`CREATE TABLE IF NOT EXISTS activation_history (
			id ` + autoID + `,
			activation_id VARCHAR(37) NOT NULL,
			activation_status VARCHAR(32) NOT NULL,
			event_reason VARCHAR(255),
			external_user_id VARCHAR(255),
			timestamp_created VARCHAR(50) NOT NULL DEFAULT '',
			FOREIGN KEY (activation_id) REFERENCES activations(activation_id)
		)`,

		// 복구 코드
		`CREATE TABLE IF NOT EXISTS recovery_codes (
			id ` + autoID + `,
			application_id BIGINT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			activation_id VARCHAR(37),
			recovery_code VARCHAR(23) NOT NULL,
			recovery_code_masked VARCHAR(23) NOT NULL,
			status VARCHAR(32) NOT NULL,
			failed_attempts BIGINT NOT NULL DEFAULT 0,
			max_failed_attempts BIGINT NOT NULL DEFAULT 10,
			timestamp_created VARCHAR(50) NOT NULL DEFAULT '',
			timestamp_last_used VARCHAR(50),
			timestamp_last_change VARCHAR(50),
			FOREIGN KEY (application_id) REFERENCES applications(id)
		)`,

		// 복구 PUK
		`CREATE TABLE IF NOT EXISTS recovery_puks (
			id ` + autoID + `,
			recovery_code_id BIGINT NOT NULL,
			puk VARCHAR(255),
			puk_encryption VARCHAR(32) NOT NULL DEFAULT 'NO_ENCRYPTION',
			puk_index BIGINT NOT NULL,
			status VARCHAR(32) NOT NULL,
			timestamp_last_change VARCHAR(50),
			FOREIGN KEY (recovery_code_id) REFERENCES recovery_codes(id) ON DELETE CASCADE
		)`,

		// 임시 키
		`CREATE TABLE IF NOT EXISTS temporary_keys (
			id VARCHAR(37) PRIMARY KEY,
			application_key VARCHAR(255) NOT NULL,
			activation_id VARCHAR(37),
			private_key_encryption VARCHAR(32) NOT NULL DEFAULT 'NO_ENCRYPTION',
			private_key_base64 VARCHAR(255) NOT NULL,
			public_key_base64 VARCHAR(255) NOT NULL,
			timestamp_expires VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 재전송 방지 값
		`CREATE TABLE IF NOT EXISTS unique_values (
			unique_value VARCHAR(255) PRIMARY KEY,
			type VARCHAR(64) NOT NULL,
			timestamp_expires VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 서명 감사 로그
		`CREATE TABLE IF NOT EXISTS signature_audit (
			id ` + autoID + `,
			activation_id VARCHAR(37) NOT NULL,
			application_id BIGINT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			activation_counter BIGINT NOT NULL,
			activation_ctr_data VARCHAR(255),
			activation_status VARCHAR(32),
			additional_info TEXT,
			data_base64 TEXT,
			signature_type VARCHAR(255) NOT NULL,
			signature VARCHAR(255) NOT NULL,
			valid INT NOT NULL DEFAULT 0,
			note TEXT,
			version INT,
			signature_version VARCHAR(32),
			timestamp_created VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 클러스터 잠금
		`CREATE TABLE IF NOT EXISTS shedlock (
			name VARCHAR(64) PRIMARY KEY,
			lock_until VARCHAR(50) NOT NULL,
			locked_at VARCHAR(50) NOT NULL,
			locked_by VARCHAR(255) NOT NULL
		)`,
	}
	for i := range tables {
		tables[i] += tableOpts
	}

	indexes := []string{
		createIndex + ` idx_activations_user ON activations(user_id)`,
		createIndex + ` idx_activations_app_code ON activations(application_id, activation_code)`,
		createIndex + ` idx_activations_status_expire ON activations(activation_status, timestamp_activation_expire)`,
		createIndex + ` idx_history_activation ON activation_history(activation_id)`,
		createIndex + ` idx_recovery_codes_app_code ON recovery_codes(application_id, recovery_code)`,
		createIndex + ` idx_recovery_codes_user ON recovery_codes(user_id)`,
		createIndex + ` idx_recovery_puks_code ON recovery_puks(recovery_code_id)`,
		createIndex + ` idx_unique_values_expires ON unique_values(timestamp_expires)`,
		createIndex + ` idx_temporary_keys_expires ON temporary_keys(timestamp_expires)`,
		createIndex + ` idx_signature_audit_user ON signature_audit(user_id, timestamp_created)`,
	}
	return append(tables, indexes...)
}

// Close 데이터베이스 연결 종료
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

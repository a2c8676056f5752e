package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// AuditSink 서명 감사 레코드 저장소
type AuditSink interface {
	Ingest(ctx context.Context, record models.SignatureAudit) error
}

type dbAuditSink struct {
	db Querier
}

// NewDBAuditSink signature_audit 테이블에 기록하는 sink
func NewDBAuditSink(db Querier) AuditSink {
	return &dbAuditSink{db: db}
}

func (s *dbAuditSink) Ingest(ctx context.Context, r models.SignatureAudit) error {
	var info string
	if len(r.AdditionalInfo) > 0 {
		b, err := json.Marshal(r.AdditionalInfo)
		if err != nil {
			return err
		}
		info = string(b)
	}
	valid := 0
	if r.Valid {
		valid = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signature_audit (activation_id, application_id, user_id, activation_counter, activation_ctr_data,
			activation_status, additional_info, data_base64, signature_type, signature, valid, note, version,
			signature_version, timestamp_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ActivationID, r.ApplicationID, r.UserID, r.ActivationCounter, r.ActivationCtrData,
		string(r.ActivationStatus), info, r.DataBase64, r.SignatureType, r.Signature, valid, r.Note, r.Version,
		r.SignatureVersion, utils.FormatDateTimeForDB(r.TimestampCreated),
	)
	return err
}

// MemoryAuditSink 메모리 sink (테스트)
type MemoryAuditSink struct {
	mu      sync.Mutex
	records []models.SignatureAudit
}

func (m *MemoryAuditSink) Ingest(_ context.Context, r models.SignatureAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

// Records 기록 복사본
func (m *MemoryAuditSink) Records() []models.SignatureAudit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SignatureAudit(nil), m.records...)
}

// auditAfterCommit 감사 기록 실패는 검증 결과에 영향을 주지 않는다
func auditAfterCommit(ctx context.Context, q Querier, sink AuditSink, record models.SignatureAudit) {
	if sink == nil {
		return
	}
	afterCommit(q, func() {
		if err := sink.Ingest(context.WithoutCancel(ctx), record); err != nil {
			logger.WithField("activation_id", record.ActivationID).WithError(err).Error("failed to write signature audit")
		}
	})
}

// auditFilter 감사 로그 조회 조건. 시간 범위는 양 끝 포함
type auditFilter struct {
	UserID        string
	ApplicationID *int64
	From          time.Time
	To            time.Time
}

func querySignatureAudit(ctx context.Context, q Querier, f auditFilter) ([]models.SignatureAudit, error) {
	query := `SELECT id, activation_id, application_id, user_id, activation_counter, activation_ctr_data,
		activation_status, additional_info, data_base64, signature_type, signature, valid, note, version,
		signature_version, timestamp_created
		FROM signature_audit WHERE user_id = ? AND timestamp_created >= ? AND timestamp_created <= ?`
	args := []any{f.UserID, utils.FormatDateTimeForDB(f.From), utils.FormatDateTimeForDB(f.To)}
	if f.ApplicationID != nil {
		query += ` AND application_id = ?`
		args = append(args, *f.ApplicationID)
	}
	query += ` ORDER BY id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SignatureAudit{}
	for rows.Next() {
		var r models.SignatureAudit
		var ctrData, status, info, data, note, sigVersion sql.NullString
		var version sql.NullInt64
		var valid int
		var created string
		if err := rows.Scan(&r.ID, &r.ActivationID, &r.ApplicationID, &r.UserID, &r.ActivationCounter, &ctrData,
			&status, &info, &data, &r.SignatureType, &r.Signature, &valid, &note, &version,
			&sigVersion, &created); err != nil {
			return nil, err
		}
		r.ActivationCtrData = ctrData.String
		r.ActivationStatus = models.ActivationStatus(status.String)
		if info.String != "" {
			if err := json.Unmarshal([]byte(info.String), &r.AdditionalInfo); err != nil {
				logger.Warn("Invalid additional info in signature audit %d: %v", r.ID, err)
			}
		}
		r.DataBase64 = data.String
		r.Valid = valid == 1
		r.Note = note.String
		r.Version = int(version.Int64)
		r.SignatureVersion = sigVersion.String
		r.TimestampCreated, _ = utils.ParseDBDate(created)
		items = append(items, r)
	}
	return items, rows.Err()
}

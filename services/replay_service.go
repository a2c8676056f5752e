package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"powerauthserver/config"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// ReplayService ECIES 요청 재전송 방지
type ReplayService interface {
	// CheckAndPersist 요청이 시간 창 안에 있고 처음 보는 값이면 기록한다.
	// q 는 호출자의 트랜잭션이어야 한다
	CheckAndPersist(ctx context.Context, q Querier, kind models.UniqueValueType, timestampMillis int64, ephemeralPublicKey, nonce []byte, identifier string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type replayService struct {
	db  SQLExecutor
	cfg config.ReplayConfig
	now utils.Clock
}

// NewReplayService 재전송 방지 서비스 생성
func NewReplayService(db SQLExecutor, cfg config.ReplayConfig, now utils.Clock) ReplayService {
	return &replayService{db: db, cfg: cfg, now: now}
}

func (s *replayService) CheckAndPersist(ctx context.Context, q Querier, kind models.UniqueValueType, timestampMillis int64, ephemeralPublicKey, nonce []byte, identifier string) error {
	now := s.now()
	requestTime := time.UnixMilli(timestampMillis)
	if requestTime.Before(now.Add(-s.cfg.RequestExpiration.Duration)) || requestTime.After(now.Add(s.cfg.MaxClockSkew.Duration)) {
		logger.Warn("Expired ECIES request received, timestamp: %d", timestampMillis)
		return newError(CodeInvalidRequest)
	}

	uniqueValue := base64.StdEncoding.EncodeToString(utils.ConcatBytes(ephemeralPublicKey, nonce, []byte(identifier)))

	var existing string
	err := q.QueryRowContext(ctx, `SELECT unique_value FROM unique_values WHERE unique_value = ?`, uniqueValue).Scan(&existing)
	switch {
	case err == nil:
		logger.Warn("Duplicate request not allowed to prevent replay attacks")
		return newError(CodeInvalidRequest)
	case !errors.Is(err, sql.ErrNoRows):
		return wrapError(CodeGenericCryptographyError, err)
	}

	expires := now.Add(s.cfg.RequestExpiration.Duration)
	if _, err := q.ExecContext(ctx, `
		INSERT INTO unique_values (unique_value, type, timestamp_expires) VALUES (?, ?, ?)`,
		uniqueValue, string(kind), utils.FormatDateTimeForDB(expires),
	); err != nil {
		if isDuplicateKeyError(err) {
			return newError(CodeInvalidRequest)
		}
		logger.Warn("Unique value could not be persisted: %v", err)
		return wrapError(CodeGenericCryptographyError, err)
	}
	return nil
}

func (s *replayService) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM unique_values WHERE timestamp_expires < ?`,
		utils.FormatDateTimeForDB(s.now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

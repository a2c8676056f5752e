package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"powerauthserver/models"
	"powerauthserver/utils"
)

const activationColumns = `activation_id, application_id, user_id, activation_name, activation_code, activation_status,
	blocked_reason, counter, ctr_data, device_public_key, server_public_key, server_private_key,
	server_private_key_encryption, master_keypair_id, failed_attempts, max_failed_attempts, activation_otp,
	activation_otp_validation, platform, device_info, extras, flags, version, timestamp_created,
	timestamp_last_used, timestamp_last_change, timestamp_activation_expire`

func scanActivation(row rowScanner) (*models.Activation, error) {
	var a models.Activation
	var name, code, blocked, ctrData, devicePub, otp, platform, deviceInfo, extras, flags, lastChange sql.NullString
	var masterKeyPairID sql.NullInt64
	var version sql.NullInt64
	var created, lastUsed, expires string
	var status, encryption, otpValidation string

	err := row.Scan(&a.ActivationID, &a.ApplicationID, &a.UserID, &name, &code, &status,
		&blocked, &a.Counter, &ctrData, &devicePub, &a.ServerPublicKey, &a.ServerPrivateKey,
		&encryption, &masterKeyPairID, &a.FailedAttempts, &a.MaxFailedAttempts, &otp,
		&otpValidation, &platform, &deviceInfo, &extras, &flags, &version, &created,
		&lastUsed, &lastChange, &expires)
	if err != nil {
		return nil, err
	}

	a.ActivationName = name.String
	a.ActivationCode = code.String
	a.Status = models.ActivationStatus(status)
	a.BlockedReason = blocked.String
	a.CtrData = ctrData.String
	a.DevicePublicKey = devicePub.String
	a.ServerPrivateKeyEncryption = models.EncryptionMode(encryption)
	a.MasterKeyPairID = masterKeyPairID.Int64
	a.OtpHash = otp.String
	a.OtpValidation = models.OtpValidation(otpValidation)
	a.Platform = platform.String
	a.DeviceInfo = deviceInfo.String
	a.Extras = extras.String
	a.Flags = splitList(flags.String)
	a.Version = int(version.Int64)
	a.CreatedAt, _ = utils.ParseDBDate(created)
	a.LastUsedAt, _ = utils.ParseDBDate(lastUsed)
	a.LastChangeAt, _ = utils.ParseDBDate(lastChange.String)
	a.ExpiresAt, _ = utils.ParseDBDate(expires)
	return &a, nil
}

// findActivation 없으면 (nil, nil). lock 이면 행 잠금
func findActivation(ctx context.Context, q Querier, activationID string, lock bool) (*models.Activation, error) {
	query := `SELECT ` + activationColumns + ` FROM activations WHERE activation_id = ?`
	if lock {
		query += q.Dialect().ForUpdate()
	}
	a, err := scanActivation(q.QueryRowContext(ctx, query, activationID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// findCreatedActivationByCode (app, code) 로 CREATED 상태 활성화 조회
func findCreatedActivationByCode(ctx context.Context, q Querier, applicationID int64, code string, lock bool) (*models.Activation, error) {
	query := `SELECT ` + activationColumns + ` FROM activations
		WHERE application_id = ? AND activation_code = ? AND activation_status = ?`
	if lock {
		query += q.Dialect().ForUpdate()
	}
	a, err := scanActivation(q.QueryRowContext(ctx, query, applicationID, code, string(models.ActivationStatusCreated)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func activationIDExists(ctx context.Context, q Querier, activationID string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM activations WHERE activation_id = ?`, activationID).Scan(&n)
	return n > 0, err
}

// activationCodeInUse 같은 애플리케이션에서 CREATED/PENDING_COMMIT 레코드가 코드를 쓰는지
func activationCodeInUse(ctx context.Context, q Querier, applicationID int64, code string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM activations
		WHERE application_id = ? AND activation_code = ? AND activation_status IN (?, ?)`,
		applicationID, code, string(models.ActivationStatusCreated), string(models.ActivationStatusPendingCommit),
	).Scan(&n)
	return n > 0, err
}

func insertActivation(ctx context.Context, q Querier, a *models.Activation) error {
	_, err := q.ExecContext(ctx, `INSERT INTO activations (`+activationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activationArgs(a)...)
	return err
}

func updateActivation(ctx context.Context, q Querier, a *models.Activation) error {
	args := activationArgs(a)[1:]
	args = append(args, a.ActivationID)
	_, err := q.ExecContext(ctx, `UPDATE activations SET application_id = ?, user_id = ?, activation_name = ?,
		activation_code = ?, activation_status = ?, blocked_reason = ?, counter = ?, ctr_data = ?,
		device_public_key = ?, server_public_key = ?, server_private_key = ?, server_private_key_encryption = ?,
		master_keypair_id = ?, failed_attempts = ?, max_failed_attempts = ?, activation_otp = ?,
		activation_otp_validation = ?, platform = ?, device_info = ?, extras = ?, flags = ?, version = ?,
		timestamp_created = ?, timestamp_last_used = ?, timestamp_last_change = ?, timestamp_activation_expire = ?
		WHERE activation_id = ?`, args...)
	return err
}

func activationArgs(a *models.Activation) []any {
	var masterKeyPairID any
	if a.MasterKeyPairID != 0 {
		masterKeyPairID = a.MasterKeyPairID
	}
	var version any
	if a.Version != 0 {
		version = a.Version
	}
	return []any{
		a.ActivationID, a.ApplicationID, a.UserID, nullString(a.ActivationName), nullString(a.ActivationCode),
		string(a.Status), nullString(a.BlockedReason), a.Counter, nullString(a.CtrData), nullString(a.DevicePublicKey),
		a.ServerPublicKey, a.ServerPrivateKey, string(a.ServerPrivateKeyEncryption), masterKeyPairID,
		a.FailedAttempts, a.MaxFailedAttempts, nullString(a.OtpHash), string(a.OtpValidation),
		nullString(a.Platform), nullString(a.DeviceInfo), nullString(a.Extras), strings.Join(a.Flags, ","), version,
		utils.FormatDateTimeForDB(a.CreatedAt), utils.FormatDateTimeForDB(a.LastUsedAt),
		utils.NullableDateTime(a.LastChangeAt), utils.FormatDateTimeForDB(a.ExpiresAt),
	}
}

// saveActivationAndLogChange 상태가 바뀐 활성화를 저장하고 이력을 남긴다
func saveActivationAndLogChange(ctx context.Context, q Querier, a *models.Activation, now time.Time, reason, externalUserID string) error {
	a.LastChangeAt = now
	if err := updateActivation(ctx, q, a); err != nil {
		return err
	}
	return insertHistory(ctx, q, a, now, reason, externalUserID)
}

func insertHistory(ctx context.Context, q Querier, a *models.Activation, now time.Time, reason, externalUserID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO activation_history (activation_id, activation_status, event_reason, external_user_id, timestamp_created)
		VALUES (?, ?, ?, ?, ?)`,
		a.ActivationID, string(a.Status), nullString(reason), nullString(externalUserID), utils.FormatDateTimeForDB(now))
	return err
}

func listHistory(ctx context.Context, q Querier, activationID string, from, to time.Time) ([]models.ActivationHistory, error) {
	query := `SELECT id, activation_id, activation_status, event_reason, external_user_id, timestamp_created
		FROM activation_history WHERE activation_id = ?`
	args := []any{activationID}
	if !from.IsZero() {
		query += ` AND timestamp_created >= ?`
		args = append(args, utils.FormatDateTimeForDB(from))
	}
	if !to.IsZero() {
		query += ` AND timestamp_created <= ?`
		args = append(args, utils.FormatDateTimeForDB(to))
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ActivationHistory{}
	for rows.Next() {
		var h models.ActivationHistory
		var status, created string
		var reason, external sql.NullString
		if err := rows.Scan(&h.ID, &h.ActivationID, &status, &reason, &external, &created); err != nil {
			return nil, err
		}
		h.Status = models.ActivationStatus(status)
		h.EventReason = reason.String
		h.ExternalUserID = external.String
		h.TimestampCreated, _ = utils.ParseDBDate(created)
		items = append(items, h)
	}
	return items, rows.Err()
}

// activationFilter 활성화 목록 조회 조건
type activationFilter struct {
	UserIDs        []string
	ApplicationIDs []int64
	LastUsedAfter  time.Time
	Status         models.ActivationStatus
	Flags          []string
}

func queryActivations(ctx context.Context, q Querier, f activationFilter) ([]*models.Activation, error) {
	query := `SELECT ` + activationColumns + ` FROM activations WHERE 1=1`
	var args []any
	if len(f.UserIDs) > 0 {
		query += ` AND user_id IN (` + placeholders(len(f.UserIDs)) + `)`
		for _, id := range f.UserIDs {
			args = append(args, id)
		}
	}
	if len(f.ApplicationIDs) > 0 {
		query += ` AND application_id IN (` + placeholders(len(f.ApplicationIDs)) + `)`
		for _, id := range f.ApplicationIDs {
			args = append(args, id)
		}
	}
	if !f.LastUsedAfter.IsZero() {
		query += ` AND timestamp_last_used >= ?`
		args = append(args, utils.FormatDateTimeForDB(f.LastUsedAfter))
	}
	if f.Status != "" {
		query += ` AND activation_status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY timestamp_created`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Activation
	for rows.Next() {
		a, err := scanActivation(rows)
		if err != nil {
			return nil, err
		}
		if !hasAllFlags(a, f.Flags) {
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func hasAllFlags(a *models.Activation, flags []string) bool {
	for _, f := range flags {
		if !a.HasFlag(f) {
			return false
		}
	}
	return true
}

// findAbandonedActivationIDs 만료 시각이 (from, to] 인 대기 상태 활성화
func findAbandonedActivationIDs(ctx context.Context, q Querier, from, to time.Time) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT activation_id FROM activations
		WHERE activation_status IN (?, ?) AND timestamp_activation_expire > ? AND timestamp_activation_expire <= ?`,
		string(models.ActivationStatusCreated), string(models.ActivationStatusPendingCommit),
		utils.FormatDateTimeForDB(from), utils.FormatDateTimeForDB(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

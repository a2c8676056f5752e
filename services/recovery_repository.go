package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"powerauthserver/identifier"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

const recoveryCodeColumns = `id, application_id, user_id, activation_id, recovery_code, recovery_code_masked, status,
	failed_attempts, max_failed_attempts, timestamp_created, timestamp_last_used, timestamp_last_change`

func scanRecoveryCode(row rowScanner) (*models.RecoveryCode, error) {
	var c models.RecoveryCode
	var activationID, lastUsed, lastChange sql.NullString
	var status, created string
	if err := row.Scan(&c.ID, &c.ApplicationID, &c.UserID, &activationID, &c.Code, &c.CodeMasked, &status,
		&c.FailedAttempts, &c.MaxFailedAttempts, &created, &lastUsed, &lastChange); err != nil {
		return nil, err
	}
	c.ActivationID = activationID.String
	c.Status = models.RecoveryCodeStatus(status)
	c.TimestampCreated, _ = utils.ParseDBDate(created)
	c.TimestampLastUsed, _ = utils.ParseDBDate(lastUsed.String)
	c.TimestampLastChange, _ = utils.ParseDBDate(lastChange.String)
	return &c, nil
}

// findRecoveryCode (app, code) 로 조회. 없으면 (nil, nil)
func findRecoveryCode(ctx context.Context, q Querier, applicationID int64, code string, lock bool) (*models.RecoveryCode, error) {
	query := `SELECT ` + recoveryCodeColumns + ` FROM recovery_codes WHERE application_id = ? AND recovery_code = ?`
	if lock {
		query += q.Dialect().ForUpdate()
	}
	c, err := scanRecoveryCode(q.QueryRowContext(ctx, query, applicationID, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := loadPuks(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

func findRecoveryCodeByID(ctx context.Context, q Querier, id int64, lock bool) (*models.RecoveryCode, error) {
	query := `SELECT ` + recoveryCodeColumns + ` FROM recovery_codes WHERE id = ?`
	if lock {
		query += q.Dialect().ForUpdate()
	}
	c, err := scanRecoveryCode(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := loadPuks(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

func loadPuks(ctx context.Context, q Querier, c *models.RecoveryCode) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, recovery_code_id, puk, puk_encryption, puk_index, status, timestamp_last_change
		FROM recovery_puks WHERE recovery_code_id = ? ORDER BY puk_index`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	c.Puks = []models.RecoveryPuk{}
	for rows.Next() {
		var p models.RecoveryPuk
		var hash, lastChange sql.NullString
		var encryption, status string
		if err := rows.Scan(&p.ID, &p.RecoveryCodeID, &hash, &encryption, &p.PukIndex, &status, &lastChange); err != nil {
			return err
		}
		p.PukHash = hash.String
		p.PukEncryption = models.EncryptionMode(encryption)
		p.Status = models.RecoveryPukStatus(status)
		p.TimestampLastChange, _ = utils.ParseDBDate(lastChange.String)
		c.Puks = append(c.Puks, p)
	}
	return rows.Err()
}

func recoveryCodeExists(ctx context.Context, q Querier, applicationID int64, code string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM recovery_codes WHERE application_id = ? AND recovery_code = ?`,
		applicationID, code).Scan(&n)
	return n > 0, err
}

// insertRecoveryCode 코드와 PUK 를 함께 저장하고 ID 를 채운다
func insertRecoveryCode(ctx context.Context, q Querier, c *models.RecoveryCode) error {
	res, err := q.ExecContext(ctx, `
		INSERT INTO recovery_codes (application_id, user_id, activation_id, recovery_code, recovery_code_masked, status,
			failed_attempts, max_failed_attempts, timestamp_created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ApplicationID, c.UserID, nullString(c.ActivationID), c.Code, c.CodeMasked, string(c.Status),
		c.FailedAttempts, c.MaxFailedAttempts, utils.FormatDateTimeForDB(c.TimestampCreated))
	if err != nil {
		return err
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for i := range c.Puks {
		p := &c.Puks[i]
		p.RecoveryCodeID = c.ID
		res, err := q.ExecContext(ctx, `
			INSERT INTO recovery_puks (recovery_code_id, puk, puk_encryption, puk_index, status)
			VALUES (?, ?, ?, ?, ?)`,
			p.RecoveryCodeID, p.PukHash, string(p.PukEncryption), p.PukIndex, string(p.Status))
		if err != nil {
			return err
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

// updateRecoveryCode 코드 상태와 변경된 PUK 상태 저장
func updateRecoveryCode(ctx context.Context, q Querier, c *models.RecoveryCode) error {
	if _, err := q.ExecContext(ctx, `
		UPDATE recovery_codes SET status = ?, failed_attempts = ?, timestamp_last_used = ?, timestamp_last_change = ?
		WHERE id = ?`,
		string(c.Status), c.FailedAttempts, utils.NullableDateTime(c.TimestampLastUsed),
		utils.NullableDateTime(c.TimestampLastChange), c.ID,
	); err != nil {
		return err
	}
	for _, p := range c.Puks {
		if _, err := q.ExecContext(ctx, `UPDATE recovery_puks SET status = ?, timestamp_last_change = ? WHERE id = ?`,
			string(p.Status), utils.NullableDateTime(p.TimestampLastChange), p.ID); err != nil {
			return err
		}
	}
	return nil
}

// recoveryCodeFilter 조회 조건. 빈 값은 무시
type recoveryCodeFilter struct {
	ApplicationID *int64
	UserID        string
	ActivationID  string
}

func queryRecoveryCodes(ctx context.Context, q Querier, f recoveryCodeFilter) ([]*models.RecoveryCode, error) {
	query := `SELECT ` + recoveryCodeColumns + ` FROM recovery_codes WHERE 1=1`
	var args []any
	if f.ApplicationID != nil {
		query += ` AND application_id = ?`
		args = append(args, *f.ApplicationID)
	}
	if f.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.ActivationID != "" {
		query += ` AND activation_id = ?`
		args = append(args, f.ActivationID)
	}
	query += ` ORDER BY id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var codes []*models.RecoveryCode
	for rows.Next() {
		c, err := scanRecoveryCode(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for _, c := range codes {
		if err := loadPuks(ctx, q, c); err != nil {
			return nil, err
		}
	}
	return codes, nil
}

// revoke 코드를 REVOKED 로 바꾸고 VALID PUK 를 INVALID 로 만든다. 이미 폐기된 코드는 false
func revoke(c *models.RecoveryCode, now time.Time) bool {
	if c.Status == models.RecoveryCodeStatusRevoked {
		return false
	}
	c.Status = models.RecoveryCodeStatusRevoked
	c.TimestampLastChange = now
	for i := range c.Puks {
		if c.Puks[i].Status == models.RecoveryPukStatusValid {
			c.Puks[i].Status = models.RecoveryPukStatusInvalid
			c.Puks[i].TimestampLastChange = now
		}
	}
	return true
}

// revokeRecoveryCodesForActivation 활성화에 연결된 코드를 하나씩 잠가 폐기
func revokeRecoveryCodesForActivation(ctx context.Context, q Querier, activationID string, now time.Time) error {
	codes, err := queryRecoveryCodes(ctx, q, recoveryCodeFilter{ActivationID: activationID})
	if err != nil {
		return err
	}
	for _, found := range codes {
		c, err := findRecoveryCodeByID(ctx, q, found.ID, true)
		if err != nil {
			return err
		}
		if c == nil {
			continue
		}
		if revoke(c, now) {
			if err := updateRecoveryCode(ctx, q, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// activateRecoveryCodesForActivation 커밋 시 CREATED 코드를 ACTIVE 로
func activateRecoveryCodesForActivation(ctx context.Context, q Querier, activationID string, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE recovery_codes SET status = ?, timestamp_last_change = ?
		WHERE activation_id = ? AND status = ?`,
		string(models.RecoveryCodeStatusActive), utils.FormatDateTimeForDB(now), activationID,
		string(models.RecoveryCodeStatusCreated))
	return err
}

func findRecoveryConfig(ctx context.Context, q Querier, applicationID int64) (*models.RecoveryConfig, error) {
	var cfg models.RecoveryConfig
	var recovery, postcard, multiple int
	var priv, encryption, pub, remote sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT application_id, activation_recovery_enabled, recovery_postcard_enabled, allow_multiple_recovery_codes,
			postcard_private_key_base64, postcard_private_key_encryption, postcard_public_key_base64, remote_public_key_base64
		FROM recovery_configs WHERE application_id = ?`, applicationID,
	).Scan(&cfg.ApplicationID, &recovery, &postcard, &multiple, &priv, &encryption, &pub, &remote)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ActivationRecoveryEnabled = recovery != 0
	cfg.RecoveryPostcardEnabled = postcard != 0
	cfg.AllowMultipleRecoveryCodes = multiple != 0
	cfg.PostcardPrivateKey = priv.String
	cfg.PostcardPrivateKeyEncryption = models.EncryptionMode(encryption.String)
	cfg.PostcardPublicKey = pub.String
	cfg.RemotePostcardPublicKey = remote.String
	return &cfg, nil
}

func saveRecoveryConfig(ctx context.Context, q Querier, cfg *models.RecoveryConfig) error {
	args := []any{
		boolToInt(cfg.ActivationRecoveryEnabled), boolToInt(cfg.RecoveryPostcardEnabled),
		boolToInt(cfg.AllowMultipleRecoveryCodes), nullString(cfg.PostcardPrivateKey),
		string(cfg.PostcardPrivateKeyEncryption), nullString(cfg.PostcardPublicKey),
		nullString(cfg.RemotePostcardPublicKey), cfg.ApplicationID,
	}
	res, err := q.ExecContext(ctx, `
		UPDATE recovery_configs SET activation_recovery_enabled = ?, recovery_postcard_enabled = ?,
			allow_multiple_recovery_codes = ?, postcard_private_key_base64 = ?, postcard_private_key_encryption = ?,
			postcard_public_key_base64 = ?, remote_public_key_base64 = ?
		WHERE application_id = ?`, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO recovery_configs (activation_recovery_enabled, recovery_postcard_enabled, allow_multiple_recovery_codes,
			postcard_private_key_base64, postcard_private_key_encryption, postcard_public_key_base64,
			remote_public_key_base64, application_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return err
}

// pukKeyContext PUK 해시 암호화 키 파생 입력
func pukKeyContext(c *models.RecoveryCode, index int64) (string, string) {
	return strconv.FormatInt(c.ApplicationID, 10) + "&" + c.UserID, c.Code + "&" + strconv.FormatInt(index, 10)
}

// newPuk PUK 를 bcrypt 해시 후 저장 형식으로 변환
func newPuk(conv *ServerKeyConverter, c *models.RecoveryCode, index int64, puk string) (models.RecoveryPuk, error) {
	hash, err := utils.HashPassword(puk)
	if err != nil {
		return models.RecoveryPuk{}, wrapError(CodeGenericCryptographyError, err)
	}
	owner, scope := pukKeyContext(c, index)
	stored, mode, err := conv.ToDB([]byte(hash), owner, scope)
	if err != nil {
		return models.RecoveryPuk{}, wrapError(CodeGenericCryptographyError, err)
	}
	return models.RecoveryPuk{
		PukHash:       stored,
		PukEncryption: mode,
		PukIndex:      index,
		Status:        models.RecoveryPukStatusValid,
	}, nil
}

// verifyRecoveryPuk 첫 VALID PUK 와 비교한다. 일치하면 PUK 를 USED 로 바꾸고
// 실패하면 실패 횟수를 저장한 뒤 Persisted INVALID_RECOVERY_CODE 를 반환한다
func verifyRecoveryPuk(ctx context.Context, q Querier, conv *ServerKeyConverter, c *models.RecoveryCode, puk string, now time.Time) error {
	first := c.FirstValidPuk()
	if first != nil && identifier.ValidatePuk(puk) {
		owner, scope := pukKeyContext(c, first.PukIndex)
		hash, err := conv.FromDB(first.PukHash, first.PukEncryption, owner, scope)
		if err != nil {
			return wrapError(CodeGenericCryptographyError, err)
		}
		if utils.CheckPassword(string(hash), puk) {
			c.FailedAttempts = 0
			c.TimestampLastUsed = now
			c.TimestampLastChange = now
			first.Status = models.RecoveryPukStatusUsed
			first.TimestampLastChange = now
			return updateRecoveryCode(ctx, q, c)
		}
	}

	logger.Info("Received invalid recovery PUK, recovery code ID: %d", c.ID)
	c.FailedAttempts++
	c.TimestampLastChange = now
	if c.FailedAttempts >= c.MaxFailedAttempts && first != nil {
		c.Status = models.RecoveryCodeStatusBlocked
		first.Status = models.RecoveryPukStatusInvalid
		first.TimestampLastChange = now
	}
	if err := updateRecoveryCode(ctx, q, c); err != nil {
		return err
	}

	svcErr := persisted(CodeInvalidRecoveryCode)
	if first != nil && first.Status == models.RecoveryPukStatusValid {
		index := first.PukIndex
		svcErr.CurrentPukIndex = &index
	}
	return svcErr
}

// createActivationRecoveryCode 활성화 전용 복구 코드 (PUK 1개) 생성
func createActivationRecoveryCode(ctx context.Context, q Querier, conv *ServerKeyConverter, a *models.Activation, active bool, maxFailed int64, iterations int, now time.Time) (*models.ActivationRecovery, error) {
	if a.Status != models.ActivationStatusPendingCommit && a.Status != models.ActivationStatusActive {
		return nil, newError(CodeActivationIncorrectState)
	}
	existing, err := queryRecoveryCodes(ctx, q, recoveryCodeFilter{ApplicationID: &a.ApplicationID, ActivationID: a.ActivationID})
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Status == models.RecoveryCodeStatusCreated || c.Status == models.RecoveryCodeStatusActive {
			return nil, newError(CodeRecoveryCodeAlreadyExists)
		}
	}

	var code string
	for i := 0; i < iterations; i++ {
		candidate, err := identifier.GenerateRecoveryCode()
		if err != nil {
			return nil, wrapError(CodeGenericCryptographyError, err)
		}
		exists, err := recoveryCodeExists(ctx, q, a.ApplicationID, candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, newError(CodeUnableToGenerateRecoveryCode)
	}
	puk, err := identifier.GeneratePuk()
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}

	status := models.RecoveryCodeStatusCreated
	if active {
		status = models.RecoveryCodeStatusActive
	}
	rc := &models.RecoveryCode{
		ApplicationID:     a.ApplicationID,
		UserID:            a.UserID,
		ActivationID:      a.ActivationID,
		Code:              code,
		CodeMasked:        identifier.MaskRecoveryCode(code),
		Status:            status,
		MaxFailedAttempts: maxFailed,
		TimestampCreated:  now,
	}
	p, err := newPuk(conv, rc, 1, puk)
	if err != nil {
		return nil, err
	}
	rc.Puks = []models.RecoveryPuk{p}
	if err := insertRecoveryCode(ctx, q, rc); err != nil {
		return nil, err
	}
	return &models.ActivationRecovery{RecoveryCode: code, Puk: puk}, nil
}

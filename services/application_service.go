package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"

	"powerauthserver/models"
	"powerauthserver/utils"
)

// ApplicationService 애플리케이션, 버전, 마스터 키쌍, 콜백 URL 관리
type ApplicationService interface {
	Create(ctx context.Context, req models.CreateApplicationRequest) (models.ApplicationDetail, error)
	List(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id int64) (models.ApplicationDetail, error)
	CreateVersion(ctx context.Context, applicationID int64, name string) (models.ApplicationVersion, error)
	SetVersionSupported(ctx context.Context, versionID int64, supported bool) error
	CreateCallbackURL(ctx context.Context, req models.CreateCallbackURLRequest) (models.CallbackURL, error)
	ListCallbackURLs(ctx context.Context, applicationID int64) ([]models.CallbackURL, error)
	RemoveCallbackURL(ctx context.Context, id string) error
}

type applicationService struct {
	db  SQLExecutor
	now utils.Clock
}

// NewApplicationService ApplicationService 구현체 생성
func NewApplicationService(db SQLExecutor, now utils.Clock) ApplicationService {
	return &applicationService{db: db, now: now}
}

func (s *applicationService) Create(ctx context.Context, req models.CreateApplicationRequest) (models.ApplicationDetail, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.ApplicationDetail{}, newError(CodeInvalidRequest)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ApplicationDetail, error) {
		now := s.now()
		res, err := tx.ExecContext(ctx, `INSERT INTO applications (name, roles, created_at) VALUES (?, ?, ?)`,
			name, strings.Join(req.Roles, ","), utils.FormatDateTimeForDB(now))
		if err != nil {
			if isDuplicateKeyError(err) {
				return models.ApplicationDetail{}, newError(CodeInvalidApplication)
			}
			return models.ApplicationDetail{}, err
		}
		appID, err := res.LastInsertId()
		if err != nil {
			return models.ApplicationDetail{}, err
		}

		// 마스터 키쌍
		priv, err := utils.GenerateKeyPair()
		if err != nil {
			return models.ApplicationDetail{}, wrapError(CodeGenericCryptographyError, err)
		}
		pub := base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&priv.PublicKey))
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO master_keypairs (application_id, name, master_key_private_base64, master_key_public_base64, timestamp_created)
			VALUES (?, ?, ?, ?, ?)`,
			appID, name+" default keypair", base64.StdEncoding.EncodeToString(utils.PrivateKeyToBytes(priv)), pub,
			utils.FormatDateTimeForDB(now),
		); err != nil {
			return models.ApplicationDetail{}, err
		}

		// 복구 설정 기본값 (비활성)
		if _, err := tx.ExecContext(ctx, `INSERT INTO recovery_configs (application_id) VALUES (?)`, appID); err != nil {
			return models.ApplicationDetail{}, err
		}

		version, err := insertVersion(ctx, tx, appID, "default")
		if err != nil {
			return models.ApplicationDetail{}, err
		}

		return models.ApplicationDetail{
			Application: models.Application{
				ID:        appID,
				Name:      name,
				Roles:     nonNilStrings(req.Roles),
				CreatedAt: now,
			},
			MasterPublicKey: pub,
			Versions:        []models.ApplicationVersion{version},
		}, nil
	})
}

func insertVersion(ctx context.Context, q Querier, applicationID int64, name string) (models.ApplicationVersion, error) {
	key, err := utils.GenerateApplicationCredential()
	if err != nil {
		return models.ApplicationVersion{}, err
	}
	secret, err := utils.GenerateApplicationCredential()
	if err != nil {
		return models.ApplicationVersion{}, err
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO application_versions (application_id, name, application_key, application_secret, supported)
		VALUES (?, ?, ?, ?, 1)`, applicationID, name, key, secret)
	if err != nil {
		return models.ApplicationVersion{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ApplicationVersion{}, err
	}
	return models.ApplicationVersion{
		ID:                id,
		ApplicationID:     applicationID,
		Name:              name,
		ApplicationKey:    key,
		ApplicationSecret: secret,
		Supported:         true,
	}, nil
}

func (s *applicationService) List(ctx context.Context) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, roles, created_at FROM applications ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *applicationService) Get(ctx context.Context, id int64) (models.ApplicationDetail, error) {
	app, err := findApplication(ctx, s.db, id)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	detail := models.ApplicationDetail{Application: app, Versions: []models.ApplicationVersion{}}

	if kp, err := findMasterKeyPair(ctx, s.db, id); err == nil {
		detail.MasterPublicKey = kp.PublicKey
	} else if !errors.Is(err, ErrNoMasterServerKeyPair) {
		return models.ApplicationDetail{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, name, application_key, application_secret, supported
		FROM application_versions WHERE application_id = ? ORDER BY id`, id)
	if err != nil {
		return models.ApplicationDetail{}, err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return models.ApplicationDetail{}, err
		}
		detail.Versions = append(detail.Versions, v)
	}
	return detail, rows.Err()
}

func (s *applicationService) CreateVersion(ctx context.Context, applicationID int64, name string) (models.ApplicationVersion, error) {
	if strings.TrimSpace(name) == "" {
		return models.ApplicationVersion{}, newError(CodeInvalidRequest)
	}
	if _, err := findApplication(ctx, s.db, applicationID); err != nil {
		return models.ApplicationVersion{}, err
	}
	return insertVersion(ctx, s.db, applicationID, name)
}

func (s *applicationService) SetVersionSupported(ctx context.Context, versionID int64, supported bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE application_versions SET supported = ? WHERE id = ?`, boolToInt(supported), versionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeInvalidApplication)
	}
	return nil
}

func (s *applicationService) CreateCallbackURL(ctx context.Context, req models.CreateCallbackURLRequest) (models.CallbackURL, error) {
	if strings.TrimSpace(req.Name) == "" || !(strings.HasPrefix(req.URL, "http://") || strings.HasPrefix(req.URL, "https://")) {
		return models.CallbackURL{}, newError(CodeInvalidRequest)
	}
	if _, err := findApplication(ctx, s.db, req.ApplicationID); err != nil {
		return models.CallbackURL{}, err
	}
	id, err := utils.GenerateID("")
	if err != nil {
		return models.CallbackURL{}, err
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO callback_urls (id, application_id, name, callback_url) VALUES (?, ?, ?, ?)`,
		id, req.ApplicationID, req.Name, req.URL); err != nil {
		return models.CallbackURL{}, err
	}
	return models.CallbackURL{ID: id, ApplicationID: req.ApplicationID, Name: req.Name, URL: req.URL}, nil
}

func (s *applicationService) ListCallbackURLs(ctx context.Context, applicationID int64) ([]models.CallbackURL, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, name, callback_url FROM callback_urls WHERE application_id = ? ORDER BY name`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := []models.CallbackURL{}
	for rows.Next() {
		var cb models.CallbackURL
		if err := rows.Scan(&cb.ID, &cb.ApplicationID, &cb.Name, &cb.URL); err != nil {
			return nil, err
		}
		urls = append(urls, cb)
	}
	return urls, rows.Err()
}

func (s *applicationService) RemoveCallbackURL(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM callback_urls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(CodeInvalidRequest)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	var roles sql.NullString
	var created string
	if err := row.Scan(&app.ID, &app.Name, &roles, &created); err != nil {
		return models.Application{}, err
	}
	app.Roles = splitList(roles.String)
	app.CreatedAt, _ = utils.ParseDBDate(created)
	return app, nil
}

func scanVersion(row rowScanner) (models.ApplicationVersion, error) {
	var v models.ApplicationVersion
	var supported int
	if err := row.Scan(&v.ID, &v.ApplicationID, &v.Name, &v.ApplicationKey, &v.ApplicationSecret, &supported); err != nil {
		return models.ApplicationVersion{}, err
	}
	v.Supported = supported != 0
	return v, nil
}

// findApplication 없으면 INVALID_APPLICATION
func findApplication(ctx context.Context, q Querier, id int64) (models.Application, error) {
	app, err := scanApplication(q.QueryRowContext(ctx, `SELECT id, name, roles, created_at FROM applications WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Application{}, newError(CodeInvalidApplication)
	}
	return app, err
}

// findVersionByKey 없으면 nil
func findVersionByKey(ctx context.Context, q Querier, applicationKey string) (*models.ApplicationVersion, error) {
	v, err := scanVersion(q.QueryRowContext(ctx, `
		SELECT id, application_id, name, application_key, application_secret, supported
		FROM application_versions WHERE application_key = ?`, applicationKey))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// findSupportedVersion 지원되는 버전만. 그 외는 INVALID_APPLICATION
func findSupportedVersion(ctx context.Context, q Querier, applicationKey string) (*models.ApplicationVersion, error) {
	v, err := findVersionByKey(ctx, q, applicationKey)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.Supported {
		return nil, newError(CodeInvalidApplication)
	}
	return v, nil
}

// findMasterKeyPair 가장 최근 마스터 키쌍
func findMasterKeyPair(ctx context.Context, q Querier, applicationID int64) (*models.MasterKeyPair, error) {
	var kp models.MasterKeyPair
	var name sql.NullString
	var created string
	err := q.QueryRowContext(ctx, `
		SELECT id, application_id, name, master_key_private_base64, master_key_public_base64, timestamp_created
		FROM master_keypairs WHERE application_id = ? ORDER BY timestamp_created DESC, id DESC LIMIT 1`, applicationID,
	).Scan(&kp.ID, &kp.ApplicationID, &name, &kp.PrivateKey, &kp.PublicKey, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeNoMasterServerKeyPair)
	}
	if err != nil {
		return nil, err
	}
	kp.Name = name.String
	kp.CreatedAt, _ = utils.ParseDBDate(created)
	return &kp, nil
}

// findMasterKeyPairByID 활성화에 연결된 키쌍
func findMasterKeyPairByID(ctx context.Context, q Querier, id int64) (*models.MasterKeyPair, error) {
	var kp models.MasterKeyPair
	var name sql.NullString
	var created string
	err := q.QueryRowContext(ctx, `
		SELECT id, application_id, name, master_key_private_base64, master_key_public_base64, timestamp_created
		FROM master_keypairs WHERE id = ?`, id,
	).Scan(&kp.ID, &kp.ApplicationID, &name, &kp.PrivateKey, &kp.PublicKey, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(CodeNoMasterServerKeyPair)
	}
	if err != nil {
		return nil, err
	}
	kp.Name = name.String
	kp.CreatedAt, _ = utils.ParseDBDate(created)
	return &kp, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

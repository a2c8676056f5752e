package services

import (
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// TemporaryKeyService 순방향 보안용 임시 ECIES 키 발급
type TemporaryKeyService interface {
	Create(ctx context.Context, req models.TemporaryKeyRequest) (models.TemporaryKeyResponse, error)
	Remove(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type temporaryKeyRequestClaims struct {
	ApplicationKey string `json:"applicationKey"`
	ActivationID   string `json:"activationId,omitempty"`
	Challenge      string `json:"challenge,omitempty"`
	jwt.RegisteredClaims
}

type temporaryKeyResponseClaims struct {
	ApplicationKey  string `json:"applicationKey,omitempty"`
	ActivationID    string `json:"activationId,omitempty"`
	Challenge       string `json:"challenge"`
	PublicKey       string `json:"publicKey"`
	IssuedAtMillis  int64  `json:"iat_ms"`
	ExpiresAtMillis int64  `json:"exp_ms"`
	jwt.RegisteredClaims
}

// temporaryKeySigner 요청 검증 비밀키와 응답 서명 키
type temporaryKeySigner struct {
	secret     []byte
	privateKey *ecdsa.PrivateKey
}

type temporaryKeyService struct {
	db       SQLExecutor
	keys     *ServerKeyConverter
	validity time.Duration
	now      utils.Clock
}

// NewTemporaryKeyService 임시 키 서비스 생성
func NewTemporaryKeyService(db SQLExecutor, keys *ServerKeyConverter, validity time.Duration, now utils.Clock) TemporaryKeyService {
	return &temporaryKeyService{db: db, keys: keys, validity: validity, now: now}
}

func (s *temporaryKeyService) Create(ctx context.Context, req models.TemporaryKeyRequest) (models.TemporaryKeyResponse, error) {
	if req.JWT == "" {
		return models.TemporaryKeyResponse{}, newError(CodeInvalidRequest)
	}

	claims := &temporaryKeyRequestClaims{}
	var signer temporaryKeySigner
	var signerErr error
	_, err := jwt.ParseWithClaims(req.JWT, claims, func(token *jwt.Token) (interface{}, error) {
		c := token.Claims.(*temporaryKeyRequestClaims)
		if c.ApplicationKey == "" {
			signerErr = newError(CodeInvalidRequest)
			return nil, signerErr
		}
		signer, signerErr = s.resolveSigner(ctx, c)
		if signerErr != nil {
			return nil, signerErr
		}
		return signer.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if signerErr != nil && CodeOf(signerErr) != CodeInvalidRequest {
			return models.TemporaryKeyResponse{}, signerErr
		}
		logger.Warn("Temporary key request JWT verification failed: %v", err)
		return models.TemporaryKeyResponse{}, newError(CodeInvalidRequest)
	}

	now := s.now()
	key, err := s.generateAndStore(ctx, claims, now)
	if err != nil {
		return models.TemporaryKeyResponse{}, err
	}

	responseClaims := temporaryKeyResponseClaims{
		ApplicationKey:  key.ApplicationKey,
		ActivationID:    key.ActivationID,
		Challenge:       claims.Challenge,
		PublicKey:       key.PublicKey,
		IssuedAtMillis:  now.UnixMilli(),
		ExpiresAtMillis: key.ExpiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(key.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, responseClaims).SignedString(signer.privateKey)
	if err != nil {
		return models.TemporaryKeyResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	return models.TemporaryKeyResponse{JWT: signed}, nil
}

// resolveSigner app scope 는 마스터 키, activation scope 는 서버 키
func (s *temporaryKeyService) resolveSigner(ctx context.Context, c *temporaryKeyRequestClaims) (temporaryKeySigner, error) {
	version, err := findSupportedVersion(ctx, s.db, c.ApplicationKey)
	if err != nil {
		if CodeOf(err) == CodeInvalidApplication {
			return temporaryKeySigner{}, newError(CodeInvalidRequest)
		}
		return temporaryKeySigner{}, err
	}
	appSecret, err := base64.StdEncoding.DecodeString(version.ApplicationSecret)
	if err != nil {
		return temporaryKeySigner{}, newError(CodeInvalidRequest)
	}

	if c.ActivationID == "" {
		kp, err := findMasterKeyPair(ctx, s.db, version.ApplicationID)
		if err != nil {
			return temporaryKeySigner{}, err
		}
		priv, err := loadMasterPrivateKey(kp)
		if err != nil {
			return temporaryKeySigner{}, err
		}
		return temporaryKeySigner{secret: appSecret, privateKey: priv}, nil
	}

	a, err := findActivation(ctx, s.db, c.ActivationID, false)
	if err != nil {
		return temporaryKeySigner{}, err
	}
	if a == nil || a.Status != models.ActivationStatusActive || a.ApplicationID != version.ApplicationID {
		return temporaryKeySigner{}, newError(CodeInvalidRequest)
	}
	keys, err := loadActivationKeys(s.keys, a)
	if err != nil {
		return temporaryKeySigner{}, err
	}
	transport, err := keys.transportKey()
	if err != nil {
		return temporaryKeySigner{}, err
	}
	return temporaryKeySigner{
		secret:     utils.DeriveSecretKeyHmac(transport, appSecret),
		privateKey: keys.serverPrivate,
	}, nil
}

func (s *temporaryKeyService) generateAndStore(ctx context.Context, c *temporaryKeyRequestClaims, now time.Time) (models.TemporaryKey, error) {
	pair, err := utils.GenerateKeyPair()
	if err != nil {
		return models.TemporaryKey{}, wrapError(CodeGenericCryptographyError, err)
	}
	key := models.TemporaryKey{
		ID:             uuid.NewString(),
		ApplicationKey: c.ApplicationKey,
		ActivationID:   c.ActivationID,
		PublicKey:      base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&pair.PublicKey)),
		ExpiresAt:      now.Add(s.validity),
	}
	key.PrivateKey, key.PrivateKeyEncryption, err = s.keys.ToDB(utils.PrivateKeyToBytes(pair), key.ID, temporaryKeyContext(key.ApplicationKey, key.ActivationID))
	if err != nil {
		return models.TemporaryKey{}, wrapError(CodeGenericCryptographyError, err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO temporary_keys (id, application_key, activation_id, private_key_encryption, private_key_base64,
			public_key_base64, timestamp_expires)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.ApplicationKey, nullString(key.ActivationID), string(key.PrivateKeyEncryption), key.PrivateKey,
		key.PublicKey, utils.FormatDateTimeForDB(key.ExpiresAt),
	); err != nil {
		return models.TemporaryKey{}, err
	}
	return key, nil
}

func (s *temporaryKeyService) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM temporary_keys WHERE id = ?`, id)
	return err
}

func (s *temporaryKeyService) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM temporary_keys WHERE timestamp_expires < ?`,
		utils.FormatDateTimeForDB(s.now()))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func temporaryKeyContext(applicationKey, activationID string) string {
	return applicationKey + "&" + activationID
}

// lookupTemporaryPrivateKey 없음, 만료, 범위 불일치는 모두 MISSING_TEMPORARY_KEY
func lookupTemporaryPrivateKey(ctx context.Context, q Querier, conv *ServerKeyConverter, id, applicationKey, activationID string, now time.Time) (*ecdsa.PrivateKey, error) {
	var key models.TemporaryKey
	var activation sql.NullString
	var encryption, expires string
	err := q.QueryRowContext(ctx, `
		SELECT id, application_key, activation_id, private_key_encryption, private_key_base64, public_key_base64, timestamp_expires
		FROM temporary_keys WHERE id = ?`, id,
	).Scan(&key.ID, &key.ApplicationKey, &activation, &encryption, &key.PrivateKey, &key.PublicKey, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Error("Missing temporary key pair with ID: %s", id)
		return nil, newError(CodeMissingTemporaryKey)
	}
	if err != nil {
		return nil, err
	}
	key.ActivationID = activation.String
	key.PrivateKeyEncryption = models.EncryptionMode(encryption)
	key.ExpiresAt, err = utils.ParseDBDate(expires)
	if err != nil {
		logger.Error("Temporary key pair has invalid expiration, ID: %s, error: %v", id, err)
		return nil, newError(CodeMissingTemporaryKey)
	}

	if key.ExpiresAt.Before(now) {
		logger.Error("Requesting expired temporary key pair with ID: %s", id)
		return nil, newError(CodeMissingTemporaryKey)
	}
	if key.ApplicationKey != applicationKey || key.ActivationID != activationID {
		logger.Error("Temporary key does not match request parameters, ID: %s", id)
		return nil, newError(CodeMissingTemporaryKey)
	}

	raw, err := conv.FromDB(key.PrivateKey, key.PrivateKeyEncryption, key.ID, temporaryKeyContext(key.ApplicationKey, key.ActivationID))
	if err != nil {
		return nil, newError(CodeMissingTemporaryKey)
	}
	priv, err := utils.BytesToPrivateKey(raw)
	if err != nil {
		return nil, newError(CodeMissingTemporaryKey)
	}
	return priv, nil
}

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strconv"

	"powerauthserver/config"
	"powerauthserver/ecies"
	"powerauthserver/identifier"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// RecoveryService 복구 코드와 PUK 관리
type RecoveryService interface {
	CreateRecoveryCode(ctx context.Context, req models.CreateRecoveryCodeRequest) (models.CreateRecoveryCodeResponse, error)
	ConfirmRecoveryCode(ctx context.Context, req models.ConfirmRecoveryCodeRequest) (models.ConfirmRecoveryCodeResponse, error)
	LookupRecoveryCodes(ctx context.Context, req models.LookupRecoveryCodesRequest) ([]models.RecoveryCode, error)
	RevokeRecoveryCodes(ctx context.Context, req models.RevokeRecoveryCodesRequest) (models.RevokeRecoveryCodesResponse, error)
	GetRecoveryConfig(ctx context.Context, applicationID int64) (models.RecoveryConfig, error)
	UpdateRecoveryConfig(ctx context.Context, req models.UpdateRecoveryConfigRequest) (models.RecoveryConfig, error)
}

type recoveryService struct {
	db      SQLExecutor
	keys    *ServerKeyConverter
	factory *eciesFactory
	cfg     config.RecoveryConfig
	now     utils.Clock
}

// NewRecoveryService 복구 서비스 생성
func NewRecoveryService(db SQLExecutor, keys *ServerKeyConverter, replay ReplayService, cfg config.RecoveryConfig, now utils.Clock) RecoveryService {
	return &recoveryService{
		db:      db,
		keys:    keys,
		factory: &eciesFactory{keys: keys, replay: replay, now: now},
		cfg:     cfg,
		now:     now,
	}
}

func (s *recoveryService) CreateRecoveryCode(ctx context.Context, req models.CreateRecoveryCodeRequest) (models.CreateRecoveryCodeResponse, error) {
	if req.UserID == "" || req.PukCount < 1 || req.PukCount > s.cfg.MaxPostcardPukCount {
		return models.CreateRecoveryCodeResponse{}, newError(CodeInvalidRequest)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.CreateRecoveryCodeResponse, error) {
		if _, err := findApplication(ctx, tx, req.ApplicationID); err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				return models.CreateRecoveryCodeResponse{}, newError(CodeInvalidRequest)
			}
			return models.CreateRecoveryCodeResponse{}, err
		}

		cfg, err := findRecoveryConfig(ctx, tx, req.ApplicationID)
		if err != nil {
			return models.CreateRecoveryCodeResponse{}, err
		}
		if cfg == nil || !cfg.ActivationRecoveryEnabled || !cfg.RecoveryPostcardEnabled {
			return models.CreateRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}
		if cfg.PostcardPrivateKey == "" || cfg.RemotePostcardPublicKey == "" {
			return models.CreateRecoveryCodeResponse{}, newError(CodeInvalidRecoveryConfiguration)
		}

		if !cfg.AllowMultipleRecoveryCodes {
			existing, err := queryRecoveryCodes(ctx, tx, recoveryCodeFilter{ApplicationID: &req.ApplicationID, UserID: req.UserID})
			if err != nil {
				return models.CreateRecoveryCodeResponse{}, err
			}
			for _, c := range existing {
				if c.ActivationID == "" && (c.Status == models.RecoveryCodeStatusCreated || c.Status == models.RecoveryCodeStatusActive) {
					return models.CreateRecoveryCodeResponse{}, newError(CodeRecoveryCodeAlreadyExists)
				}
			}
		}

		secret, err := s.postcardSecret(cfg)
		if err != nil {
			return models.CreateRecoveryCodeResponse{}, err
		}

		var derivation identifier.RecoveryCodeDerivation
		var nonce []byte
		for i := 0; i < s.cfg.GenerateIterations; i++ {
			candidateNonce, err := utils.RandomBytes(16)
			if err != nil {
				return models.CreateRecoveryCodeResponse{}, wrapError(CodeGenericCryptographyError, err)
			}
			candidate, err := identifier.DeriveRecoveryCode(secret, candidateNonce, req.PukCount)
			if err != nil {
				return models.CreateRecoveryCodeResponse{}, wrapError(CodeGenericCryptographyError, err)
			}
			exists, err := recoveryCodeExists(ctx, tx, req.ApplicationID, candidate.RecoveryCode)
			if err != nil {
				return models.CreateRecoveryCodeResponse{}, err
			}
			if !exists {
				derivation, nonce = candidate, candidateNonce
				break
			}
		}
		if derivation.RecoveryCode == "" || len(derivation.Puks) != req.PukCount {
			return models.CreateRecoveryCodeResponse{}, newError(CodeUnableToGenerateRecoveryCode)
		}

		now := s.now()
		rc := &models.RecoveryCode{
			ApplicationID:     req.ApplicationID,
			UserID:            req.UserID,
			Code:              derivation.RecoveryCode,
			CodeMasked:        identifier.MaskRecoveryCode(derivation.RecoveryCode),
			Status:            models.RecoveryCodeStatusCreated,
			MaxFailedAttempts: s.cfg.MaxFailedAttempts,
			TimestampCreated:  now,
		}
		resp := models.CreateRecoveryCodeResponse{
			Nonce:  base64.StdEncoding.EncodeToString(nonce),
			UserID: req.UserID,
			Status: models.RecoveryCodeStatusCreated,
		}
		for i := 1; i <= req.PukCount; i++ {
			p, err := newPuk(s.keys, rc, int64(i), derivation.Puks[i])
			if err != nil {
				return models.CreateRecoveryCodeResponse{}, err
			}
			rc.Puks = append(rc.Puks, p)
			resp.Puks = append(resp.Puks, models.RecoveryPukDetail{
				PukIndex:           int64(i),
				PukDerivationIndex: derivation.PukDerivationIndexes[i],
			})
		}
		if err := insertRecoveryCode(ctx, tx, rc); err != nil {
			return models.CreateRecoveryCodeResponse{}, err
		}

		resp.RecoveryCodeID = rc.ID
		resp.RecoveryCodeMasked = rc.CodeMasked
		logger.WithFields(map[string]interface{}{
			"application_id":   req.ApplicationID,
			"recovery_code_id": rc.ID,
		}).Info("postcard recovery code created")
		return resp, nil
	})
}

// postcardSecret ECDH(postcard private, remote public) 16바이트 축약
func (s *recoveryService) postcardSecret(cfg *models.RecoveryConfig) ([]byte, error) {
	raw, err := s.keys.FromDB(cfg.PostcardPrivateKey, cfg.PostcardPrivateKeyEncryption, postcardKeyOwner(cfg.ApplicationID), "")
	if err != nil {
		return nil, err
	}
	priv, err := utils.BytesToPrivateKey(raw)
	if err != nil {
		return nil, wrapError(CodeInvalidKeyFormat, err)
	}
	pubBytes, err := base64.StdEncoding.DecodeString(cfg.RemotePostcardPublicKey)
	if err != nil {
		return nil, wrapError(CodeInvalidKeyFormat, err)
	}
	pub, err := utils.BytesToPublicKey(pubBytes)
	if err != nil {
		return nil, wrapError(CodeInvalidKeyFormat, err)
	}
	shared, err := utils.SharedSecret(priv, pub)
	if err != nil {
		return nil, wrapError(CodeGenericCryptographyError, err)
	}
	return utils.Reduce32To16(shared), nil
}

func postcardKeyOwner(applicationID int64) string {
	return "postcard&" + strconv.FormatInt(applicationID, 10)
}

func (s *recoveryService) ConfirmRecoveryCode(ctx context.Context, req models.ConfirmRecoveryCodeRequest) (models.ConfirmRecoveryCodeResponse, error) {
	if req.ActivationID == "" || req.ApplicationKey == "" {
		return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ConfirmRecoveryCodeResponse, error) {
		a, err := findActivation(ctx, tx, req.ActivationID, false)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		if a == nil {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeActivationNotFound)
		}
		env, err := parseEncryptedRequest(req.EncryptedRequest)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}

		cfg, err := findRecoveryConfig(ctx, tx, a.ApplicationID)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		if cfg == nil || !cfg.ActivationRecoveryEnabled {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}
		if a.Version != 3 {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}
		if a.Status != models.ActivationStatusActive {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeActivationIncorrectState)
		}

		version, err := findSupportedVersion(ctx, tx, req.ApplicationKey)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		if version.ApplicationID != a.ApplicationID {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidApplication)
		}

		d, err := s.factory.activationDecryptor(ctx, tx, version, a, ecies.SharedInfo1ConfirmRecoveryCode, &env)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		plain, err := decryptEnvelope(d, env)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		var layer2 models.ConfirmRecoveryCodeLayer2Request
		if err := json.Unmarshal(plain, &layer2); err != nil {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeDecryptionFailed)
		}
		if layer2.RecoveryCode == "" || !identifier.ValidateCode(layer2.RecoveryCode) {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}

		rc, err := findRecoveryCode(ctx, tx, version.ApplicationID, layer2.RecoveryCode, true)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		if rc == nil {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeRecoveryCodeNotFound)
		}
		if rc.UserID != a.UserID {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}
		inCreated := rc.Status == models.RecoveryCodeStatusCreated
		alreadyConfirmed := rc.Status == models.RecoveryCodeStatusActive
		if !inCreated && !alreadyConfirmed {
			return models.ConfirmRecoveryCodeResponse{}, newError(CodeInvalidRequest)
		}

		payload, err := json.Marshal(models.ConfirmRecoveryCodeLayer2Response{AlreadyConfirmed: alreadyConfirmed})
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}
		encrypted, err := encryptEnvelope(d, payload, env)
		if err != nil {
			return models.ConfirmRecoveryCodeResponse{}, err
		}

		if inCreated {
			rc.Status = models.RecoveryCodeStatusActive
			rc.TimestampLastChange = s.now()
			if err := updateRecoveryCode(ctx, tx, rc); err != nil {
				return models.ConfirmRecoveryCodeResponse{}, err
			}
		}
		return models.ConfirmRecoveryCodeResponse{
			ActivationID:      a.ActivationID,
			UserID:            rc.UserID,
			EncryptedResponse: encrypted,
		}, nil
	})
}

func (s *recoveryService) LookupRecoveryCodes(ctx context.Context, req models.LookupRecoveryCodesRequest) ([]models.RecoveryCode, error) {
	if req.ApplicationID == nil && req.UserID == "" && req.ActivationID == "" {
		return nil, newError(CodeInvalidRequest)
	}
	if req.ApplicationID != nil {
		if _, err := findApplication(ctx, s.db, *req.ApplicationID); err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				return nil, newError(CodeInvalidRequest)
			}
			return nil, err
		}
	}

	codes, err := queryRecoveryCodes(ctx, s.db, recoveryCodeFilter{
		ApplicationID: req.ApplicationID,
		UserID:        req.UserID,
		ActivationID:  req.ActivationID,
	})
	if err != nil {
		return nil, err
	}

	result := []models.RecoveryCode{}
	for _, c := range codes {
		if req.RecoveryCodeStatus != "" && c.Status != req.RecoveryCodeStatus {
			continue
		}
		if req.RecoveryPukStatus != "" {
			var puks []models.RecoveryPuk
			for _, p := range c.Puks {
				if p.Status == req.RecoveryPukStatus {
					puks = append(puks, p)
				}
			}
			if len(puks) == 0 {
				continue
			}
			c.Puks = puks
		}
		result = append(result, *c)
	}
	return result, nil
}

func (s *recoveryService) RevokeRecoveryCodes(ctx context.Context, req models.RevokeRecoveryCodesRequest) (models.RevokeRecoveryCodesResponse, error) {
	if len(req.RecoveryCodeIDs) == 0 {
		return models.RevokeRecoveryCodesResponse{}, newError(CodeInvalidRequest)
	}
	for _, id := range req.RecoveryCodeIDs {
		if id < 0 {
			return models.RevokeRecoveryCodesResponse{}, newError(CodeInvalidRequest)
		}
	}

	ids := append([]int64(nil), req.RecoveryCodeIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.RevokeRecoveryCodesResponse, error) {
		now := s.now()
		revoked := 0
		for _, id := range ids {
			c, err := findRecoveryCodeByID(ctx, tx, id, true)
			if err != nil {
				return models.RevokeRecoveryCodesResponse{}, err
			}
			if c == nil || !revoke(c, now) {
				continue
			}
			if err := updateRecoveryCode(ctx, tx, c); err != nil {
				return models.RevokeRecoveryCodesResponse{}, err
			}
			revoked++
		}
		return models.RevokeRecoveryCodesResponse{Revoked: revoked > 0}, nil
	})
}

func (s *recoveryService) GetRecoveryConfig(ctx context.Context, applicationID int64) (models.RecoveryConfig, error) {
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.RecoveryConfig, error) {
		if _, err := findApplication(ctx, tx, applicationID); err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				return models.RecoveryConfig{}, newError(CodeInvalidRequest)
			}
			return models.RecoveryConfig{}, err
		}
		cfg, err := findRecoveryConfig(ctx, tx, applicationID)
		if err != nil {
			return models.RecoveryConfig{}, err
		}
		if cfg == nil {
			cfg = &models.RecoveryConfig{ApplicationID: applicationID, PostcardPrivateKeyEncryption: models.EncryptionModeNone}
			if err := saveRecoveryConfig(ctx, tx, cfg); err != nil {
				return models.RecoveryConfig{}, err
			}
		}
		return *cfg, nil
	})
}

func (s *recoveryService) UpdateRecoveryConfig(ctx context.Context, req models.UpdateRecoveryConfigRequest) (models.RecoveryConfig, error) {
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.RecoveryConfig, error) {
		if _, err := findApplication(ctx, tx, req.ApplicationID); err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				return models.RecoveryConfig{}, newError(CodeInvalidRequest)
			}
			return models.RecoveryConfig{}, err
		}
		cfg, err := findRecoveryConfig(ctx, tx, req.ApplicationID)
		if err != nil {
			return models.RecoveryConfig{}, err
		}
		if cfg == nil {
			cfg = &models.RecoveryConfig{ApplicationID: req.ApplicationID, PostcardPrivateKeyEncryption: models.EncryptionModeNone}
		}

		if req.RecoveryPostcardEnabled && cfg.PostcardPrivateKey == "" {
			pair, err := utils.GenerateKeyPair()
			if err != nil {
				return models.RecoveryConfig{}, wrapError(CodeGenericCryptographyError, err)
			}
			stored, mode, err := s.keys.ToDB(utils.PrivateKeyToBytes(pair), postcardKeyOwner(req.ApplicationID), "")
			if err != nil {
				return models.RecoveryConfig{}, wrapError(CodeGenericCryptographyError, err)
			}
			cfg.PostcardPrivateKey = stored
			cfg.PostcardPrivateKeyEncryption = mode
			cfg.PostcardPublicKey = base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&pair.PublicKey))
		}

		if req.RemotePostcardPublicKey != "" {
			raw, err := base64.StdEncoding.DecodeString(req.RemotePostcardPublicKey)
			if err != nil {
				return models.RecoveryConfig{}, newError(CodeInvalidKeyFormat)
			}
			if _, err := utils.BytesToPublicKey(raw); err != nil {
				return models.RecoveryConfig{}, newError(CodeInvalidKeyFormat)
			}
			cfg.RemotePostcardPublicKey = req.RemotePostcardPublicKey
		}

		cfg.ActivationRecoveryEnabled = req.ActivationRecoveryEnabled
		cfg.RecoveryPostcardEnabled = req.RecoveryPostcardEnabled
		cfg.AllowMultipleRecoveryCodes = req.AllowMultipleRecoveryCodes
		if err := saveRecoveryConfig(ctx, tx, cfg); err != nil {
			return models.RecoveryConfig{}, err
		}
		return *cfg, nil
	})
}

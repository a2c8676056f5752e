package services

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"errors"

	"powerauthserver/ecies"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// EncryptionService 외부 서비스가 ECIES 요청을 직접 복호화할 수 있도록 envelope 파라미터를 제공한다
type EncryptionService interface {
	GetEciesDecryptor(ctx context.Context, req models.EciesDecryptorRequest) (models.EciesDecryptorResponse, error)
}

// eciesFactory 범위별 복호화기 생성. 서비스들이 공유한다
type eciesFactory struct {
	keys   *ServerKeyConverter
	replay ReplayService
	now    utils.Clock
}

// eciesEnvelope 복호화에 필요한 요청 필드
type eciesEnvelope struct {
	ephemeralPublicKey []byte
	cryptogram         ecies.Cryptogram
	params             ecies.Parameters
	version            string
	temporaryKeyID     string
}

func supportedEciesVersion(version string) bool {
	switch version {
	case ecies.Version30, ecies.Version31, ecies.Version32:
		return true
	}
	return false
}

// parseEncryptedRequest base64 필드를 디코딩한다. 형식 오류는 DECRYPTION_FAILED
func parseEncryptedRequest(req models.EncryptedRequest) (eciesEnvelope, error) {
	if !supportedEciesVersion(req.ProtocolVersion) {
		return eciesEnvelope{}, newError(CodeDecryptionFailed)
	}
	ephemeral, err := base64.StdEncoding.DecodeString(req.EphemeralPublicKey)
	if err != nil || len(ephemeral) == 0 {
		return eciesEnvelope{}, newError(CodeDecryptionFailed)
	}
	data, err := base64.StdEncoding.DecodeString(req.EncryptedData)
	if err != nil {
		return eciesEnvelope{}, newError(CodeDecryptionFailed)
	}
	mac, err := base64.StdEncoding.DecodeString(req.Mac)
	if err != nil {
		return eciesEnvelope{}, newError(CodeDecryptionFailed)
	}
	nonce, err := decodeBase64(req.Nonce)
	if err != nil {
		return eciesEnvelope{}, newError(CodeDecryptionFailed)
	}
	return eciesEnvelope{
		ephemeralPublicKey: ephemeral,
		cryptogram:         ecies.Cryptogram{EphemeralPublicKey: ephemeral, EncryptedData: data, Mac: mac},
		params:             ecies.Parameters{Nonce: nonce, Timestamp: req.Timestamp},
		version:            req.ProtocolVersion,
		temporaryKeyID:     req.TemporaryKeyID,
	}, nil
}

// applicationDecryptor application scope 복호화기. 마스터 키 또는 임시 키 사용
func (f *eciesFactory) applicationDecryptor(ctx context.Context, q Querier, version *models.ApplicationVersion, sharedInfo1 ecies.SharedInfo1, env *eciesEnvelope) (*ecies.Decryptor, error) {
	var priv *ecdsa.PrivateKey
	if env.temporaryKeyID != "" {
		key, err := lookupTemporaryPrivateKey(ctx, q, f.keys, env.temporaryKeyID, version.ApplicationKey, "", f.now())
		if err != nil {
			return nil, err
		}
		priv = key
	} else {
		kp, err := findMasterKeyPair(ctx, q, version.ApplicationID)
		if err != nil {
			return nil, err
		}
		key, err := loadMasterPrivateKey(kp)
		if err != nil {
			return nil, err
		}
		priv = key
	}

	if err := f.checkReplay(ctx, q, models.UniqueValueApplicationScope, env, version.ApplicationKey); err != nil {
		return nil, err
	}
	env.params.AssociatedData = ecies.AssociatedData(env.version, version.ApplicationKey, "")
	return ecies.NewDecryptor(priv, sharedInfo1, ecies.ApplicationSharedInfo2(version.ApplicationSecret), env.version), nil
}

// activationDecryptor activation scope 복호화기. 서버 키 또는 임시 키 사용
func (f *eciesFactory) activationDecryptor(ctx context.Context, q Querier, version *models.ApplicationVersion, a *models.Activation, sharedInfo1 ecies.SharedInfo1, env *eciesEnvelope) (*ecies.Decryptor, error) {
	keys, err := loadActivationKeys(f.keys, a)
	if err != nil {
		return nil, err
	}
	transport, err := keys.transportKey()
	if err != nil {
		return nil, err
	}

	priv := keys.serverPrivate
	if env.temporaryKeyID != "" {
		priv, err = lookupTemporaryPrivateKey(ctx, q, f.keys, env.temporaryKeyID, version.ApplicationKey, a.ActivationID, f.now())
		if err != nil {
			return nil, err
		}
	}

	if err := f.checkReplay(ctx, q, models.UniqueValueActivationScope, env, a.ActivationID); err != nil {
		return nil, err
	}
	env.params.AssociatedData = ecies.AssociatedData(env.version, version.ApplicationKey, a.ActivationID)
	sharedInfo2 := ecies.ActivationSharedInfo2(transport, version.ApplicationSecret)
	return ecies.NewDecryptor(priv, sharedInfo1, sharedInfo2, env.version), nil
}

// checkReplay timestamp 가 있는 요청만 검사한다
func (f *eciesFactory) checkReplay(ctx context.Context, q Querier, kind models.UniqueValueType, env *eciesEnvelope, identifier string) error {
	if env.params.Timestamp == 0 || f.replay == nil {
		return nil
	}
	return f.replay.CheckAndPersist(ctx, q, kind, env.params.Timestamp, env.ephemeralPublicKey, env.params.Nonce, identifier)
}

// decrypt 실패 원인과 관계없이 DECRYPTION_FAILED
func decryptEnvelope(d *ecies.Decryptor, env eciesEnvelope) ([]byte, error) {
	plain, err := d.DecryptRequest(env.cryptogram, env.params)
	if err != nil {
		logger.Warn("ECIES request decryption failed: %v", err)
		return nil, newError(CodeDecryptionFailed)
	}
	return plain, nil
}

// encryptEnvelope 응답 암호화 후 base64 필드로 변환
func encryptEnvelope(d *ecies.Decryptor, plaintext []byte, env eciesEnvelope) (models.EncryptedResponse, error) {
	c, p, err := d.EncryptResponse(plaintext, env.params.AssociatedData)
	if err != nil {
		return models.EncryptedResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	resp := models.EncryptedResponse{
		EncryptedData: base64.StdEncoding.EncodeToString(c.EncryptedData),
		Mac:           base64.StdEncoding.EncodeToString(c.Mac),
		Timestamp:     p.Timestamp,
	}
	if env.version == ecies.Version32 && len(p.Nonce) > 0 {
		resp.Nonce = base64.StdEncoding.EncodeToString(p.Nonce)
	}
	return resp, nil
}

type encryptionService struct {
	db      SQLExecutor
	factory *eciesFactory
}

// NewEncryptionService ECIES 파라미터 서비스 생성
func NewEncryptionService(db SQLExecutor, keys *ServerKeyConverter, replay ReplayService, now utils.Clock) EncryptionService {
	return &encryptionService{db: db, factory: &eciesFactory{keys: keys, replay: replay, now: now}}
}

func (s *encryptionService) GetEciesDecryptor(ctx context.Context, req models.EciesDecryptorRequest) (models.EciesDecryptorResponse, error) {
	if req.ApplicationKey == "" || req.EphemeralPublicKey == "" {
		logger.Warn("Invalid request for ECIES decryptor")
		return models.EciesDecryptorResponse{}, newError(CodeDecryptionFailed)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.EciesDecryptorResponse, error) {
		env, err := parseEncryptedRequest(models.EncryptedRequest{
			EphemeralPublicKey: req.EphemeralPublicKey,
			Nonce:              req.Nonce,
			Timestamp:          req.Timestamp,
			ProtocolVersion:    req.ProtocolVersion,
			TemporaryKeyID:     req.TemporaryKeyID,
		})
		if err != nil {
			return models.EciesDecryptorResponse{}, err
		}
		if err := ecies.ValidateParameters(env.version, env.params); err != nil {
			return models.EciesDecryptorResponse{}, newError(CodeDecryptionFailed)
		}

		version, err := findSupportedVersion(ctx, tx, req.ApplicationKey)
		if err != nil {
			return models.EciesDecryptorResponse{}, err
		}

		var d *ecies.Decryptor
		if req.ActivationID == "" {
			d, err = s.factory.applicationDecryptor(ctx, tx, version, ecies.SharedInfo1ApplicationScopeGeneric, &env)
		} else {
			a, ferr := findActivation(ctx, tx, req.ActivationID, false)
			if ferr != nil {
				return models.EciesDecryptorResponse{}, ferr
			}
			if a == nil {
				return models.EciesDecryptorResponse{}, newError(CodeActivationNotFound)
			}
			if a.Status != models.ActivationStatusActive {
				return models.EciesDecryptorResponse{}, newError(CodeActivationIncorrectState)
			}
			if a.ApplicationID != version.ApplicationID {
				return models.EciesDecryptorResponse{}, newError(CodeInvalidApplication)
			}
			d, err = s.factory.activationDecryptor(ctx, tx, version, a, ecies.SharedInfo1ActivationScopeGeneric, &env)
		}
		if err != nil {
			return models.EciesDecryptorResponse{}, err
		}

		key, err := d.DeriveEnvelope(env.ephemeralPublicKey)
		if err != nil {
			if errors.Is(err, ecies.ErrDecryptionFailed) {
				return models.EciesDecryptorResponse{}, newError(CodeDecryptionFailed)
			}
			return models.EciesDecryptorResponse{}, wrapError(CodeGenericCryptographyError, err)
		}
		return models.EciesDecryptorResponse{
			SecretKey:   base64.StdEncoding.EncodeToString(key.Bytes()),
			SharedInfo2: base64.StdEncoding.EncodeToString(d.SharedInfo2()),
		}, nil
	})
}

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"powerauthserver/config"
	"powerauthserver/ecies"
	"powerauthserver/identifier"
	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/signature"
	"powerauthserver/utils"
)

const (
	maxUserIDLength = 255
	unknownPlatform = "unknown"
)

// ActivationService 활성화 수명주기 관리
type ActivationService interface {
	Init(ctx context.Context, req models.InitActivationRequest) (models.InitActivationResponse, error)
	Prepare(ctx context.Context, req models.PrepareActivationRequest) (models.PrepareActivationResponse, error)
	Create(ctx context.Context, req models.CreateActivationRequest) (models.CreateActivationResponse, error)
	Commit(ctx context.Context, req models.CommitActivationRequest) (models.CommitActivationResponse, error)
	UpdateOtp(ctx context.Context, req models.UpdateActivationOtpRequest) error
	Block(ctx context.Context, req models.BlockActivationRequest) (models.ActivationStatusChangeResponse, error)
	Unblock(ctx context.Context, activationID, externalUserID string) (models.ActivationStatusChangeResponse, error)
	Remove(ctx context.Context, req models.RemoveActivationRequest) (models.ActivationStatusChangeResponse, error)
	GetStatus(ctx context.Context, activationID, challenge string) (models.ActivationStatusResponse, error)
	List(ctx context.Context, userID string, applicationID *int64) ([]models.Activation, error)
	Lookup(ctx context.Context, req models.ActivationLookupRequest) ([]models.Activation, error)
	CreateUsingRecoveryCode(ctx context.Context, req models.RecoveryActivationRequest) (models.PrepareActivationResponse, error)
	ExpireAbandoned(ctx context.Context) (int, error)
	History(ctx context.Context, activationID string, from, to time.Time) ([]models.ActivationHistory, error)
	ListFlags(ctx context.Context, activationID string) (models.ActivationFlagsResponse, error)
	AddFlags(ctx context.Context, req models.ActivationFlagsRequest) (models.ActivationFlagsResponse, error)
	RemoveFlags(ctx context.Context, req models.ActivationFlagsRequest) (models.ActivationFlagsResponse, error)
}

type activationService struct {
	db        SQLExecutor
	keys      *ServerKeyConverter
	factory   *eciesFactory
	notifier  Notifier
	otp       otpGate
	cfg       config.ActivationConfig
	recovery  config.RecoveryConfig
	lookahead int
	now       utils.Clock
}

// NewActivationService 활성화 서비스 생성
func NewActivationService(db SQLExecutor, keys *ServerKeyConverter, replay ReplayService, notifier Notifier, cfg *config.Config, now utils.Clock) ActivationService {
	return &activationService{
		db:        db,
		keys:      keys,
		factory:   &eciesFactory{keys: keys, replay: replay, now: now},
		notifier:  notifier,
		otp:       otpGate{notifier: notifier},
		cfg:       cfg.Activation,
		recovery:  cfg.Recovery,
		lookahead: cfg.Signature.Lookahead,
		now:       now,
	}
}

// initParams Init, Create, 복구 활성화가 공유하는 초기화 입력
type initParams struct {
	userID          string
	applicationID   int64
	maxFailureCount *int64
	expiration      *time.Time
	otp             string
	otpValidation   models.OtpValidation
}

func (p initParams) validate() error {
	if strings.TrimSpace(p.userID) == "" || len(p.userID) > maxUserIDLength {
		return newError(CodeNoUserID)
	}
	if p.applicationID <= 0 {
		return newError(CodeNoApplicationID)
	}
	if p.maxFailureCount != nil && *p.maxFailureCount <= 0 {
		return newError(CodeInvalidRequest)
	}
	if (p.otp != "") != (p.otpValidation != models.OtpValidationNone) {
		return newError(CodeInvalidRequest)
	}
	return nil
}

// initActivation CREATED 활성화를 저장하고 활성화 코드 서명을 반환한다
func (s *activationService) initActivation(ctx context.Context, tx *Tx, p initParams, now time.Time) (*models.Activation, string, error) {
	if err := p.validate(); err != nil {
		return nil, "", err
	}
	if _, err := findApplication(ctx, tx, p.applicationID); err != nil {
		return nil, "", err
	}
	kp, err := findMasterKeyPair(ctx, tx, p.applicationID)
	if err != nil {
		return nil, "", err
	}
	masterKey, err := loadMasterPrivateKey(kp)
	if err != nil {
		return nil, "", err
	}

	var activationID string
	for i := 0; i < s.cfg.GenerateIDIterations; i++ {
		candidate := uuid.NewString()
		exists, err := activationIDExists(ctx, tx, candidate)
		if err != nil {
			return nil, "", err
		}
		if !exists {
			activationID = candidate
			break
		}
	}
	if activationID == "" {
		logger.Error("Unable to generate activation ID")
		return nil, "", newError(CodeUnableToGenerateActivationID)
	}

	var code string
	for i := 0; i < s.cfg.GenerateCodeIterations; i++ {
		candidate, err := identifier.GenerateActivationCode()
		if err != nil {
			return nil, "", wrapError(CodeGenericCryptographyError, err)
		}
		inUse, err := activationCodeInUse(ctx, tx, p.applicationID, candidate)
		if err != nil {
			return nil, "", err
		}
		if !inUse {
			code = candidate
			break
		}
	}
	if code == "" {
		logger.Error("Unable to generate activation code")
		return nil, "", newError(CodeUnableToGenerateActivationCode)
	}

	codeSignature, err := utils.SignECDSA(masterKey, []byte(code))
	if err != nil {
		return nil, "", wrapError(CodeGenericCryptographyError, err)
	}

	serverKey, err := utils.GenerateKeyPair()
	if err != nil {
		return nil, "", wrapError(CodeGenericCryptographyError, err)
	}
	storedKey, mode, err := s.keys.ToDB(utils.PrivateKeyToBytes(serverKey), p.userID, activationID)
	if err != nil {
		return nil, "", wrapError(CodeGenericCryptographyError, err)
	}

	maxFailed := s.cfg.MaxFailedAttempts
	if p.maxFailureCount != nil {
		maxFailed = *p.maxFailureCount
	}
	expires := now.Add(s.cfg.ValidityBeforeActive.Duration)
	if p.expiration != nil {
		expires = p.expiration.UTC()
	}

	a := &models.Activation{
		ActivationID:               activationID,
		ApplicationID:              p.applicationID,
		UserID:                     p.userID,
		ActivationCode:             code,
		Status:                     models.ActivationStatusCreated,
		ServerPublicKey:            base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(&serverKey.PublicKey)),
		ServerPrivateKey:           storedKey,
		ServerPrivateKeyEncryption: mode,
		MasterKeyPairID:            kp.ID,
		MaxFailedAttempts:          maxFailed,
		OtpValidation:              p.otpValidation,
		Flags:                      []string{},
		CreatedAt:                  now,
		LastUsedAt:                 now,
		LastChangeAt:               now,
		ExpiresAt:                  expires,
	}
	if p.otp != "" {
		hash, err := utils.HashPassword(p.otp)
		if err != nil {
			return nil, "", wrapError(CodeGenericCryptographyError, err)
		}
		a.OtpHash = hash
	}

	if err := insertActivation(ctx, tx, a); err != nil {
		return nil, "", err
	}
	if err := insertHistory(ctx, tx, a, now, "", ""); err != nil {
		return nil, "", err
	}
	notifyAfterCommit(ctx, tx, s.notifier, a)

	logger.WithFields(map[string]interface{}{
		"activation_id":  a.ActivationID,
		"application_id": a.ApplicationID,
	}).Info("activation initialized")
	return a, base64.StdEncoding.EncodeToString(codeSignature), nil
}

func (s *activationService) Init(ctx context.Context, req models.InitActivationRequest) (models.InitActivationResponse, error) {
	mode, ok := models.ParseOtpValidation(req.OtpValidation)
	if !ok {
		return models.InitActivationResponse{}, newError(CodeInvalidRequest)
	}
	p := initParams{
		userID:          req.UserID,
		applicationID:   req.ApplicationID,
		maxFailureCount: req.MaxFailureCount,
		expiration:      req.TimestampExpiration,
		otp:             req.ActivationOtp,
		otpValidation:   mode,
	}
	if err := p.validate(); err != nil {
		return models.InitActivationResponse{}, err
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.InitActivationResponse, error) {
		a, sig, err := s.initActivation(ctx, tx, p, s.now())
		if err != nil {
			return models.InitActivationResponse{}, err
		}
		return models.InitActivationResponse{
			ActivationID:        a.ActivationID,
			ActivationCode:      a.ActivationCode,
			ActivationSignature: sig,
			UserID:              a.UserID,
			ApplicationID:       a.ApplicationID,
		}, nil
	})
}

// deactivatePendingActivation 만료된 대기 활성화를 REMOVED 로 바꾼다. 호출자는 행을 잠근 상태여야 한다
func deactivatePendingActivation(ctx context.Context, q Querier, notifier Notifier, a *models.Activation, now time.Time) (bool, error) {
	if !a.IsExpired(now) {
		return false, nil
	}
	logger.Info("Deactivating pending activation, activation ID: %s", a.ActivationID)
	a.Status = models.ActivationStatusRemoved
	if err := saveActivationAndLogChange(ctx, q, a, now, "", ""); err != nil {
		return false, err
	}
	notifyAfterCommit(ctx, q, notifier, a)
	return true, nil
}

// stateError 만료 처리로 이미 기록된 변경이 있으면 커밋되도록 Persisted 로 반환
func stateError(deactivated bool, code ErrorCode) error {
	if deactivated {
		return persisted(code)
	}
	return newError(code)
}

// validateCreatedActivation CREATED 상태, 애플리케이션 일치, 코드 길이 확인
func validateCreatedActivation(a *models.Activation, applicationID int64) bool {
	return a.Status == models.ActivationStatusCreated &&
		a.ApplicationID == applicationID &&
		len(a.ActivationCode) == identifier.CodeLength
}

// parseLayer2 복호화된 키 교환 요청
func parseLayer2(plain []byte) (models.ActivationLayer2Request, error) {
	var layer2 models.ActivationLayer2Request
	if err := json.Unmarshal(plain, &layer2); err != nil {
		return models.ActivationLayer2Request{}, newError(CodeInvalidInputFormat)
	}
	return layer2, nil
}

// parseDevicePublicKey 저장용으로 정규화된(압축) 디바이스 공개키
func parseDevicePublicKey(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	pub, err := utils.BytesToPublicKey(raw)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(utils.PublicKeyToBytes(pub)), nil
}

// applyKeyExchange 디바이스 정보와 새 해시 체인 카운터를 기록한다
func applyKeyExchange(a *models.Activation, layer2 models.ActivationLayer2Request, devicePublicKey string, status models.ActivationStatus) error {
	ctr, err := signature.InitHashChain()
	if err != nil {
		return wrapError(CodeGenericCryptographyError, err)
	}
	a.Status = status
	a.DevicePublicKey = devicePublicKey
	a.ActivationName = layer2.ActivationName
	a.Extras = layer2.Extras
	a.DeviceInfo = layer2.DeviceInfo
	a.Platform = unknownPlatform
	if layer2.Platform != "" {
		a.Platform = strings.ToLower(layer2.Platform)
	}
	a.Version = currentCryptoVersion
	a.CtrData = ctr.Base64()
	return nil
}

// sealKeyExchange layer 2 응답을 암호화한다
func sealKeyExchange(d *ecies.Decryptor, env eciesEnvelope, a *models.Activation, recovery *models.ActivationRecovery) (models.PrepareActivationResponse, error) {
	payload, err := json.Marshal(models.ActivationLayer2Response{
		ActivationID:       a.ActivationID,
		CtrData:            a.CtrData,
		ServerPublicKey:    a.ServerPublicKey,
		ActivationRecovery: recovery,
	})
	if err != nil {
		return models.PrepareActivationResponse{}, err
	}
	encrypted, err := encryptEnvelope(d, payload, env)
	if err != nil {
		return models.PrepareActivationResponse{}, err
	}
	return models.PrepareActivationResponse{
		ActivationID:      a.ActivationID,
		UserID:            a.UserID,
		ApplicationID:     a.ApplicationID,
		ActivationStatus:  a.Status,
		EncryptedResponse: encrypted,
	}, nil
}

// maybeCreateRecoveryCode 복구가 활성화된 애플리케이션이면 활성화 전용 복구 코드를 만든다
func (s *activationService) maybeCreateRecoveryCode(ctx context.Context, tx *Tx, a *models.Activation, now time.Time) (*models.ActivationRecovery, error) {
	cfg, err := findRecoveryConfig(ctx, tx, a.ApplicationID)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.ActivationRecoveryEnabled {
		return nil, nil
	}
	return createActivationRecoveryCode(ctx, tx, s.keys, a, a.Status == models.ActivationStatusActive,
		s.recovery.MaxFailedAttempts, s.recovery.GenerateIterations, now)
}

func (s *activationService) Prepare(ctx context.Context, req models.PrepareActivationRequest) (models.PrepareActivationResponse, error) {
	if req.ActivationCode == "" || req.ApplicationKey == "" {
		return models.PrepareActivationResponse{}, newError(CodeInvalidRequest)
	}
	env, err := parseEncryptedRequest(req.EncryptedRequest)
	if err != nil {
		return models.PrepareActivationResponse{}, err
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.PrepareActivationResponse, error) {
		now := s.now()
		version, err := findSupportedVersion(ctx, tx, req.ApplicationKey)
		if err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				logger.Warn("Application version is incorrect, application key: %s", req.ApplicationKey)
				return models.PrepareActivationResponse{}, newError(CodeActivationExpired)
			}
			return models.PrepareActivationResponse{}, err
		}

		d, err := s.factory.applicationDecryptor(ctx, tx, version, ecies.SharedInfo1ActivationLayer2, &env)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		plain, err := decryptEnvelope(d, env)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		layer2, err := parseLayer2(plain)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}

		found, err := findCreatedActivationByCode(ctx, tx, version.ApplicationID, req.ActivationCode, false)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if found == nil {
			logger.Warn("Activation with activation code %s could not be obtained", req.ActivationCode)
			return models.PrepareActivationResponse{}, newError(CodeActivationNotFound)
		}
		a, err := findActivation(ctx, tx, found.ActivationID, true)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if a == nil {
			return models.PrepareActivationResponse{}, newError(CodeActivationNotFound)
		}

		deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, now)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if !validateCreatedActivation(a, version.ApplicationID) {
			logger.Info("Activation state is invalid, activation ID: %s", a.ActivationID)
			return models.PrepareActivationResponse{}, stateError(deactivated, CodeActivationExpired)
		}
		if err := s.otp.validate(ctx, tx, a, models.OtpValidationOnKeyExchange, layer2.ActivationOtp, "", now); err != nil {
			return models.PrepareActivationResponse{}, err
		}

		devicePublicKey, err := parseDevicePublicKey(layer2.DevicePublicKey)
		if err != nil {
			logger.Warn("Invalid public key, activation ID: %s", a.ActivationID)
			a.Status = models.ActivationStatusRemoved
			if serr := saveActivationAndLogChange(ctx, tx, a, now, "", ""); serr != nil {
				return models.PrepareActivationResponse{}, serr
			}
			notifyAfterCommit(ctx, tx, s.notifier, a)
			return models.PrepareActivationResponse{}, persisted(CodeActivationNotFound)
		}

		status := models.ActivationStatusPendingCommit
		if layer2.ActivationOtp != "" {
			status = models.ActivationStatusActive
		}
		if err := applyKeyExchange(a, layer2, devicePublicKey, status); err != nil {
			return models.PrepareActivationResponse{}, err
		}
		recovery, err := s.maybeCreateRecoveryCode(ctx, tx, a, now)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		resp, err := sealKeyExchange(d, env, a, recovery)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}

		if err := saveActivationAndLogChange(ctx, tx, a, now, "", ""); err != nil {
			return models.PrepareActivationResponse{}, err
		}
		notifyAfterCommit(ctx, tx, s.notifier, a)
		return resp, nil
	})
}

func (s *activationService) Create(ctx context.Context, req models.CreateActivationRequest) (models.CreateActivationResponse, error) {
	if req.ApplicationKey == "" {
		return models.CreateActivationResponse{}, newError(CodeInvalidRequest)
	}
	env, err := parseEncryptedRequest(req.EncryptedRequest)
	if err != nil {
		return models.CreateActivationResponse{}, err
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.CreateActivationResponse, error) {
		now := s.now()
		version, err := findSupportedVersion(ctx, tx, req.ApplicationKey)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}

		mode := models.OtpValidationNone
		if req.ActivationOtp != "" {
			mode = models.OtpValidationOnKeyExchange
		}
		a, _, err := s.initActivation(ctx, tx, initParams{
			userID:          req.UserID,
			applicationID:   version.ApplicationID,
			maxFailureCount: req.MaxFailureCount,
			expiration:      req.TimestampExpiration,
			otp:             req.ActivationOtp,
			otpValidation:   mode,
		}, now)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}
		if a.IsExpired(now) || !validateCreatedActivation(a, version.ApplicationID) {
			return models.CreateActivationResponse{}, newError(CodeActivationExpired)
		}

		d, err := s.factory.applicationDecryptor(ctx, tx, version, ecies.SharedInfo1ActivationLayer2, &env)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}
		plain, err := decryptEnvelope(d, env)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}
		layer2, err := parseLayer2(plain)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}

		// 방금 만든 레코드는 커밋하지 않는다
		if err := s.otp.validate(ctx, tx, a, models.OtpValidationOnKeyExchange, layer2.ActivationOtp, "", now); err != nil {
			return models.CreateActivationResponse{}, newError(CodeOf(err))
		}
		devicePublicKey, err := parseDevicePublicKey(layer2.DevicePublicKey)
		if err != nil {
			logger.Warn("Device public key is invalid, activation ID: %s", a.ActivationID)
			return models.CreateActivationResponse{}, newError(CodeActivationExpired)
		}

		status := models.ActivationStatusPendingCommit
		if layer2.ActivationOtp != "" {
			status = models.ActivationStatusActive
		}
		if err := applyKeyExchange(a, layer2, devicePublicKey, status); err != nil {
			return models.CreateActivationResponse{}, err
		}
		recovery, err := s.maybeCreateRecoveryCode(ctx, tx, a, now)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}
		resp, err := sealKeyExchange(d, env, a, recovery)
		if err != nil {
			return models.CreateActivationResponse{}, err
		}
		if err := saveActivationAndLogChange(ctx, tx, a, now, "", ""); err != nil {
			return models.CreateActivationResponse{}, err
		}
		notifyAfterCommit(ctx, tx, s.notifier, a)
		return resp, nil
	})
}

func (s *activationService) Commit(ctx context.Context, req models.CommitActivationRequest) (models.CommitActivationResponse, error) {
	if req.ActivationID == "" {
		return models.CommitActivationResponse{}, newError(CodeInvalidRequest)
	}
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.CommitActivationResponse, error) {
		now := s.now()
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return models.CommitActivationResponse{}, err
		}
		if a == nil {
			logger.Info("Activation does not exist, activation ID: %s", req.ActivationID)
			return models.CommitActivationResponse{}, newError(CodeActivationNotFound)
		}
		deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, now)
		if err != nil {
			return models.CommitActivationResponse{}, err
		}
		if a.Status == models.ActivationStatusRemoved {
			logger.Info("Activation is already REMOVED, activation ID: %s", a.ActivationID)
			return models.CommitActivationResponse{}, stateError(deactivated, CodeActivationExpired)
		}
		if a.Status != models.ActivationStatusPendingCommit {
			logger.Info("Activation is not in PENDING_COMMIT state during commit, activation ID: %s", a.ActivationID)
			return models.CommitActivationResponse{}, newError(CodeActivationIncorrectState)
		}
		if err := s.otp.validate(ctx, tx, a, models.OtpValidationOnCommit, req.ActivationOtp, req.ExternalUserID, now); err != nil {
			return models.CommitActivationResponse{}, err
		}

		a.Status = models.ActivationStatusActive
		if err := saveActivationAndLogChange(ctx, tx, a, now, "", req.ExternalUserID); err != nil {
			return models.CommitActivationResponse{}, err
		}
		notifyAfterCommit(ctx, tx, s.notifier, a)
		if err := activateRecoveryCodesForActivation(ctx, tx, a.ActivationID, now); err != nil {
			return models.CommitActivationResponse{}, err
		}
		return models.CommitActivationResponse{ActivationID: a.ActivationID, Activated: true}, nil
	})
}

func (s *activationService) UpdateOtp(ctx context.Context, req models.UpdateActivationOtpRequest) error {
	if req.ActivationID == "" || req.ActivationOtp == "" {
		return newError(CodeInvalidRequest)
	}
	return runInTx(ctx, s.db, func(tx *Tx) error {
		now := s.now()
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return err
		}
		if a == nil {
			return newError(CodeActivationNotFound)
		}
		deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, now)
		if err != nil {
			return err
		}
		if a.Status != models.ActivationStatusPendingCommit {
			logger.Info("Activation is not in PENDING_COMMIT state during OTP update, activation ID: %s", a.ActivationID)
			return stateError(deactivated, CodeActivationIncorrectState)
		}
		if a.OtpValidation == models.OtpValidationOnKeyExchange {
			return newError(CodeInvalidActivationOtpMode)
		}

		hash, err := utils.HashPassword(req.ActivationOtp)
		if err != nil {
			return wrapError(CodeGenericCryptographyError, err)
		}
		a.OtpHash = hash
		a.OtpValidation = models.OtpValidationOnCommit
		return saveActivationAndLogChange(ctx, tx, a, now, models.HistoryReasonOtpUpdated, req.ExternalUserID)
	})
}

func (s *activationService) Block(ctx context.Context, req models.BlockActivationRequest) (models.ActivationStatusChangeResponse, error) {
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ActivationStatusChangeResponse, error) {
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return models.ActivationStatusChangeResponse{}, err
		}
		if a == nil {
			return models.ActivationStatusChangeResponse{}, newError(CodeActivationNotFound)
		}
		deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, s.now())
		if err != nil {
			return models.ActivationStatusChangeResponse{}, err
		}
		switch a.Status {
		case models.ActivationStatusActive:
			a.Status = models.ActivationStatusBlocked
			a.BlockedReason = req.Reason
			if a.BlockedReason == "" {
				a.BlockedReason = models.BlockedReasonNotSpecified
			}
			if err := saveActivationAndLogChange(ctx, tx, a, s.now(), "", req.ExternalUserID); err != nil {
				return models.ActivationStatusChangeResponse{}, err
			}
			notifyAfterCommit(ctx, tx, s.notifier, a)
		case models.ActivationStatusBlocked:
		default:
			logger.Info("Activation cannot be blocked due to invalid status, activation ID: %s, status: %s", a.ActivationID, a.Status)
			return models.ActivationStatusChangeResponse{}, stateError(deactivated, CodeActivationIncorrectState)
		}
		return models.ActivationStatusChangeResponse{
			ActivationID:     a.ActivationID,
			ActivationStatus: a.Status,
			BlockedReason:    a.BlockedReason,
		}, nil
	})
}

func (s *activationService) Unblock(ctx context.Context, activationID, externalUserID string) (models.ActivationStatusChangeResponse, error) {
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ActivationStatusChangeResponse, error) {
		a, err := findActivation(ctx, tx, activationID, true)
		if err != nil {
			return models.ActivationStatusChangeResponse{}, err
		}
		if a == nil {
			return models.ActivationStatusChangeResponse{}, newError(CodeActivationNotFound)
		}
		deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, s.now())
		if err != nil {
			return models.ActivationStatusChangeResponse{}, err
		}
		switch a.Status {
		case models.ActivationStatusBlocked:
			a.Status = models.ActivationStatusActive
			a.BlockedReason = ""
			a.FailedAttempts = 0
			if err := saveActivationAndLogChange(ctx, tx, a, s.now(), "", externalUserID); err != nil {
				return models.ActivationStatusChangeResponse{}, err
			}
			notifyAfterCommit(ctx, tx, s.notifier, a)
		case models.ActivationStatusActive:
		default:
			logger.Info("Activation cannot be unblocked due to invalid status, activation ID: %s, status: %s", a.ActivationID, a.Status)
			return models.ActivationStatusChangeResponse{}, stateError(deactivated, CodeActivationIncorrectState)
		}
		return models.ActivationStatusChangeResponse{ActivationID: a.ActivationID, ActivationStatus: a.Status}, nil
	})
}

// removeActivation 잠금 후 REMOVED 로 변경. 대기 상태였거나 요청 시 복구 코드를 폐기한다
func (s *activationService) removeActivation(ctx context.Context, tx *Tx, activationID, externalUserID, reason string, revokeCodes bool) (*models.Activation, error) {
	a, err := findActivation(ctx, tx, activationID, true)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, newError(CodeActivationNotFound)
	}
	if a.Status == models.ActivationStatusRemoved {
		return a, nil
	}

	now := s.now()
	pending := a.IsPending()
	deactivated, err := deactivatePendingActivation(ctx, tx, s.notifier, a, now)
	if err != nil {
		return nil, err
	}
	if revokeCodes || pending {
		if err := revokeRecoveryCodesForActivation(ctx, tx, a.ActivationID, now); err != nil {
			return nil, err
		}
	}
	if deactivated {
		return a, nil
	}
	a.Status = models.ActivationStatusRemoved
	if err := saveActivationAndLogChange(ctx, tx, a, now, reason, externalUserID); err != nil {
		return nil, err
	}
	notifyAfterCommit(ctx, tx, s.notifier, a)
	return a, nil
}

func (s *activationService) Remove(ctx context.Context, req models.RemoveActivationRequest) (models.ActivationStatusChangeResponse, error) {
	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ActivationStatusChangeResponse, error) {
		a, err := s.removeActivation(ctx, tx, req.ActivationID, req.ExternalUserID, "", req.RevokeRecoveryCodes)
		if err != nil {
			return models.ActivationStatusChangeResponse{}, err
		}
		return models.ActivationStatusChangeResponse{ActivationID: a.ActivationID, ActivationStatus: a.Status}, nil
	})
}

// deactivateIfExpired 잠금 없이 읽은 레코드가 만료돼 보이면 잠금 후 다시 확인한다
func (s *activationService) deactivateIfExpired(ctx context.Context, a *models.Activation) error {
	if !a.IsExpired(s.now()) {
		return nil
	}
	locked, err := runInTxResult(ctx, s.db, func(tx *Tx) (*models.Activation, error) {
		locked, err := findActivation(ctx, tx, a.ActivationID, true)
		if err != nil || locked == nil {
			return locked, err
		}
		if _, err := deactivatePendingActivation(ctx, tx, s.notifier, locked, s.now()); err != nil {
			return nil, err
		}
		return locked, nil
	})
	if err != nil {
		return err
	}
	if locked != nil {
		*a = *locked
	}
	return nil
}

func (s *activationService) GetStatus(ctx context.Context, activationID, challenge string) (models.ActivationStatusResponse, error) {
	a, err := findActivation(ctx, s.db, activationID, false)
	if err != nil {
		return models.ActivationStatusResponse{}, err
	}
	if a == nil {
		return s.missingActivationStatus(activationID)
	}
	if err := s.deactivateIfExpired(ctx, a); err != nil {
		return models.ActivationStatusResponse{}, err
	}

	var challengeBytes []byte
	if challenge != "" {
		challengeBytes, err = base64.StdEncoding.DecodeString(challenge)
		if err != nil {
			return models.ActivationStatusResponse{}, newError(CodeInvalidRequest)
		}
	}

	resp := models.ActivationStatusResponse{
		ActivationID:            a.ActivationID,
		ActivationStatus:        a.Status,
		ActivationOtpValidation: a.OtpValidation,
		BlockedReason:           a.BlockedReason,
		ActivationName:          a.ActivationName,
		UserID:                  a.UserID,
		ApplicationID:           a.ApplicationID,
		Extras:                  a.Extras,
		Platform:                a.Platform,
		DeviceInfo:              a.DeviceInfo,
		ActivationFlags:         nonNilStrings(a.Flags),
		TimestampCreated:        a.CreatedAt,
		TimestampLastUsed:       a.LastUsedAt,
		TimestampLastChange:     a.LastChangeAt,
		Version:                 a.Version,
	}

	blob, err := utils.RandomBytes(statusBlobSize)
	if err != nil {
		return models.ActivationStatusResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	var nonce []byte
	if challengeBytes != nil {
		if nonce, err = utils.RandomBytes(16); err != nil {
			return models.ActivationStatusResponse{}, wrapError(CodeGenericCryptographyError, err)
		}
		resp.EncryptedStatusBlobNonce = base64.StdEncoding.EncodeToString(nonce)
	}

	switch {
	case a.Status == models.ActivationStatusCreated:
		kp, err := findMasterKeyPairByID(ctx, s.db, a.MasterKeyPairID)
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
		masterKey, err := loadMasterPrivateKey(kp)
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
		sig, err := utils.SignECDSA(masterKey, []byte(a.ActivationCode))
		if err != nil {
			return models.ActivationStatusResponse{}, wrapError(CodeGenericCryptographyError, err)
		}
		resp.ActivationCode = a.ActivationCode
		resp.ActivationSignature = base64.StdEncoding.EncodeToString(sig)

	case a.DevicePublicKey != "":
		keys, err := loadActivationKeys(s.keys, a)
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
		transport, err := keys.transportKey()
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
		info, err := newStatusBlobInfo(a, transport, s.lookahead)
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
		if blob, err = encryptStatusBlob(info, transport, challengeBytes, nonce); err != nil {
			return models.ActivationStatusResponse{}, err
		}
		resp.DevicePublicKeyFingerprint, err = activationFingerprint(a.Version, keys.devicePublic, &keys.serverPrivate.PublicKey, a.ActivationID)
		if err != nil {
			return models.ActivationStatusResponse{}, err
		}
	}

	resp.EncryptedStatusBlob = base64.StdEncoding.EncodeToString(blob)
	return resp, nil
}

// missingActivationStatus 존재하지 않는 활성화는 REMOVED 와 난수 blob
func (s *activationService) missingActivationStatus(activationID string) (models.ActivationStatusResponse, error) {
	blob, err := utils.RandomBytes(statusBlobSize)
	if err != nil {
		return models.ActivationStatusResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	now := s.now()
	return models.ActivationStatusResponse{
		ActivationID:        activationID,
		ActivationStatus:    models.ActivationStatusRemoved,
		ActivationFlags:     []string{},
		TimestampCreated:    now,
		TimestampLastUsed:   now,
		TimestampLastChange: now,
		EncryptedStatusBlob: base64.StdEncoding.EncodeToString(blob),
	}, nil
}

func (s *activationService) List(ctx context.Context, userID string, applicationID *int64) ([]models.Activation, error) {
	if userID == "" {
		return nil, newError(CodeNoUserID)
	}
	f := activationFilter{UserIDs: []string{userID}}
	if applicationID != nil {
		f.ApplicationIDs = []int64{*applicationID}
	}
	return s.query(ctx, f)
}

func (s *activationService) Lookup(ctx context.Context, req models.ActivationLookupRequest) ([]models.Activation, error) {
	if len(req.UserIDs) == 0 {
		return nil, newError(CodeInvalidRequest)
	}
	f := activationFilter{
		UserIDs:        req.UserIDs,
		ApplicationIDs: req.ApplicationIDs,
		Flags:          req.ActivationFlags,
	}
	if req.TimestampLastUsedAfter != nil {
		f.LastUsedAfter = *req.TimestampLastUsedAfter
	}
	if req.ActivationStatus != nil {
		f.Status = *req.ActivationStatus
	}
	return s.query(ctx, f)
}

// query 조회 결과 중 만료된 대기 활성화는 REMOVED 로 정리해서 반환한다
func (s *activationService) query(ctx context.Context, f activationFilter) ([]models.Activation, error) {
	found, err := queryActivations(ctx, s.db, f)
	if err != nil {
		return nil, err
	}
	out := make([]models.Activation, 0, len(found))
	for _, a := range found {
		if err := s.deactivateIfExpired(ctx, a); err != nil {
			return nil, err
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *activationService) CreateUsingRecoveryCode(ctx context.Context, req models.RecoveryActivationRequest) (models.PrepareActivationResponse, error) {
	if req.RecoveryCode == "" || req.Puk == "" || req.ApplicationKey == "" {
		return models.PrepareActivationResponse{}, newError(CodeInvalidRequest)
	}
	env, err := parseEncryptedRequest(req.EncryptedRequest)
	if err != nil {
		return models.PrepareActivationResponse{}, err
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.PrepareActivationResponse, error) {
		now := s.now()
		version, err := findSupportedVersion(ctx, tx, req.ApplicationKey)
		if err != nil {
			if CodeOf(err) == CodeInvalidApplication {
				return models.PrepareActivationResponse{}, newError(CodeInvalidRequest)
			}
			return models.PrepareActivationResponse{}, err
		}
		cfg, err := findRecoveryConfig(ctx, tx, version.ApplicationID)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if cfg == nil || !cfg.ActivationRecoveryEnabled {
			logger.Warn("Activation recovery is disabled, application ID: %d", version.ApplicationID)
			return models.PrepareActivationResponse{}, newError(CodeInvalidRequest)
		}

		d, err := s.factory.applicationDecryptor(ctx, tx, version, ecies.SharedInfo1ActivationLayer2, &env)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		plain, err := decryptEnvelope(d, env)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		layer2, err := parseLayer2(plain)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}

		rc, err := findRecoveryCode(ctx, tx, version.ApplicationID, req.RecoveryCode, true)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if rc == nil || rc.Status != models.RecoveryCodeStatusActive {
			logger.Warn("Recovery code does not exist or is not ACTIVE")
			return models.PrepareActivationResponse{}, newError(CodeInvalidRequest)
		}
		if err := verifyRecoveryPuk(ctx, tx, s.keys, rc, req.Puk, now); err != nil {
			return models.PrepareActivationResponse{}, err
		}
		var previous *models.Activation
		if rc.ActivationID != "" {
			previous, err = s.removeActivation(ctx, tx, rc.ActivationID, "", models.HistoryReasonRecovery, true)
			if err != nil && CodeOf(err) != CodeActivationNotFound {
				return models.PrepareActivationResponse{}, err
			}
		}

		mode := models.OtpValidationNone
		if req.ActivationOtp != "" {
			mode = models.OtpValidationOnCommit
		}
		a, _, err := s.initActivation(ctx, tx, initParams{
			userID:          rc.UserID,
			applicationID:   version.ApplicationID,
			maxFailureCount: req.MaxFailureCount,
			otp:             req.ActivationOtp,
			otpValidation:   mode,
		}, now)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if !validateCreatedActivation(a, version.ApplicationID) {
			return models.PrepareActivationResponse{}, newError(CodeActivationExpired)
		}
		// 복구된 활성화는 이전 활성화의 플래그를 이어받는다
		if previous != nil {
			a.Flags = append([]string(nil), previous.Flags...)
		}

		devicePublicKey, err := parseDevicePublicKey(layer2.DevicePublicKey)
		if err != nil {
			logger.Warn("Device public key is invalid, activation ID: %s", a.ActivationID)
			return models.PrepareActivationResponse{}, newError(CodeActivationExpired)
		}
		if err := applyKeyExchange(a, layer2, devicePublicKey, models.ActivationStatusPendingCommit); err != nil {
			return models.PrepareActivationResponse{}, err
		}
		if err := saveActivationAndLogChange(ctx, tx, a, now, models.HistoryReasonRecovery, ""); err != nil {
			return models.PrepareActivationResponse{}, err
		}
		notifyAfterCommit(ctx, tx, s.notifier, a)

		recovery, err := createActivationRecoveryCode(ctx, tx, s.keys, a, false,
			s.recovery.MaxFailedAttempts, s.recovery.GenerateIterations, now)
		if err != nil {
			return models.PrepareActivationResponse{}, err
		}
		return sealKeyExchange(d, env, a, recovery)
	})
}

// ExpireAbandoned 조회 구간 안에서 만료된 대기 활성화를 하나씩 잠가 REMOVED 로 바꾼다
func (s *activationService) ExpireAbandoned(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := findAbandonedActivationIDs(ctx, s.db, now.Add(-s.cfg.ExpiryLookBack.Duration), now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		removed, err := runInTxResult(ctx, s.db, func(tx *Tx) (bool, error) {
			a, err := findActivation(ctx, tx, id, true)
			if err != nil || a == nil {
				return false, err
			}
			return deactivatePendingActivation(ctx, tx, s.notifier, a, s.now())
		})
		if err != nil {
			return expired, err
		}
		if removed {
			expired++
		}
	}
	if expired > 0 {
		logger.Info("Expired %d abandoned activations", expired)
	}
	return expired, nil
}

func (s *activationService) History(ctx context.Context, activationID string, from, to time.Time) ([]models.ActivationHistory, error) {
	if activationID == "" {
		return nil, newError(CodeInvalidRequest)
	}
	return listHistory(ctx, s.db, activationID, from, to)
}

func (s *activationService) ListFlags(ctx context.Context, activationID string) (models.ActivationFlagsResponse, error) {
	a, err := findActivation(ctx, s.db, activationID, false)
	if err != nil {
		return models.ActivationFlagsResponse{}, err
	}
	if a == nil {
		return models.ActivationFlagsResponse{}, newError(CodeActivationNotFound)
	}
	if err := s.deactivateIfExpired(ctx, a); err != nil {
		return models.ActivationFlagsResponse{}, err
	}
	return models.ActivationFlagsResponse{ActivationID: a.ActivationID, ActivationFlags: nonNilStrings(a.Flags)}, nil
}

func (s *activationService) AddFlags(ctx context.Context, req models.ActivationFlagsRequest) (models.ActivationFlagsResponse, error) {
	return s.updateFlags(ctx, req, func(flags []string, flag string) []string {
		if slices.Contains(flags, flag) {
			return flags
		}
		return append(flags, flag)
	})
}

func (s *activationService) RemoveFlags(ctx context.Context, req models.ActivationFlagsRequest) (models.ActivationFlagsResponse, error) {
	return s.updateFlags(ctx, req, func(flags []string, flag string) []string {
		return slices.DeleteFunc(flags, func(f string) bool { return f == flag })
	})
}

func (s *activationService) updateFlags(ctx context.Context, req models.ActivationFlagsRequest, apply func([]string, string) []string) (models.ActivationFlagsResponse, error) {
	if req.ActivationID == "" || len(req.ActivationFlags) == 0 {
		return models.ActivationFlagsResponse{}, newError(CodeInvalidRequest)
	}
	for _, flag := range req.ActivationFlags {
		if strings.TrimSpace(flag) == "" || strings.Contains(flag, ",") {
			return models.ActivationFlagsResponse{}, newError(CodeInvalidRequest)
		}
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.ActivationFlagsResponse, error) {
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return models.ActivationFlagsResponse{}, err
		}
		if a == nil {
			return models.ActivationFlagsResponse{}, newError(CodeActivationNotFound)
		}
		if _, err := deactivatePendingActivation(ctx, tx, s.notifier, a, s.now()); err != nil {
			return models.ActivationFlagsResponse{}, err
		}
		flags := append([]string{}, a.Flags...)
		for _, flag := range req.ActivationFlags {
			flags = apply(flags, strings.TrimSpace(flag))
		}
		a.Flags = flags
		if err := updateActivation(ctx, tx, a); err != nil {
			return models.ActivationFlagsResponse{}, err
		}
		return models.ActivationFlagsResponse{ActivationID: a.ActivationID, ActivationFlags: nonNilStrings(a.Flags)}, nil
	})
}

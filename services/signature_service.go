package services

import (
	"context"
	"encoding/base64"
	"maps"
	"strings"
	"time"

	"powerauthserver/config"
	"powerauthserver/logger"
	"powerauthserver/metrics"
	"powerauthserver/models"
	"powerauthserver/signature"
	"powerauthserver/utils"
)

const (
	offlineSecret            = "offline"
	offlineNonceSize         = 16
	keyIndicatorServer       = "1"
	keyIndicatorMaster       = "0"
	defaultAuditLogRange     = 30 * 24 * time.Hour
	signatureModeOnline      = "online"
	signatureModeOffline     = "offline"
	outcomeValid             = "valid"
	outcomeInvalid           = "invalid"
	outcomeBlocked           = "blocked"
	outcomeInvalidState      = "invalid_state"
	outcomeInvalidApp        = "invalid_application"
	outcomeMissingActivation = "missing"
)

// SignatureService 서명 검증과 오프라인 서명 페이로드
type SignatureService interface {
	VerifySignature(ctx context.Context, req models.VerifySignatureRequest) (models.VerifySignatureResponse, error)
	VerifyOfflineSignature(ctx context.Context, req models.VerifyOfflineSignatureRequest) (models.VerifySignatureResponse, error)
	CreatePersonalizedOfflinePayload(ctx context.Context, req models.OfflinePayloadRequest) (models.OfflinePayloadResponse, error)
	CreateNonPersonalizedOfflinePayload(ctx context.Context, req models.OfflinePayloadRequest) (models.OfflinePayloadResponse, error)
	VerifyECDSASignature(ctx context.Context, req models.VerifyECDSASignatureRequest) (models.VerifyECDSASignatureResponse, error)
	GetSignatureAuditLog(ctx context.Context, req models.SignatureAuditRequest) ([]models.SignatureAudit, error)
}

type signatureService struct {
	db            SQLExecutor
	keys          *ServerKeyConverter
	audit         AuditSink
	notifier      Notifier
	lookahead     int
	offlineLength int
	now           utils.Clock
}

// NewSignatureService 서명 서비스 생성
func NewSignatureService(db SQLExecutor, keys *ServerKeyConverter, audit AuditSink, notifier Notifier, cfg config.SignatureConfig, now utils.Clock) SignatureService {
	return &signatureService{
		db:            db,
		keys:          keys,
		audit:         audit,
		notifier:      notifier,
		lookahead:     cfg.Lookahead,
		offlineLength: cfg.OfflineLength,
		now:           now,
	}
}

// verification 온라인/오프라인 공통 검증 입력
type verification struct {
	mode             string
	data             []byte
	signature        string
	signatureType    string
	types            []signature.Type
	format           signature.Format
	length           int
	signatureVersion string
	counterVersion   int
	additionalInfo   map[string]string
}

func (v verification) info() map[string]string {
	out := make(map[string]string, len(v.additionalInfo)+1)
	maps.Copy(out, v.additionalInfo)
	return out
}

func (s *signatureService) VerifySignature(ctx context.Context, req models.VerifySignatureRequest) (models.VerifySignatureResponse, error) {
	if req.ActivationID == "" || req.ApplicationKey == "" || req.Data == "" || req.Signature == "" {
		return models.VerifySignatureResponse{}, newError(CodeInvalidRequest)
	}
	sigType, err := signature.ParseType(req.SignatureType)
	if err != nil {
		return models.VerifySignatureResponse{}, newError(CodeInvalidRequest)
	}
	format, err := signature.FormatForVersion(req.SignatureVersion)
	if err != nil {
		return models.VerifySignatureResponse{}, newError(CodeInvalidRequest)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.VerifySignatureResponse, error) {
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return models.VerifySignatureResponse{}, err
		}
		if a == nil {
			metrics.SignatureVerified(signatureModeOnline, outcomeMissingActivation)
			return removedSignatureResponse(req.ActivationID, string(sigType)), nil
		}
		if _, err := deactivatePendingActivation(ctx, tx, s.notifier, a, s.now()); err != nil {
			return models.VerifySignatureResponse{}, err
		}

		v := verification{
			mode:             signatureModeOnline,
			signature:        req.Signature,
			signatureType:    string(sigType),
			types:            []signature.Type{sigType},
			format:           format,
			length:           signature.DefaultDecimalLength,
			signatureVersion: req.SignatureVersion,
			counterVersion:   a.Version,
			additionalInfo:   req.AdditionalInfo,
		}
		if req.ForcedSignatureVersion > 0 {
			v.counterVersion = req.ForcedSignatureVersion
		}

		version, err := findVersionByKey(ctx, tx, req.ApplicationKey)
		if err != nil {
			return models.VerifySignatureResponse{}, err
		}
		if version == nil || !version.Supported || version.ApplicationID != a.ApplicationID {
			logger.Warn("Application version is incorrect, application key: %s, activation ID: %s", req.ApplicationKey, a.ActivationID)
			v.data = signature.NormalizeData([]byte(req.Data), req.ApplicationKey)
			return s.handleInvalidApplication(ctx, tx, a, v)
		}
		v.data = signature.NormalizeData([]byte(req.Data), version.ApplicationSecret)
		return s.verify(ctx, tx, a, v)
	})
}

func (s *signatureService) VerifyOfflineSignature(ctx context.Context, req models.VerifyOfflineSignatureRequest) (models.VerifySignatureResponse, error) {
	if req.ActivationID == "" || req.Data == "" || req.Signature == "" {
		return models.VerifySignatureResponse{}, newError(CodeInvalidRequest)
	}
	types := []signature.Type{signature.PossessionKnowledge}
	if req.AllowBiometry {
		types = append(types, signature.PossessionBiometry)
	}

	return runInTxResult(ctx, s.db, func(tx *Tx) (models.VerifySignatureResponse, error) {
		a, err := findActivation(ctx, tx, req.ActivationID, true)
		if err != nil {
			return models.VerifySignatureResponse{}, err
		}
		if a == nil {
			metrics.SignatureVerified(signatureModeOffline, outcomeMissingActivation)
			return removedSignatureResponse(req.ActivationID, string(signature.PossessionKnowledge)), nil
		}
		if _, err := deactivatePendingActivation(ctx, tx, s.notifier, a, s.now()); err != nil {
			return models.VerifySignatureResponse{}, err
		}

		v := verification{
			mode:           signatureModeOffline,
			data:           signature.NormalizeData([]byte(req.Data), offlineSecret),
			signature:      req.Signature,
			signatureType:  string(signature.PossessionKnowledge),
			types:          types,
			format:         signature.FormatDecimal,
			length:         s.offlineLength,
			counterVersion: a.Version,
			additionalInfo: req.AdditionalInfo,
		}
		if len(types) > 1 {
			v.additionalInfo = v.info()
			v.additionalInfo[models.AdditionalInfoBiometryAllowed] = "TRUE"
		}
		return s.verify(ctx, tx, a, v)
	})
}

// verify 잠긴 활성화에 대해 상태를 확인하고 카운터 윈도우 안에서 서명을 찾는다
func (s *signatureService) verify(ctx context.Context, tx *Tx, a *models.Activation, v verification) (models.VerifySignatureResponse, error) {
	now := s.now()
	ctr, ctrData := a.Counter, a.CtrData

	if a.Status != models.ActivationStatusActive {
		a.LastUsedAt = now
		if err := updateActivation(ctx, tx, a); err != nil {
			return models.VerifySignatureResponse{}, err
		}
		s.recordAudit(ctx, tx, a, v, false, models.AuditNoteInvalidState, v.info(), ctr, ctrData, now)
		metrics.SignatureVerified(v.mode, outcomeInvalidState)
		return s.response(ctx, tx, a, false, v.signatureType, 0)
	}

	if a.FailedAttempts >= a.MaxFailedAttempts {
		logger.Warn("Activation has exhausted failed attempts, activation ID: %s", a.ActivationID)
		if err := s.block(ctx, tx, a, now); err != nil {
			return models.VerifySignatureResponse{}, err
		}
		info := v.info()
		info[models.AdditionalInfoBlockedReason] = a.BlockedReason
		s.recordAudit(ctx, tx, a, v, false, models.AuditNoteInvalidStateCtrMismatch, info, ctr, ctrData, now)
		metrics.SignatureVerified(v.mode, outcomeBlocked)
		return s.response(ctx, tx, a, false, v.signatureType, 0)
	}

	match, found, err := s.findMatch(a, v)
	if err != nil {
		return models.VerifySignatureResponse{}, err
	}

	if found {
		a.Counter += int64(match.Offset) + 1
		storeCounter(a, match.NextCounter())
		if !match.Type.IsPossessionOnly() {
			a.FailedAttempts = 0
		}
		a.LastUsedAt = now
		if err := updateActivation(ctx, tx, a); err != nil {
			return models.VerifySignatureResponse{}, err
		}
		v.signatureType = string(match.Type)
		s.recordAudit(ctx, tx, a, v, true, models.AuditNoteSignatureOK, v.info(), ctr, ctrData, now)
		metrics.SignatureVerified(v.mode, outcomeValid)
		return s.response(ctx, tx, a, true, v.signatureType, remaining(a))
	}

	outcome, err := s.registerFailure(ctx, tx, a, v.types[0], now)
	if err != nil {
		return models.VerifySignatureResponse{}, err
	}
	info := v.info()
	if a.Status == models.ActivationStatusBlocked {
		info[models.AdditionalInfoBlockedReason] = a.BlockedReason
	}
	s.recordAudit(ctx, tx, a, v, false, models.AuditNoteSignatureDoesNotMatch, info, ctr, ctrData, now)
	metrics.SignatureVerified(v.mode, outcome)
	return s.response(ctx, tx, a, false, v.signatureType, remaining(a))
}

// handleInvalidApplication 애플리케이션 불일치. 카운터를 한 칸 소모하고 실패로 집계한다
func (s *signatureService) handleInvalidApplication(ctx context.Context, tx *Tx, a *models.Activation, v verification) (models.VerifySignatureResponse, error) {
	now := s.now()
	ctr, ctrData := a.Counter, a.CtrData

	a.Counter++
	if a.CtrData != "" {
		hc, err := signature.ParseHashChain(a.CtrData)
		if err != nil {
			return models.VerifySignatureResponse{}, wrapError(CodeGenericCryptographyError, err)
		}
		storeCounter(a, hc.Next())
	}
	if _, err := s.registerFailure(ctx, tx, a, v.types[0], now); err != nil {
		return models.VerifySignatureResponse{}, err
	}

	info := v.info()
	if a.Status == models.ActivationStatusBlocked {
		info[models.AdditionalInfoBlockedReason] = a.BlockedReason
	}
	s.recordAudit(ctx, tx, a, v, false, models.AuditNoteInvalidApplication, info, ctr, ctrData, now)
	metrics.SignatureVerified(v.mode, outcomeInvalidApp)
	return s.response(ctx, tx, a, false, v.signatureType, remaining(a))
}

// registerFailure 실패 횟수 증가 (POSSESSION 제외). 최대치에 도달하면 차단한다
func (s *signatureService) registerFailure(ctx context.Context, tx *Tx, a *models.Activation, t signature.Type, now time.Time) (string, error) {
	a.LastUsedAt = now
	if !t.IsPossessionOnly() {
		a.FailedAttempts++
	}
	if a.Status == models.ActivationStatusActive && a.FailedAttempts >= a.MaxFailedAttempts {
		if err := s.block(ctx, tx, a, now); err != nil {
			return "", err
		}
		return outcomeBlocked, nil
	}
	if err := updateActivation(ctx, tx, a); err != nil {
		return "", err
	}
	return outcomeInvalid, nil
}

func (s *signatureService) block(ctx context.Context, tx *Tx, a *models.Activation, now time.Time) error {
	a.Status = models.ActivationStatusBlocked
	a.BlockedReason = models.BlockedReasonMaxFailedAttempts
	a.LastUsedAt = now
	if err := saveActivationAndLogChange(ctx, tx, a, now, "", ""); err != nil {
		return err
	}
	notifyAfterCommit(ctx, tx, s.notifier, a)
	logger.WithField("activation_id", a.ActivationID).Info("activation blocked after failed signatures")
	return nil
}

func (s *signatureService) findMatch(a *models.Activation, v verification) (signature.Match, bool, error) {
	keys, err := loadActivationKeys(s.keys, a)
	if err != nil {
		return signature.Match{}, false, err
	}
	master, err := keys.masterSecret()
	if err != nil {
		return signature.Match{}, false, err
	}
	factorKeys, err := signature.DeriveFactorKeys(master)
	if err != nil {
		return signature.Match{}, false, wrapError(CodeGenericCryptographyError, err)
	}
	start, err := activationCounter(a, v.counterVersion)
	if err != nil {
		return signature.Match{}, false, err
	}
	match, found, err := signature.FindMatch(factorKeys, start, signature.Request{
		Data:      v.data,
		Signature: v.signature,
		Types:     v.types,
		Format:    v.format,
		Length:    v.length,
		Lookahead: s.lookahead,
	})
	if err != nil {
		return signature.Match{}, false, wrapError(CodeUnableToComputeSignature, err)
	}
	return match, found, nil
}

// activationCounter 버전 3 이상이고 해시 체인이 있으면 해시 체인, 아니면 숫자 카운터
func activationCounter(a *models.Activation, version int) (signature.Counter, error) {
	if version >= 3 && a.CtrData != "" {
		hc, err := signature.ParseHashChain(a.CtrData)
		if err != nil {
			return nil, wrapError(CodeGenericCryptographyError, err)
		}
		return hc, nil
	}
	return signature.NumericCounter(a.Counter), nil
}

func storeCounter(a *models.Activation, next signature.Counter) {
	if hc, ok := next.(signature.HashChainCounter); ok {
		a.CtrData = hc.Base64()
	}
}

func remaining(a *models.Activation) int64 {
	if a.Status != models.ActivationStatusActive {
		return 0
	}
	return max(a.MaxFailedAttempts-a.FailedAttempts, 0)
}

func (s *signatureService) response(ctx context.Context, q Querier, a *models.Activation, valid bool, sigType string, remainingAttempts int64) (models.VerifySignatureResponse, error) {
	app, err := findApplication(ctx, q, a.ApplicationID)
	if err != nil {
		return models.VerifySignatureResponse{}, err
	}
	return models.VerifySignatureResponse{
		SignatureValid:    valid,
		ActivationID:      a.ActivationID,
		ActivationStatus:  a.Status,
		BlockedReason:     a.BlockedReason,
		UserID:            a.UserID,
		ApplicationID:     a.ApplicationID,
		ApplicationRoles:  nonNilStrings(app.Roles),
		ActivationFlags:   nonNilStrings(a.Flags),
		RemainingAttempts: remainingAttempts,
		SignatureType:     sigType,
	}, nil
}

func removedSignatureResponse(activationID, sigType string) models.VerifySignatureResponse {
	return models.VerifySignatureResponse{
		ActivationID:     activationID,
		ActivationStatus: models.ActivationStatusRemoved,
		ApplicationRoles: []string{},
		ActivationFlags:  []string{},
		SignatureType:    sigType,
	}
}

// recordAudit 검증 전 카운터 값으로 감사 레코드를 남긴다
func (s *signatureService) recordAudit(ctx context.Context, q Querier, a *models.Activation, v verification, valid bool, note string, info map[string]string, ctr int64, ctrData string, now time.Time) {
	auditAfterCommit(ctx, q, s.audit, models.SignatureAudit{
		ActivationID:      a.ActivationID,
		ApplicationID:     a.ApplicationID,
		UserID:            a.UserID,
		ActivationCounter: ctr,
		ActivationCtrData: ctrData,
		ActivationStatus:  a.Status,
		AdditionalInfo:    info,
		DataBase64:        base64.StdEncoding.EncodeToString(v.data),
		SignatureType:     v.signatureType,
		Signature:         v.signature,
		Valid:             valid,
		Note:              note,
		Version:           a.Version,
		SignatureVersion:  v.signatureVersion,
		TimestampCreated:  now,
	})
}

// offlinePayload data\nnonce\nindicator 뒤에 base64 ECDSA 서명을 붙인다
func offlinePayload(data, indicator string, sign func([]byte) ([]byte, error)) (models.OfflinePayloadResponse, error) {
	nonceBytes, err := utils.RandomBytes(offlineNonceSize)
	if err != nil {
		return models.OfflinePayloadResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	nonce := base64.StdEncoding.EncodeToString(nonceBytes)
	signed := strings.Join([]string{data, nonce, indicator}, "\n")
	sig, err := sign([]byte(signed))
	if err != nil {
		return models.OfflinePayloadResponse{}, wrapError(CodeGenericCryptographyError, err)
	}
	return models.OfflinePayloadResponse{
		OfflineData: signed + base64.StdEncoding.EncodeToString(sig),
		Nonce:       nonce,
	}, nil
}

func (s *signatureService) CreatePersonalizedOfflinePayload(ctx context.Context, req models.OfflinePayloadRequest) (models.OfflinePayloadResponse, error) {
	if req.ActivationID == "" || req.Data == "" {
		return models.OfflinePayloadResponse{}, newError(CodeInvalidRequest)
	}
	a, err := findActivation(ctx, s.db, req.ActivationID, false)
	if err != nil {
		return models.OfflinePayloadResponse{}, err
	}
	if a == nil {
		return models.OfflinePayloadResponse{}, newError(CodeActivationNotFound)
	}
	if a.Status != models.ActivationStatusActive {
		return models.OfflinePayloadResponse{}, newError(CodeActivationIncorrectState)
	}
	priv, err := loadServerPrivateKey(s.keys, a)
	if err != nil {
		return models.OfflinePayloadResponse{}, err
	}
	return offlinePayload(req.Data, keyIndicatorServer, func(b []byte) ([]byte, error) {
		return utils.SignECDSA(priv, b)
	})
}

func (s *signatureService) CreateNonPersonalizedOfflinePayload(ctx context.Context, req models.OfflinePayloadRequest) (models.OfflinePayloadResponse, error) {
	if req.ApplicationID <= 0 || req.Data == "" {
		return models.OfflinePayloadResponse{}, newError(CodeInvalidRequest)
	}
	kp, err := findMasterKeyPair(ctx, s.db, req.ApplicationID)
	if err != nil {
		return models.OfflinePayloadResponse{}, err
	}
	priv, err := loadMasterPrivateKey(kp)
	if err != nil {
		return models.OfflinePayloadResponse{}, err
	}
	return offlinePayload(req.Data, keyIndicatorMaster, func(b []byte) ([]byte, error) {
		return utils.SignECDSA(priv, b)
	})
}

func (s *signatureService) VerifyECDSASignature(ctx context.Context, req models.VerifyECDSASignatureRequest) (models.VerifyECDSASignatureResponse, error) {
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil || req.ActivationID == "" {
		return models.VerifyECDSASignatureResponse{}, newError(CodeInvalidRequest)
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return models.VerifyECDSASignatureResponse{}, newError(CodeInvalidRequest)
	}

	a, err := findActivation(ctx, s.db, req.ActivationID, false)
	if err != nil {
		return models.VerifyECDSASignatureResponse{}, err
	}
	if a == nil {
		return models.VerifyECDSASignatureResponse{}, newError(CodeActivationNotFound)
	}
	if a.DevicePublicKey == "" {
		return models.VerifyECDSASignatureResponse{SignatureValid: false}, nil
	}
	keys, err := loadActivationKeys(s.keys, a)
	if err != nil {
		return models.VerifyECDSASignatureResponse{}, err
	}
	return models.VerifyECDSASignatureResponse{SignatureValid: utils.VerifyECDSA(keys.devicePublic, data, sig)}, nil
}

func (s *signatureService) GetSignatureAuditLog(ctx context.Context, req models.SignatureAuditRequest) ([]models.SignatureAudit, error) {
	if req.UserID == "" {
		return nil, newError(CodeNoUserID)
	}
	now := s.now()
	f := auditFilter{
		UserID:        req.UserID,
		ApplicationID: req.ApplicationID,
		From:          now.Add(-defaultAuditLogRange),
		To:            now,
	}
	if req.From != nil {
		f.From = req.From.UTC()
	}
	if req.To != nil {
		f.To = req.To.UTC()
	}
	return querySignatureAudit(ctx, s.db, f)
}

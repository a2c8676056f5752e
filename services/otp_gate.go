package services

import (
	"context"
	"time"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// OTP 실패 이력 사유
const (
	historyReasonOtpFailedAttempt    = "ACTIVATION_OTP_FAILED_ATTEMPT"
	historyReasonOtpMaxFailedAttempt = "ACTIVATION_OTP_MAX_FAILED_ATTEMPTS"
)

// otpGate 활성화 OTP 검증. 모든 실패는 INVALID_ACTIVATION_OTP 하나로 응답한다
type otpGate struct {
	notifier Notifier
}

// validate 현재 단계(currentStage)에서 OTP 를 검증한다.
// 불일치하면 실패 횟수를 저장하고 Persisted 에러를 반환하므로 호출자는 커밋해야 한다.
func (g otpGate) validate(ctx context.Context, q Querier, a *models.Activation, currentStage models.OtpValidation, otp, externalUserID string, now time.Time) error {
	if currentStage == models.OtpValidationNone {
		logger.Error("activation OTP validation called without stage, activation ID: %s", a.ActivationID)
		return newError(CodeUnknownError)
	}

	stored := a.OtpValidation
	if stored == "" {
		stored = models.OtpValidationNone
	}

	if stored == models.OtpValidationNone {
		if otp != "" {
			logger.Info("Activation OTP provided but not expected, activation ID: %s", a.ActivationID)
			return newError(CodeInvalidActivationOtp)
		}
		return nil
	}
	if stored != currentStage {
		if otp != "" {
			logger.Info("Activation OTP provided in wrong stage, activation ID: %s", a.ActivationID)
			return newError(CodeInvalidActivationOtp)
		}
		return nil
	}

	if otp == "" {
		logger.Info("Activation OTP is missing, activation ID: %s", a.ActivationID)
		return newError(CodeInvalidActivationOtp)
	}
	if a.OtpHash == "" {
		logger.Error("Activation OTP hash is missing, activation ID: %s", a.ActivationID)
		return newError(CodeInvalidActivationOtp)
	}

	if utils.CheckPassword(a.OtpHash, otp) {
		a.FailedAttempts = 0
		return nil
	}

	a.FailedAttempts++
	remove := a.FailedAttempts >= a.MaxFailedAttempts
	reason := historyReasonOtpFailedAttempt
	if remove {
		a.Status = models.ActivationStatusRemoved
		reason = historyReasonOtpMaxFailedAttempt
	}
	if err := saveActivationAndLogChange(ctx, q, a, now, reason, externalUserID); err != nil {
		return err
	}
	if remove {
		notifyAfterCommit(ctx, q, g.notifier, a)
	}

	logger.Info("Invalid activation OTP: %s", a.ActivationID)
	return persisted(CodeInvalidActivationOtp)
}

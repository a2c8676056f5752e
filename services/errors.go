package services

import (
	"errors"
	"fmt"
)

// ErrorCode 서비스 경계에서 노출되는 에러 코드
type ErrorCode string

const (
	CodeInvalidRequest                 ErrorCode = "INVALID_REQUEST"
	CodeNoUserID                       ErrorCode = "NO_USER_ID"
	CodeNoApplicationID                ErrorCode = "NO_APPLICATION_ID"
	CodeActivationCreateFailed         ErrorCode = "ACTIVATION_CREATE_FAILED"
	CodeNoMasterServerKeyPair          ErrorCode = "NO_MASTER_SERVER_KEYPAIR"
	CodeIncorrectMasterServerKeyPair   ErrorCode = "INCORRECT_MASTER_SERVER_KEYPAIR_PRIVATE"
	CodeUnableToGenerateActivationID   ErrorCode = "UNABLE_TO_GENERATE_ACTIVATION_ID"
	CodeUnableToGenerateActivationCode ErrorCode = "UNABLE_TO_GENERATE_ACTIVATION_CODE"
	CodeActivationExpired              ErrorCode = "ACTIVATION_EXPIRED"
	CodeActivationNotFound             ErrorCode = "ACTIVATION_NOT_FOUND"
	CodeActivationIncorrectState       ErrorCode = "ACTIVATION_INCORRECT_STATE"
	CodeInvalidActivationOtp           ErrorCode = "INVALID_ACTIVATION_OTP"
	CodeInvalidActivationOtpMode       ErrorCode = "INVALID_ACTIVATION_OTP_MODE"
	CodeInvalidKeyFormat               ErrorCode = "INVALID_KEY_FORMAT"
	CodeDecryptionFailed               ErrorCode = "DECRYPTION_FAILED"
	CodeGenericCryptographyError       ErrorCode = "GENERIC_CRYPTOGRAPHY_ERROR"
	CodeInvalidCryptoProvider          ErrorCode = "INVALID_CRYPTO_PROVIDER"
	CodeInvalidInputFormat             ErrorCode = "INVALID_INPUT_FORMAT"
	CodeInvalidRecoveryCode            ErrorCode = "INVALID_RECOVERY_CODE"
	CodeRecoveryCodeNotFound           ErrorCode = "RECOVERY_CODE_NOT_FOUND"
	CodeRecoveryCodeAlreadyExists      ErrorCode = "RECOVERY_CODE_ALREADY_EXISTS"
	CodeUnableToGenerateRecoveryCode   ErrorCode = "UNABLE_TO_GENERATE_RECOVERY_CODE"
	CodeInvalidRecoveryConfiguration   ErrorCode = "INVALID_RECOVERY_CONFIGURATION"
	CodeInvalidApplication             ErrorCode = "INVALID_APPLICATION"
	CodeUnableToComputeSignature       ErrorCode = "UNABLE_TO_COMPUTE_SIGNATURE"
	CodeMissingTemporaryKey            ErrorCode = "MISSING_TEMPORARY_KEY"
	CodeUnknownError                   ErrorCode = "UNKNOWN_ERROR"
)

// ServiceError 코드가 붙은 서비스 에러
type ServiceError struct {
	Code    ErrorCode
	Message string
	// Persisted 이미 기록된 상태 변경을 커밋한 뒤 반환해야 하는 에러
	Persisted bool
	Err       error
	// CurrentPukIndex INVALID_RECOVERY_CODE 에서 아직 사용 가능한 PUK 인덱스
	CurrentPukIndex *int64
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = Localize(e.Code, "")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is 코드가 같으면 같은 에러로 본다
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

// 비교용 센티널. 반환할 때는 newError 로 새 인스턴스를 만든다
var (
	ErrInvalidRequest               = &ServiceError{Code: CodeInvalidRequest}
	ErrNoUserID                     = &ServiceError{Code: CodeNoUserID}
	ErrNoApplicationID              = &ServiceError{Code: CodeNoApplicationID}
	ErrNoMasterServerKeyPair        = &ServiceError{Code: CodeNoMasterServerKeyPair}
	ErrActivationExpired            = &ServiceError{Code: CodeActivationExpired}
	ErrActivationNotFound           = &ServiceError{Code: CodeActivationNotFound}
	ErrActivationIncorrectState     = &ServiceError{Code: CodeActivationIncorrectState}
	ErrInvalidActivationOtp         = &ServiceError{Code: CodeInvalidActivationOtp}
	ErrInvalidActivationOtpMode     = &ServiceError{Code: CodeInvalidActivationOtpMode}
	ErrInvalidKeyFormat             = &ServiceError{Code: CodeInvalidKeyFormat}
	ErrDecryptionFailed             = &ServiceError{Code: CodeDecryptionFailed}
	ErrGenericCryptography          = &ServiceError{Code: CodeGenericCryptographyError}
	ErrInvalidInputFormat           = &ServiceError{Code: CodeInvalidInputFormat}
	ErrInvalidRecoveryCode          = &ServiceError{Code: CodeInvalidRecoveryCode}
	ErrRecoveryCodeNotFound         = &ServiceError{Code: CodeRecoveryCodeNotFound}
	ErrRecoveryCodeAlreadyExists    = &ServiceError{Code: CodeRecoveryCodeAlreadyExists}
	ErrInvalidRecoveryConfiguration = &ServiceError{Code: CodeInvalidRecoveryConfiguration}
	ErrInvalidApplication           = &ServiceError{Code: CodeInvalidApplication}
	ErrMissingTemporaryKey          = &ServiceError{Code: CodeMissingTemporaryKey}
)

func newError(code ErrorCode) *ServiceError {
	return &ServiceError{Code: code}
}

func wrapError(code ErrorCode, err error) *ServiceError {
	return &ServiceError{Code: code, Err: err}
}

// persisted 상태 변경을 커밋한 뒤 반환할 에러
func persisted(code ErrorCode) *ServiceError {
	return &ServiceError{Code: code, Persisted: true}
}

// CodeOf 에러 코드 추출. ServiceError 가 아니면 UNKNOWN_ERROR
func CodeOf(err error) ErrorCode {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return CodeUnknownError
}

var messages = map[string]map[ErrorCode]string{
	"en": {
		CodeInvalidRequest:                 "Invalid request",
		CodeNoUserID:                       "No user ID was set",
		CodeNoApplicationID:                "No application ID was set",
		CodeActivationCreateFailed:         "Unable to create activation",
		CodeNoMasterServerKeyPair:          "No master server key pair configured in database",
		CodeIncorrectMasterServerKeyPair:   "Master server key pair contains private key in incorrect format",
		CodeUnableToGenerateActivationID:   "Too many failed attempts to generate activation ID",
		CodeUnableToGenerateActivationCode: "Too many failed attempts to generate activation code",
		CodeActivationExpired:              "Activation with given activation ID is expired",
		CodeActivationNotFound:             "Activation with given activation ID was not found",
		CodeActivationIncorrectState:       "Incorrect activation state",
		CodeInvalidActivationOtp:           "Invalid activation OTP",
		CodeInvalidActivationOtpMode:       "Invalid activation OTP mode",
		CodeInvalidKeyFormat:               "Key with invalid format was provided",
		CodeDecryptionFailed:               "Decryption failed",
		CodeGenericCryptographyError:       "Generic cryptography error",
		CodeInvalidCryptoProvider:          "Invalid cryptography provider",
		CodeInvalidInputFormat:             "Invalid input data format",
		CodeInvalidRecoveryCode:            "Invalid recovery code",
		CodeRecoveryCodeNotFound:           "Recovery code was not found",
		CodeRecoveryCodeAlreadyExists:      "Recovery code already exists",
		CodeUnableToGenerateRecoveryCode:   "Too many failed attempts to generate recovery code",
		CodeInvalidRecoveryConfiguration:   "Invalid recovery configuration",
		CodeInvalidApplication:             "Application does not exist",
		CodeUnableToComputeSignature:       "Unable to compute signature",
		CodeMissingTemporaryKey:            "Temporary key is missing",
		CodeUnknownError:                   "Unknown error occurred",
	},
	"ko": {
		CodeInvalidRequest:                 "잘못된 요청입니다",
		CodeNoUserID:                       "사용자 ID가 없습니다",
		CodeNoApplicationID:                "애플리케이션 ID가 없습니다",
		CodeActivationCreateFailed:         "활성화를 생성할 수 없습니다",
		CodeNoMasterServerKeyPair:          "마스터 서버 키쌍이 없습니다",
		CodeIncorrectMasterServerKeyPair:   "마스터 서버 개인키 형식이 올바르지 않습니다",
		CodeUnableToGenerateActivationID:   "활성화 ID 생성 시도 횟수를 초과했습니다",
		CodeUnableToGenerateActivationCode: "활성화 코드 생성 시도 횟수를 초과했습니다",
		CodeActivationExpired:              "활성화가 만료되었습니다",
		CodeActivationNotFound:             "활성화를 찾을 수 없습니다",
		CodeActivationIncorrectState:       "활성화 상태가 올바르지 않습니다",
		CodeInvalidActivationOtp:           "활성화 OTP가 올바르지 않습니다",
		CodeInvalidActivationOtpMode:       "활성화 OTP 모드가 올바르지 않습니다",
		CodeInvalidKeyFormat:               "키 형식이 올바르지 않습니다",
		CodeDecryptionFailed:               "복호화에 실패했습니다",
		CodeGenericCryptographyError:       "암호화 처리 중 오류가 발생했습니다",
		CodeInvalidCryptoProvider:          "암호화 공급자가 올바르지 않습니다",
		CodeInvalidInputFormat:             "입력 데이터 형식이 올바르지 않습니다",
		CodeInvalidRecoveryCode:            "복구 코드가 올바르지 않습니다",
		CodeRecoveryCodeNotFound:           "복구 코드를 찾을 수 없습니다",
		CodeRecoveryCodeAlreadyExists:      "복구 코드가 이미 존재합니다",
		CodeUnableToGenerateRecoveryCode:   "복구 코드 생성 시도 횟수를 초과했습니다",
		CodeInvalidRecoveryConfiguration:   "복구 설정이 올바르지 않습니다",
		CodeInvalidApplication:             "애플리케이션이 존재하지 않습니다",
		CodeUnableToComputeSignature:       "서명을 계산할 수 없습니다",
		CodeMissingTemporaryKey:            "임시 키가 없습니다",
		CodeUnknownError:                   "알 수 없는 오류가 발생했습니다",
	},
}

// Localize 코드별 메시지. 지원하지 않는 locale 은 영어
func Localize(code ErrorCode, locale string) string {
	catalog, ok := messages[locale]
	if !ok {
		catalog = messages["en"]
	}
	if msg, ok := catalog[code]; ok {
		return msg
	}
	return messages["en"][CodeUnknownError]
}

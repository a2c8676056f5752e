package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"powerauthserver/logger"
	"powerauthserver/middleware"
	"powerauthserver/models"
	"powerauthserver/services"
)

// statusByCode 에러 코드별 HTTP 상태. 없는 코드는 500
var statusByCode = map[services.ErrorCode]int{
	services.CodeInvalidRequest:               http.StatusBadRequest,
	services.CodeNoUserID:                     http.StatusBadRequest,
	services.CodeNoApplicationID:              http.StatusBadRequest,
	services.CodeInvalidInputFormat:           http.StatusBadRequest,
	services.CodeInvalidKeyFormat:             http.StatusBadRequest,
	services.CodeInvalidActivationOtpMode:     http.StatusBadRequest,
	services.CodeInvalidApplication:           http.StatusBadRequest,
	services.CodeInvalidRecoveryConfiguration: http.StatusBadRequest,
	services.CodeActivationExpired:            http.StatusBadRequest,
	services.CodeActivationIncorrectState:     http.StatusBadRequest,
	services.CodeInvalidActivationOtp:         http.StatusBadRequest,
	services.CodeDecryptionFailed:             http.StatusBadRequest,
	services.CodeInvalidRecoveryCode:          http.StatusBadRequest,
	services.CodeActivationNotFound:           http.StatusNotFound,
	services.CodeRecoveryCodeNotFound:         http.StatusNotFound,
	services.CodeMissingTemporaryKey:          http.StatusNotFound,
	services.CodeRecoveryCodeAlreadyExists:    http.StatusConflict,
}

// HTTPStatus 서비스 에러 코드를 HTTP 상태로 변환
func HTTPStatus(code services.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func respondOK(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, models.SuccessResponse(message, data))
}

// decodeJSON 본문 파싱 실패 시 400 을 쓰고 false
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID(r),
			"path":       r.URL.Path,
			"error":      err.Error(),
		}).Warn("Invalid request body")
		writeJSON(w, http.StatusBadRequest, models.CodedErrorResponse(string(services.CodeInvalidRequest),
			services.Localize(services.CodeInvalidRequest, locale(r)), err))
		return false
	}
	return true
}

// respondError ServiceError 는 코드와 지역화된 메시지로, 그 외 에러는 UNKNOWN_ERROR 로 응답한다
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := services.CodeOf(err)
	status := HTTPStatus(code)

	resp := models.CodedErrorResponse(string(code), services.Localize(code, locale(r)), nil)
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		resp.CurrentPukIndex = svcErr.CurrentPukIndex
	}

	fields := map[string]interface{}{
		"request_id": requestID(r),
		"path":       r.URL.Path,
		"code":       code,
		"error":      err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.WithFields(fields).Error("Request failed")
	} else {
		logger.WithFields(fields).Warn("Request rejected")
	}
	writeJSON(w, status, resp)
}

// DefaultLocale Accept-Language 가 없을 때 쓰는 메시지 언어
var DefaultLocale = "en"

// locale Accept-Language 의 첫 언어 태그
func locale(r *http.Request) string {
	lang := r.Header.Get("Accept-Language")
	if i := strings.IndexAny(lang, ",;-_"); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return DefaultLocale
	}
	return lang
}

func requestID(r *http.Request) string {
	return middleware.RequestID(r.Context())
}

package handlers

import (
	"net/http"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/services"
)

// RecoveryHandler 복구 코드 API
type RecoveryHandler struct {
	service services.RecoveryService
}

func NewRecoveryHandler(service services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{service: service}
}

// Create 포스트카드 복구 코드 생성
// @Summary 포스트카드 복구 코드 생성
// @Description 인쇄 측이 같은 코드와 PUK 를 파생할 수 있도록 nonce 와 PUK 파생 인덱스를 반환합니다
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateRecoveryCodeRequest true "생성 요청"
// @Success 200 {object} models.APIResponse{data=models.CreateRecoveryCodeResponse}
// @Failure 409 {object} models.APIResponse
// @Router /rest/v3/recovery/create [post]
func (h *RecoveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRecoveryCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.CreateRecoveryCode(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logger.WithFields(map[string]interface{}{
		"request_id":       requestID(r),
		"recovery_code_id": resp.RecoveryCodeID,
	}).Info("Recovery code created")
	respondOK(w, "Recovery code created", resp)
}

// Confirm 복구 코드 확인
// @Summary 복구 코드 확인
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ConfirmRecoveryCodeRequest true "암호화된 확인 요청"
// @Success 200 {object} models.APIResponse{data=models.ConfirmRecoveryCodeResponse}
// @Router /rest/v3/recovery/confirm [post]
func (h *RecoveryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmRecoveryCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.ConfirmRecoveryCode(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Recovery code confirmed", resp)
}

// Lookup 복구 코드 검색
// @Summary 복구 코드 검색
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LookupRecoveryCodesRequest true "검색 조건"
// @Success 200 {object} models.APIResponse{data=[]models.RecoveryCode}
// @Router /rest/v3/recovery/lookup [post]
func (h *RecoveryHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRecoveryCodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	codes, err := h.service.LookupRecoveryCodes(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Recovery codes retrieved", codes)
}

// Revoke 복구 코드 폐기
// @Summary 복구 코드 폐기
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RevokeRecoveryCodesRequest true "폐기할 코드 ID"
// @Success 200 {object} models.APIResponse{data=models.RevokeRecoveryCodesResponse}
// @Router /rest/v3/recovery/revoke [post]
func (h *RecoveryHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req models.RevokeRecoveryCodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.RevokeRecoveryCodes(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Recovery codes revoked", resp)
}

// GetConfig 복구 설정 조회
// @Summary 복구 설정 조회
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ApplicationIDRequest true "애플리케이션 ID"
// @Success 200 {object} models.APIResponse{data=models.RecoveryConfig}
// @Router /rest/v3/recovery/config/detail [post]
func (h *RecoveryHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg, err := h.service.GetRecoveryConfig(r.Context(), req.ApplicationID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Recovery config", cfg)
}

// UpdateConfig 복구 설정 변경
// @Summary 복구 설정 변경
// @Tags 복구
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateRecoveryConfigRequest true "설정"
// @Success 200 {object} models.APIResponse{data=models.RecoveryConfig}
// @Router /rest/v3/recovery/config/update [post]
func (h *RecoveryHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRecoveryConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg, err := h.service.UpdateRecoveryConfig(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Recovery config updated", cfg)
}

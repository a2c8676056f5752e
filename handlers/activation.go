package handlers

import (
	"net/http"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/services"
)

// ActivationHandler 활성화 수명주기 API
type ActivationHandler struct {
	service services.ActivationService
}

// NewActivationHandler 활성화 핸들러 생성
func NewActivationHandler(service services.ActivationService) *ActivationHandler {
	return &ActivationHandler{service: service}
}

// Init 활성화 초기화
// @Summary 활성화 초기화
// @Description 사용자에게 전달할 활성화 코드와 코드 서명을 발급합니다
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InitActivationRequest true "초기화 정보"
// @Success 200 {object} models.APIResponse{data=models.InitActivationResponse}
// @Failure 400 {object} models.APIResponse
// @Router /rest/v3/activation/init [post]
func (h *ActivationHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req models.InitActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Init(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logger.WithFields(map[string]interface{}{
		"request_id":     requestID(r),
		"activation_id":  resp.ActivationID,
		"application_id": req.ApplicationID,
	}).Info("Activation initialized")
	respondOK(w, "Activation initialized", resp)
}

// Prepare 키 교환
// @Summary 활성화 준비 (키 교환)
// @Description 활성화 코드와 ECIES 로 암호화된 디바이스 공개키로 키 교환을 수행합니다
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PrepareActivationRequest true "암호화된 키 교환 요청"
// @Success 200 {object} models.APIResponse{data=models.PrepareActivationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /rest/v3/activation/prepare [post]
func (h *ActivationHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	var req models.PrepareActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Prepare(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation prepared", resp)
}

// Create 초기화와 키 교환을 한 번에
// @Summary 활성화 생성
// @Description 사용자 ID 로 초기화와 키 교환을 한 번에 수행합니다
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateActivationRequest true "생성 요청"
// @Success 200 {object} models.APIResponse{data=models.PrepareActivationResponse}
// @Failure 400 {object} models.APIResponse
// @Router /rest/v3/activation/create [post]
func (h *ActivationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation created", resp)
}

// Commit 활성화 커밋
// @Summary 활성화 커밋
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CommitActivationRequest true "커밋 요청"
// @Success 200 {object} models.APIResponse{data=models.CommitActivationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /rest/v3/activation/commit [post]
func (h *ActivationHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req models.CommitActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Commit(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation committed", resp)
}

// UpdateOtp 활성화 OTP 변경
// @Summary 활성화 OTP 변경
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateActivationOtpRequest true "OTP 변경 요청"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /rest/v3/activation/otp/update [post]
func (h *ActivationHandler) UpdateOtp(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateActivationOtpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.UpdateOtp(r.Context(), req); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation OTP updated", nil)
}

// Status 상태 조회
// @Summary 활성화 상태 조회
// @Description 상태와 디바이스용 암호화 상태 블롭을 반환합니다. 없는 활성화는 REMOVED 로 응답합니다
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationStatusRequest true "조회 요청"
// @Success 200 {object} models.APIResponse{data=models.ActivationStatusResponse}
// @Router /rest/v3/activation/status [post]
func (h *ActivationHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.GetStatus(r.Context(), req.ActivationID, req.Challenge)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation status", resp)
}

// Block 차단
// @Summary 활성화 차단
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BlockActivationRequest true "차단 요청"
// @Success 200 {object} models.APIResponse{data=models.ActivationStatusChangeResponse}
// @Failure 404 {object} models.APIResponse
// @Router /rest/v3/activation/block [post]
func (h *ActivationHandler) Block(w http.ResponseWriter, r *http.Request) {
	var req models.BlockActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Block(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation blocked", resp)
}

// Unblock 차단 해제
// @Summary 활성화 차단 해제
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UnblockActivationRequest true "해제 요청"
// @Success 200 {object} models.APIResponse{data=models.ActivationStatusChangeResponse}
// @Failure 404 {object} models.APIResponse
// @Router /rest/v3/activation/unblock [post]
func (h *ActivationHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	var req models.UnblockActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Unblock(r.Context(), req.ActivationID, req.ExternalUserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation unblocked", resp)
}

// Remove 삭제
// @Summary 활성화 삭제
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RemoveActivationRequest true "삭제 요청"
// @Success 200 {object} models.APIResponse{data=models.ActivationStatusChangeResponse}
// @Failure 404 {object} models.APIResponse
// @Router /rest/v3/activation/remove [post]
func (h *ActivationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.Remove(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation removed", resp)
}

// List 사용자 활성화 목록
// @Summary 사용자 활성화 목록
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ListActivationsRequest true "조회 조건"
// @Success 200 {object} models.APIResponse{data=[]models.Activation}
// @Router /rest/v3/activation/list [post]
func (h *ActivationHandler) List(w http.ResponseWriter, r *http.Request) {
	var req models.ListActivationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	activations, err := h.service.List(r.Context(), req.UserID, req.ApplicationID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activations retrieved", activations)
}

// Lookup 조건 검색
// @Summary 활성화 검색
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationLookupRequest true "검색 조건"
// @Success 200 {object} models.APIResponse{data=[]models.Activation}
// @Router /rest/v3/activation/lookup [post]
func (h *ActivationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationLookupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	activations, err := h.service.Lookup(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activations retrieved", activations)
}

// History 상태 변경 이력
// @Summary 활성화 이력
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationHistoryRequest true "조회 구간"
// @Success 200 {object} models.APIResponse{data=[]models.ActivationHistory}
// @Router /rest/v3/activation/history [post]
func (h *ActivationHandler) History(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationHistoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	history, err := h.service.History(r.Context(), req.ActivationID, req.TimestampFrom, req.TimestampTo)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation history", history)
}

// RecoveryCreate 복구 코드와 PUK 로 새 활성화
// @Summary 복구 코드로 활성화 생성
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RecoveryActivationRequest true "복구 요청"
// @Success 200 {object} models.APIResponse{data=models.PrepareActivationResponse}
// @Failure 400 {object} models.APIResponse "INVALID_RECOVERY_CODE 이면 current_recovery_puk_index 포함"
// @Router /rest/v3/activation/recovery/create [post]
func (h *ActivationHandler) RecoveryCreate(w http.ResponseWriter, r *http.Request) {
	var req models.RecoveryActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.CreateUsingRecoveryCode(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation created using recovery code", resp)
}

// ListFlags 플래그 조회
// @Summary 활성화 플래그 조회
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationIDRequest true "활성화 ID"
// @Success 200 {object} models.APIResponse{data=models.ActivationFlagsResponse}
// @Router /rest/v3/activation/flags/list [post]
func (h *ActivationHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.ListFlags(r.Context(), req.ActivationID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation flags", resp)
}

// AddFlags 플래그 추가
// @Summary 활성화 플래그 추가
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationFlagsRequest true "추가할 플래그"
// @Success 200 {object} models.APIResponse{data=models.ActivationFlagsResponse}
// @Router /rest/v3/activation/flags/create [post]
func (h *ActivationHandler) AddFlags(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationFlagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.AddFlags(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation flags added", resp)
}

// RemoveFlags 플래그 삭제
// @Summary 활성화 플래그 삭제
// @Tags 활성화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ActivationFlagsRequest true "삭제할 플래그"
// @Success 200 {object} models.APIResponse{data=models.ActivationFlagsResponse}
// @Router /rest/v3/activation/flags/remove [post]
func (h *ActivationHandler) RemoveFlags(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationFlagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.RemoveFlags(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Activation flags removed", resp)
}

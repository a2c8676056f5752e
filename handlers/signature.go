package handlers

import (
	"net/http"

	"powerauthserver/models"
	"powerauthserver/services"
)

// SignatureHandler 서명 검증과 오프라인 페이로드 API
type SignatureHandler struct {
	service services.SignatureService
}

func NewSignatureHandler(service services.SignatureService) *SignatureHandler {
	return &SignatureHandler{service: service}
}

// Verify 온라인 서명 검증
// @Summary 온라인 서명 검증
// @Description 해시 체인 또는 숫자 카운터 창 안에서 서명을 검증하고 카운터와 실패 횟수를 갱신합니다
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VerifySignatureRequest true "검증 요청"
// @Success 200 {object} models.APIResponse{data=models.VerifySignatureResponse}
// @Failure 400 {object} models.APIResponse
// @Router /rest/v3/signature/verify [post]
func (h *SignatureHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifySignatureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.VerifySignature(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Signature verified", resp)
}

// VerifyOffline 오프라인 서명 검증
// @Summary 오프라인 서명 검증
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VerifyOfflineSignatureRequest true "검증 요청"
// @Success 200 {object} models.APIResponse{data=models.VerifySignatureResponse}
// @Router /rest/v3/signature/offline/verify [post]
func (h *SignatureHandler) VerifyOffline(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOfflineSignatureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.VerifyOfflineSignature(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Offline signature verified", resp)
}

// PersonalizedPayload 서버 개인키로 서명한 오프라인 페이로드
// @Summary 개인화 오프라인 페이로드
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.OfflinePayloadRequest true "페이로드 요청"
// @Success 200 {object} models.APIResponse{data=models.OfflinePayloadResponse}
// @Router /rest/v3/signature/offline/personalized/create [post]
func (h *SignatureHandler) PersonalizedPayload(w http.ResponseWriter, r *http.Request) {
	var req models.OfflinePayloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.CreatePersonalizedOfflinePayload(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Offline payload created", resp)
}

// NonPersonalizedPayload 마스터 개인키로 서명한 오프라인 페이로드
// @Summary 비개인화 오프라인 페이로드
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.OfflinePayloadRequest true "페이로드 요청"
// @Success 200 {object} models.APIResponse{data=models.OfflinePayloadResponse}
// @Router /rest/v3/signature/offline/non-personalized/create [post]
func (h *SignatureHandler) NonPersonalizedPayload(w http.ResponseWriter, r *http.Request) {
	var req models.OfflinePayloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.CreateNonPersonalizedOfflinePayload(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Offline payload created", resp)
}

// VerifyECDSA 디바이스 키 ECDSA 서명 검증
// @Summary ECDSA 서명 검증
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.VerifyECDSASignatureRequest true "검증 요청"
// @Success 200 {object} models.APIResponse{data=models.VerifyECDSASignatureResponse}
// @Router /rest/v3/signature/ecdsa/verify [post]
func (h *SignatureHandler) VerifyECDSA(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyECDSASignatureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.service.VerifyECDSASignature(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "ECDSA signature verified", resp)
}

// AuditLog 서명 감사 로그
// @Summary 서명 감사 로그 조회
// @Description 구간을 생략하면 최근 30일을 조회합니다
// @Tags 서명
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SignatureAuditRequest true "조회 조건"
// @Success 200 {object} models.APIResponse{data=[]models.SignatureAudit}
// @Router /rest/v3/signature/audit [post]
func (h *SignatureHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	var req models.SignatureAuditRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	records, err := h.service.GetSignatureAuditLog(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Signature audit log", records)
}

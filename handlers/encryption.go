package handlers

import (
	"net/http"

	"powerauthserver/models"
	"powerauthserver/services"
)

// EncryptionHandler ECIES 파라미터와 임시 키 API
type EncryptionHandler struct {
	encryption    services.EncryptionService
	temporaryKeys services.TemporaryKeyService
}

func NewEncryptionHandler(encryption services.EncryptionService, temporaryKeys services.TemporaryKeyService) *EncryptionHandler {
	return &EncryptionHandler{encryption: encryption, temporaryKeys: temporaryKeys}
}

// Decryptor 외부 서비스가 직접 복호화할 수 있도록 envelope 키를 내준다
// @Summary ECIES 복호화 파라미터
// @Tags 암호화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EciesDecryptorRequest true "요청 파라미터"
// @Success 200 {object} models.APIResponse{data=models.EciesDecryptorResponse}
// @Router /rest/v3/ecies/decryptor [post]
func (h *EncryptionHandler) Decryptor(w http.ResponseWriter, r *http.Request) {
	var req models.EciesDecryptorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.encryption.GetEciesDecryptor(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "ECIES decryptor parameters", resp)
}

// CreateTemporaryKey 임시 키 발급
// @Summary 임시 ECIES 키 발급
// @Description 클라이언트가 HS256 으로 서명한 JWT 를 받아 ES256 으로 서명한 공개키 JWT 를 반환합니다
// @Tags 암호화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TemporaryKeyRequest true "요청 JWT"
// @Success 200 {object} models.APIResponse{data=models.TemporaryKeyResponse}
// @Router /rest/v3/keystore/create [post]
func (h *EncryptionHandler) CreateTemporaryKey(w http.ResponseWriter, r *http.Request) {
	var req models.TemporaryKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.temporaryKeys.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Temporary key created", resp)
}

// RemoveTemporaryKey 임시 키 삭제
// @Summary 임시 ECIES 키 삭제
// @Tags 암호화
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RemoveTemporaryKeyRequest true "키 ID"
// @Success 200 {object} models.APIResponse
// @Router /rest/v3/keystore/remove [post]
func (h *EncryptionHandler) RemoveTemporaryKey(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveTemporaryKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.temporaryKeys.Remove(r.Context(), req.ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Temporary key removed", nil)
}

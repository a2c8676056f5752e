package handlers

import (
	"net/http"

	"powerauthserver/logger"
	"powerauthserver/models"
	"powerauthserver/services"
)

// ApplicationHandler 애플리케이션, 버전, 콜백 관리 API
type ApplicationHandler struct {
	service services.ApplicationService
}

func NewApplicationHandler(service services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Create 애플리케이션 생성
// @Summary 애플리케이션 생성
// @Description 마스터 키쌍과 기본 버전을 함께 만듭니다
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateApplicationRequest true "애플리케이션 정보"
// @Success 200 {object} models.APIResponse{data=models.ApplicationDetail}
// @Router /rest/v3/application/create [post]
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logger.WithFields(map[string]interface{}{
		"request_id":     requestID(r),
		"application_id": app.ID,
		"name":           app.Name,
	}).Info("Application created")
	respondOK(w, "Application created", app)
}

// List 애플리케이션 목록
// @Summary 애플리케이션 목록
// @Tags 애플리케이션
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.Application}
// @Router /rest/v3/application/list [post]
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Applications retrieved", apps)
}

// Detail 애플리케이션 상세
// @Summary 애플리케이션 상세
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ApplicationIDRequest true "애플리케이션 ID"
// @Success 200 {object} models.APIResponse{data=models.ApplicationDetail}
// @Router /rest/v3/application/detail [post]
func (h *ApplicationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	app, err := h.service.Get(r.Context(), req.ApplicationID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Application detail", app)
}

// CreateVersion 버전 추가
// @Summary 애플리케이션 버전 추가
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateApplicationVersionRequest true "버전 정보"
// @Success 200 {object} models.APIResponse{data=models.ApplicationVersion}
// @Router /rest/v3/application/version/create [post]
func (h *ApplicationHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateApplicationVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	version, err := h.service.CreateVersion(r.Context(), req.ApplicationID, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Application version created", version)
}

// SetVersionSupport 버전 지원 여부 변경
// @Summary 애플리케이션 버전 지원 여부 변경
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ApplicationVersionSupportRequest true "지원 여부"
// @Success 200 {object} models.APIResponse
// @Router /rest/v3/application/version/support [post]
func (h *ApplicationHandler) SetVersionSupport(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationVersionSupportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.SetVersionSupported(r.Context(), req.VersionID, req.Supported); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Application version updated", req)
}

// CreateCallback 콜백 URL 등록
// @Summary 콜백 URL 등록
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCallbackURLRequest true "콜백 정보"
// @Success 200 {object} models.APIResponse{data=models.CallbackURL}
// @Router /rest/v3/application/callback/create [post]
func (h *ApplicationHandler) CreateCallback(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCallbackURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cb, err := h.service.CreateCallbackURL(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Callback URL created", cb)
}

// ListCallbacks 콜백 URL 목록
// @Summary 콜백 URL 목록
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ApplicationIDRequest true "애플리케이션 ID"
// @Success 200 {object} models.APIResponse{data=[]models.CallbackURL}
// @Router /rest/v3/application/callback/list [post]
func (h *ApplicationHandler) ListCallbacks(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicationIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	callbacks, err := h.service.ListCallbackURLs(r.Context(), req.ApplicationID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Callback URLs retrieved", callbacks)
}

// RemoveCallback 콜백 URL 삭제
// @Summary 콜백 URL 삭제
// @Tags 애플리케이션
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.RemoveCallbackURLRequest true "콜백 ID"
// @Success 200 {object} models.APIResponse
// @Router /rest/v3/application/callback/remove [post]
func (h *ApplicationHandler) RemoveCallback(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveCallbackURLRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.service.RemoveCallbackURL(r.Context(), req.ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, "Callback URL removed", nil)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"powerauthserver/models"
)

// Pinger DB 연결 확인
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health 헬스 체크
// @Summary 헬스 체크
// @Tags 시스템
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /health [get]
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse("Database unavailable", err))
			return
		}
		respondOK(w, "OK", map[string]string{"database": "up"})
	}
}

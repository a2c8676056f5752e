package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"powerauthserver/config"
	"powerauthserver/logger"
	"powerauthserver/metrics"
	"powerauthserver/models"
	"powerauthserver/utils"
)

// Notifier 활성화 상태 변경 알림
type Notifier interface {
	NotifyActivationChange(ctx context.Context, activation models.Activation)
}

// CallbackNotifier 애플리케이션에 등록된 콜백 URL 로 HMAC 서명된 이벤트를 보낸다
type CallbackNotifier struct {
	db      Querier
	client  *retryablehttp.Client
	secret  []byte
	timeout time.Duration
	now     utils.Clock
	wg      sync.WaitGroup
}

// NewCallbackNotifier 재시도 HTTP 클라이언트 기반 알림기 생성
func NewCallbackNotifier(db Querier, cfg config.CallbackConfig) *CallbackNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin.Duration
	client.RetryWaitMax = cfg.RetryWaitMax.Duration
	client.Logger = nil
	return &CallbackNotifier{
		db:      db,
		client:  client,
		secret:  []byte(cfg.Secret),
		timeout: cfg.Timeout.Duration,
		now:     time.Now,
	}
}

// NotifyActivationChange 콜백 전송은 백그라운드에서 진행된다
func (n *CallbackNotifier) NotifyActivationChange(ctx context.Context, activation models.Activation) {
	urls, err := n.callbackURLs(ctx, activation.ApplicationID)
	if err != nil {
		logger.Error("failed to load callback urls for application %d: %v", activation.ApplicationID, err)
		return
	}
	if len(urls) == 0 {
		return
	}

	event := models.ActivationChangeEvent{
		ActivationID:     activation.ActivationID,
		UserID:           activation.UserID,
		ApplicationID:    activation.ApplicationID,
		ActivationStatus: activation.Status,
		BlockedReason:    activation.BlockedReason,
		ActivationFlags:  activation.Flags,
		Timestamp:        n.now().UTC(),
	}
	if event.ActivationFlags == nil {
		event.ActivationFlags = []string{}
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode callback event: %v", err)
		return
	}

	for _, cb := range urls {
		n.wg.Add(1)
		go func(cb models.CallbackURL) {
			defer n.wg.Done()
			sendCtx, cancel := context.WithTimeout(context.Background(), n.timeout)
			defer cancel()
			err := n.send(sendCtx, cb.URL, body)
			metrics.CallbackDelivered(err == nil)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"activation_id": activation.ActivationID,
					"callback":      cb.Name,
				}).WithError(err).Warn("callback delivery failed")
			}
		}(cb)
	}
}

// Wait 진행 중인 전송 완료 대기 (종료 시)
func (n *CallbackNotifier) Wait() {
	n.wg.Wait()
}

func (n *CallbackNotifier) send(ctx context.Context, url string, body []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(n.secret) > 0 {
		req.Header.Set(utils.CallbackSignatureHeader, utils.SignCallbackPayload(n.secret, body, n.now()))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (n *CallbackNotifier) callbackURLs(ctx context.Context, applicationID int64) ([]models.CallbackURL, error) {
	rows, err := n.db.QueryContext(ctx, `
		SELECT id, application_id, name, callback_url FROM callback_urls WHERE application_id = ?`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []models.CallbackURL
	for rows.Next() {
		var cb models.CallbackURL
		if err := rows.Scan(&cb.ID, &cb.ApplicationID, &cb.Name, &cb.URL); err != nil {
			return nil, err
		}
		urls = append(urls, cb)
	}
	return urls, rows.Err()
}

// RecordingNotifier 메모리에 알림을 모은다 (테스트, 콜백 미설정 환경)
type RecordingNotifier struct {
	mu     sync.Mutex
	events []models.Activation
}

func (r *RecordingNotifier) NotifyActivationChange(_ context.Context, activation models.Activation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, activation)
}

// Events 기록된 알림 복사본
func (r *RecordingNotifier) Events() []models.Activation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Activation(nil), r.events...)
}

// notifyAfterCommit 커밋 후 알림. 이후 변경이 영향을 주지 않도록 값을 복사한다
func notifyAfterCommit(ctx context.Context, q Querier, n Notifier, activation *models.Activation) {
	snapshot := *activation
	snapshot.Flags = append([]string(nil), activation.Flags...)
	afterCommit(q, func() {
		metrics.ActivationStatusChanged(string(snapshot.Status))
		if n != nil {
			n.NotifyActivationChange(context.WithoutCancel(ctx), snapshot)
		}
	})
}

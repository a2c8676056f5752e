// Package metrics exposes Prometheus collectors for the server.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry 서버 전용 레지스트리 (/metrics 에서 노출)
	Registry = prometheus.NewRegistry()

	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerauth",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "powerauth",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	activationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerauth",
		Name:      "activation_status_changes_total",
		Help:      "Activation status transitions by target status.",
	}, []string{"status"})

	signatureVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerauth",
		Name:      "signature_verifications_total",
		Help:      "Signature verification outcomes.",
	}, []string{"mode", "outcome"})

	callbackDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerauth",
		Name:      "callback_deliveries_total",
		Help:      "Activation change callback deliveries.",
	}, []string{"result"})

	schedulerRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "powerauth",
		Name:      "scheduler_job_runs_total",
		Help:      "Scheduled job executions.",
	}, []string{"job", "result"})
)

// MustRegister 수집기 등록 (한 번만)
func MustRegister() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			httpRequests,
			httpDuration,
			activationTransitions,
			signatureVerifications,
			callbackDeliveries,
			schedulerRuns,
		)
	})
}

// ObserveHTTP HTTP 요청 기록
func ObserveHTTP(route, method string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ActivationStatusChanged 활성화 상태 전이 기록
func ActivationStatusChanged(status string) {
	activationTransitions.WithLabelValues(status).Inc()
}

// SignatureVerified 서명 검증 결과 기록
func SignatureVerified(mode, outcome string) {
	signatureVerifications.WithLabelValues(mode, outcome).Inc()
}

// CallbackDelivered 콜백 전송 결과 기록
func CallbackDelivered(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	callbackDeliveries.WithLabelValues(result).Inc()
}

// SchedulerRun 스케줄 작업 실행 기록
func SchedulerRun(job string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	schedulerRuns.WithLabelValues(job, result).Inc()
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"powerauthserver/config"
	"powerauthserver/logger"
	"powerauthserver/metrics"
	"powerauthserver/services"
)

// Job 주기 작업. Run 은 처리한 건수를 돌려준다.
// LockAtLeastFor 가 0 이면 Add 가 실행 주기의 80% 로 채운다.
type Job struct {
	Name           string
	Spec           string
	LockAtLeastFor time.Duration
	Run            func(ctx context.Context) (int64, error)
}

// lockAtLeastRatio 실행 주기 대비 최소 잠금 비율
const lockAtLeastRatio = 0.8

// Scheduler 클러스터 잠금 아래에서 정리 작업을 실행한다
type Scheduler struct {
	cron          *cron.Cron
	lock          services.ClusterLock
	lockAtMostFor time.Duration
	jobs          map[string]Job
	ctx           context.Context
	cancel        context.CancelFunc
}

// New 기본 정리 작업(대기 활성화 만료, 임시 키, 재전송 방지 값)을 등록한다
func New(cfg config.SchedulerConfig, lock services.ClusterLock, activations services.ActivationService,
	temporaryKeys services.TemporaryKeyService, replay services.ReplayService) (*Scheduler, error) {
	s := newScheduler(lock, cfg.LockAtMostFor.Duration)
	jobs := []Job{
		{
			Name: "expire-activations",
			Spec: cfg.ExpireActivations,
			Run: func(ctx context.Context) (int64, error) {
				n, err := activations.ExpireAbandoned(ctx)
				return int64(n), err
			},
		},
		{Name: "expire-temporary-keys", Spec: cfg.ExpireTemporaryKeys, Run: temporaryKeys.DeleteExpired},
		{Name: "expire-unique-values", Spec: cfg.ExpireUniqueValues, Run: replay.DeleteExpired},
	}
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newScheduler(lock services.ClusterLock, lockAtMostFor time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:          cron.New(cron.WithChain(cron.Recover(cronLogger{}))),
		lock:          lock,
		lockAtMostFor: lockAtMostFor,
		jobs:          make(map[string]Job),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Add 빈 Spec 은 비활성 작업으로 보고 건너뛴다
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		logger.Info("Scheduled job %s is disabled", job.Name)
		return nil
	}
	schedule, err := cron.ParseStandard(job.Spec)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	if job.LockAtLeastFor == 0 {
		job.LockAtLeastFor = lockAtLeastFor(schedule, time.Now())
	}
	if job.LockAtLeastFor > s.lockAtMostFor {
		job.LockAtLeastFor = s.lockAtMostFor
	}
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.RunJob(job.Name) }))
	s.jobs[job.Name] = job
	return nil
}

// lockAtLeastFor 연속된 두 실행 시각 간격의 80%
func lockAtLeastFor(schedule cron.Schedule, from time.Time) time.Duration {
	first := schedule.Next(from)
	interval := schedule.Next(first).Sub(first)
	return time.Duration(float64(interval) * lockAtLeastRatio)
}

// Start 스케줄러 시작
func (s *Scheduler) Start() {
	logger.Info("Scheduler started with %d jobs", len(s.jobs))
	s.cron.Start()
}

// Stop 새 실행을 막고 진행 중인 작업이 끝날 때까지 기다린다
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("Scheduler stop timed out, cancelling running jobs")
	}
	s.cancel()
}

// RunJob 잠금을 얻은 노드만 작업을 실행한다. 잠금을 못 얻으면 false
func (s *Scheduler) RunJob(name string) bool {
	job, ok := s.jobs[name]
	if !ok {
		return false
	}

	locked, err := s.lock.TryLock(s.ctx, name, s.lockAtMostFor, job.LockAtLeastFor)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"job":   name,
			"error": err.Error(),
		}).Error("Failed to acquire scheduler lock")
		metrics.SchedulerRun(name, err)
		return false
	}
	if !locked {
		logger.Debug("Scheduled job %s is running on another node", name)
		return false
	}
	defer func() {
		if err := s.lock.Unlock(s.ctx, name); err != nil {
			logger.Warn("Failed to release scheduler lock %s: %v", name, err)
		}
	}()

	start := time.Now()
	count, err := job.Run(s.ctx)
	metrics.SchedulerRun(name, err)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"job":   name,
			"error": err.Error(),
		}).Error("Scheduled job failed")
		return true
	}
	if count > 0 {
		logger.WithFields(map[string]interface{}{
			"job":      name,
			"count":    count,
			"duration": time.Since(start).String(),
		}).Info("Scheduled job finished")
	}
	return true
}

// cronLogger cron 내부 로그를 애플리케이션 로거로 보낸다
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}

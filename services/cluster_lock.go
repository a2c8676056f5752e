package services

import (
	"context"
	"sync"
	"time"

	"powerauthserver/utils"
)

// ClusterLock 여러 노드 중 하나만 예약 작업을 실행하도록 보장한다.
// lockAtLeastFor 는 작업이 빨리 끝나도 잠금이 유지되는 최소 시간이다.
type ClusterLock interface {
	TryLock(ctx context.Context, name string, lockAtMostFor, lockAtLeastFor time.Duration) (bool, error)
	Unlock(ctx context.Context, name string) error
}

type shedLock struct {
	db   Querier
	node string
	now  utils.Clock

	mu         sync.Mutex
	leastUntil map[string]time.Time
}

// NewClusterLock shedlock 테이블 기반 잠금
func NewClusterLock(db Querier, node string, now utils.Clock) ClusterLock {
	return &shedLock{db: db, node: node, now: now, leastUntil: make(map[string]time.Time)}
}

func (l *shedLock) TryLock(ctx context.Context, name string, lockAtMostFor, lockAtLeastFor time.Duration) (bool, error) {
	locked, err := l.acquire(ctx, name, lockAtMostFor)
	if err != nil || !locked {
		return locked, err
	}
	l.mu.Lock()
	l.leastUntil[name] = l.now().Add(lockAtLeastFor)
	l.mu.Unlock()
	return true, nil
}

func (l *shedLock) acquire(ctx context.Context, name string, lockAtMostFor time.Duration) (bool, error) {
	now := l.now()
	nowStr := utils.FormatDateTimeForDB(now)
	until := utils.FormatDateTimeForDB(now.Add(lockAtMostFor))

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO shedlock (name, lock_until, locked_at, locked_by) VALUES (?, ?, ?, ?)`,
		name, until, nowStr, l.node)
	if err == nil {
		return true, nil
	}
	if !isDuplicateKeyError(err) {
		return false, err
	}

	// 만료된 잠금만 가져올 수 있다
	res, err := l.db.ExecContext(ctx, `
		UPDATE shedlock SET lock_until = ?, locked_at = ?, locked_by = ?
		WHERE name = ? AND lock_until <= ?`,
		until, nowStr, l.node, name, nowStr)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Unlock lock_until 을 max(now, locked_at+lockAtLeastFor) 로 당긴다
func (l *shedLock) Unlock(ctx context.Context, name string) error {
	until := l.now()
	l.mu.Lock()
	if least, ok := l.leastUntil[name]; ok {
		if least.After(until) {
			until = least
		}
		delete(l.leastUntil, name)
	}
	l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		UPDATE shedlock SET lock_until = ? WHERE name = ? AND locked_by = ?`,
		utils.FormatDateTimeForDB(until), name, l.node)
	return err
}

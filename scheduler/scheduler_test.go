package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	mu       sync.Mutex
	held     map[string]bool
	atLeast  map[string]time.Duration
	err      error
	unlocked []string
}

func (l *fakeLock) TryLock(_ context.Context, name string, _, lockAtLeastFor time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.atLeast == nil {
		l.atLeast = make(map[string]time.Duration)
	}
	l.atLeast[name] = lockAtLeastFor
	if l.held[name] {
		return false, nil
	}
	l.held[name] = true
	return true, nil
}

func (l *fakeLock) Unlock(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, name)
	l.unlocked = append(l.unlocked, name)
	return nil
}

func TestRunJobUnderLock(t *testing.T) {
	lock := &fakeLock{held: map[string]bool{}}
	s := newScheduler(lock, time.Minute)

	runs := 0
	require.NoError(t, s.Add(Job{Name: "cleanup", Spec: "@every 1h", Run: func(context.Context) (int64, error) {
		runs++
		return 3, nil
	}}))

	assert.True(t, s.RunJob("cleanup"))
	assert.Equal(t, 1, runs)
	assert.Equal(t, []string{"cleanup"}, lock.unlocked)

	lock.held["cleanup"] = true
	assert.False(t, s.RunJob("cleanup"), "locked by another node")
	assert.Equal(t, 1, runs)

	assert.False(t, s.RunJob("unknown"))
}

func TestRunJobFailures(t *testing.T) {
	lock := &fakeLock{held: map[string]bool{}}
	s := newScheduler(lock, time.Minute)
	require.NoError(t, s.Add(Job{Name: "broken", Spec: "@every 1h", Run: func(context.Context) (int64, error) {
		return 0, errors.New("db down")
	}}))

	assert.True(t, s.RunJob("broken"))
	assert.False(t, lock.held["broken"], "lock released after failure")

	lock.err = errors.New("lock table missing")
	assert.False(t, s.RunJob("broken"))
}

func TestAddJob(t *testing.T) {
	s := newScheduler(&fakeLock{held: map[string]bool{}}, time.Minute)

	require.NoError(t, s.Add(Job{Name: "disabled", Run: func(context.Context) (int64, error) { return 0, nil }}))
	assert.NotContains(t, s.jobs, "disabled")

	err := s.Add(Job{Name: "bad", Spec: "not a cron spec", Run: func(context.Context) (int64, error) { return 0, nil }})
	assert.Error(t, err)
}

func TestLockAtLeastForFollowsInterval(t *testing.T) {
	lock := &fakeLock{held: map[string]bool{}}
	s := newScheduler(lock, 5*time.Minute)
	noop := func(context.Context) (int64, error) { return 0, nil }

	require.NoError(t, s.Add(Job{Name: "every-minute", Spec: "@every 1m", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "every-ten-seconds", Spec: "@every 10s", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "hourly", Spec: "0 * * * *", Run: noop}))
	require.NoError(t, s.Add(Job{Name: "explicit", Spec: "@every 1m", LockAtLeastFor: 5 * time.Second, Run: noop}))

	for _, name := range []string{"every-minute", "every-ten-seconds", "hourly", "explicit"} {
		require.True(t, s.RunJob(name))
	}
	assert.Equal(t, 48*time.Second, lock.atLeast["every-minute"])
	assert.Equal(t, 8*time.Second, lock.atLeast["every-ten-seconds"])
	assert.Equal(t, 5*time.Minute, lock.atLeast["hourly"], "capped at lockAtMostFor")
	assert.Equal(t, 5*time.Second, lock.atLeast["explicit"])
}

func TestStartStop(t *testing.T) {
	s := newScheduler(&fakeLock{held: map[string]bool{}}, time.Minute)
	require.NoError(t, s.Add(Job{Name: "noop", Spec: "@every 1h", Run: func(context.Context) (int64, error) { return 0, nil }}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.Error(t, s.ctx.Err())
}

package expiry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/logshare/backend/internal/config"
	"github.com/logshare/backend/internal/models"
	"github.com/logshare/backend/internal/service"
	"github.com/logshare/backend/internal/storage"
	"github.com/logshare/backend/internal/testutil"
)

type targetFunc func(ctx context.Context) (int, error)

func (f targetFunc) Sweep(ctx context.Context) (int, error) { return f(ctx) }

func TestRunOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := testutil.NewMockStore()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store.Put(&models.LogRecord{ID: "old001", LastAccessedAt: now.Add(-storage.DefaultRetention - time.Minute)})
	store.Put(&models.LogRecord{ID: "new001", LastAccessedAt: now.Add(-time.Second)})

	svc := service.New(store, service.WithClock(func() time.Time { return now }))
	s := New(svc, config.ExpiryConfig{Interval: time.Hour, Timeout: time.Minute}, zap.New(core))

	removed, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	entries := logs.FilterMessage("expiry sweep finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["removed"])
	assert.NotEmpty(t, fields["run_id"])
}

func TestRunOnce_Failure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	boom := errors.New("disk gone")
	s := New(targetFunc(func(context.Context) (int, error) { return 0, boom }), config.ExpiryConfig{}, zap.New(core))

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("expiry sweep failed").Len())
}

func TestRunOnce_AppliesTimeout(t *testing.T) {
	s := New(targetFunc(func(ctx context.Context) (int, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return 0, nil
	}), config.ExpiryConfig{Timeout: time.Second}, nil)

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
}

func TestRun_SweepsOnStartAndStops(t *testing.T) {
	var calls atomic.Int32
	s := New(targetFunc(func(context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	}), config.ExpiryConfig{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestTick_SkipsOverlappingRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	s := New(targetFunc(func(context.Context) (int, error) {
		calls.Add(1)
		close(started)
		<-release
		return 0, nil
	}), config.ExpiryConfig{}, nil)

	go s.RunOnce(context.Background())
	<-started

	s.tick(context.Background())
	close(release)

	// RunOnce acquires the lock after the first sweep finishes
	s.mu.Lock()
	s.mu.Unlock()
	assert.EqualValues(t, 1, calls.Load())
}

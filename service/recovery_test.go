package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mynaming/domain"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu            sync.Mutex
	registrations []domain.RedoRegistration
	subscriptions []domain.RedoSubscription
	err           error
	delay         time.Duration
	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
}

func (e *recordingExecutor) track() func() {
	n := e.inFlight.Add(1)
	for {
		peak := e.maxInFlight.Load()
		if n <= peak || e.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return func() { e.inFlight.Add(-1) }
}

func (e *recordingExecutor) redoRegistration(_ context.Context, reg domain.RedoRegistration) error {
	defer e.track()()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registrations = append(e.registrations, reg)
	return e.err
}

func (e *recordingExecutor) redoSubscription(_ context.Context, sub domain.RedoSubscription) error {
	defer e.track()()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscriptions = append(e.subscriptions, sub)
	return e.err
}

func (e *recordingExecutor) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.registrations), len(e.subscriptions)
}

func TestNewRecoveryDriver_Panics(t *testing.T) {
	store := NewRedoStore()
	exec := &recordingExecutor{}
	logger := log.NewNopLogger()
	metrics := newTestMetrics()

	t.Run("store_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.recovery.go: redo store is required", func() {
			NewRecoveryDriver(nil, exec, 1, logger, metrics)
		})
	})
	t.Run("executor_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.recovery.go: executor is required", func() {
			NewRecoveryDriver(store, nil, 1, logger, metrics)
		})
	})
	t.Run("concurrency_zero", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.recovery.go: concurrency must be at least 1", func() {
			NewRecoveryDriver(store, exec, 0, logger, metrics)
		})
	})
	t.Run("logger_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.recovery.go: logger is required", func() {
			NewRecoveryDriver(store, exec, 1, nil, metrics)
		})
	})
	t.Run("metrics_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "service.recovery.go: metrics is required", func() {
			NewRecoveryDriver(store, exec, 1, logger, nil)
		})
	})
}

func TestRecoveryDriver_HandleEvent(t *testing.T) {
	ctx := context.Background()
	key := testKey()

	newConfirmedStore := func() *RedoStore {
		s := NewRedoStore()
		s.MarkRegistered(key, s.RecordRegistration(key, testInstance()))
		s.MarkSubscribed(key, "", s.RecordSubscription(key, ""))
		return s
	}

	t.Run("disconnected_marks_unconfirmed_and_keeps_entries", func(t *testing.T) {
		store := newConfirmedStore()
		exec := &recordingExecutor{}
		d := NewRecoveryDriver(store, exec, 2, log.NewNopLogger(), newTestMetrics())

		d.HandleEvent(ctx, domain.ConnectionConnected)
		d.HandleEvent(ctx, domain.ConnectionDisconnected)
		assert.False(t, d.IsConnected())

		snap := store.Snapshot()
		require.Len(t, snap.Registrations, 1)
		require.Len(t, snap.Subscriptions, 1)
		assert.False(t, snap.Registrations[0].Confirmed)
		assert.False(t, snap.Subscriptions[0].Confirmed)
		regs, subs := exec.counts()
		assert.Zero(t, regs)
		assert.Zero(t, subs)
	})

	t.Run("reconnected_replays_every_entry", func(t *testing.T) {
		store := newConfirmedStore()
		exec := &recordingExecutor{}
		d := NewRecoveryDriver(store, exec, 2, log.NewNopLogger(), newTestMetrics())

		d.HandleEvent(ctx, domain.ConnectionReconnected)
		assert.True(t, d.IsConnected())
		regs, subs := exec.counts()
		assert.Equal(t, 1, regs)
		assert.Equal(t, 1, subs)
		assert.Equal(t, key, exec.registrations[0].Key)
	})

	t.Run("connected_replays_only_unconfirmed", func(t *testing.T) {
		store := newConfirmedStore()
		other := domain.NewServiceKey(domain.DefaultNamespace, domain.DefaultGroup, "svc-b")
		store.RecordRegistration(other, testInstance())
		exec := &recordingExecutor{}
		d := NewRecoveryDriver(store, exec, 2, log.NewNopLogger(), newTestMetrics())

		d.HandleEvent(ctx, domain.ConnectionConnected)
		regs, subs := exec.counts()
		assert.Equal(t, 1, regs)
		assert.Zero(t, subs)
		assert.Equal(t, other, exec.registrations[0].Key)
	})

	t.Run("failures_keep_entries_and_are_counted", func(t *testing.T) {
		store := newConfirmedStore()
		exec := &recordingExecutor{err: errors.New("unavailable")}
		metrics := newTestMetrics()
		d := NewRecoveryDriver(store, exec, 2, log.NewNopLogger(), metrics)

		d.HandleEvent(ctx, domain.ConnectionReconnected)
		regs, subs := store.Len()
		assert.Equal(t, 1, regs)
		assert.Equal(t, 1, subs)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.redoReplays.WithLabelValues(redoKindRegistration, "failed")))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.redoReplays.WithLabelValues(redoKindSubscription, "failed")))
	})

	t.Run("replay_concurrency_is_bounded", func(t *testing.T) {
		store := NewRedoStore()
		for i := 0; i < 10; i++ {
			store.RecordRegistration(domain.NewServiceKey(domain.DefaultNamespace, domain.DefaultGroup, fmt.Sprintf("svc-%d", i)), testInstance())
		}
		exec := &recordingExecutor{delay: 10 * time.Millisecond}
		d := NewRecoveryDriver(store, exec, 2, log.NewNopLogger(), newTestMetrics())

		d.HandleEvent(ctx, domain.ConnectionReconnected)
		regs, _ := exec.counts()
		assert.Equal(t, 10, regs)
		assert.LessOrEqual(t, exec.maxInFlight.Load(), int32(2))
	})
}

func TestRecoveryDriver_EventLoop(t *testing.T) {
	store := NewRedoStore()
	store.RecordRegistration(testKey(), testInstance())
	exec := &recordingExecutor{}
	d := NewRecoveryDriver(store, exec, 1, log.NewNopLogger(), newTestMetrics())
	d.Start(context.Background())

	d.OnConnectionEvent(domain.ConnectionDisconnected)
	d.OnConnectionEvent(domain.ConnectionReconnected)
	assert.Eventually(t, func() bool {
		regs, _ := exec.counts()
		return regs == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, d.IsConnected())

	d.Stop()
	d.Stop()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*eventQueueSize; i++ {
			d.OnConnectionEvent(domain.ConnectionReconnected)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnConnectionEvent blocked after Stop")
	}
}

package service

import (
	"context"
	"sync"
	"sync/atomic"

	"mynaming/domain"
	"mynaming/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

const eventQueueSize = 16

// redoExecutor re-sends one redo entry and updates the store with the outcome.
type redoExecutor interface {
	redoRegistration(ctx context.Context, reg domain.RedoRegistration) error
	redoSubscription(ctx context.Context, sub domain.RedoSubscription) error
}

// RecoveryDriver listens to transport connection events and replays the redo store:
// DISCONNECTED marks every entry unconfirmed; RECONNECTED replays every entry; CONNECTED replays
// only entries not yet confirmed. Replays run on a bounded worker group and never hold the store lock
// across an RPC. A failed replay is logged and counted; the entry stays for the next event.
type RecoveryDriver struct {
	store       *RedoStore
	executor    redoExecutor
	concurrency int
	logger      log.Logger
	metrics     *Metrics

	connected atomic.Bool
	events    chan domain.ConnectionEvent

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
}

// NewRecoveryDriver creates a driver replaying store entries through executor. Panics on nil dependencies or concurrency < 1.
//
// Parameters: store - redo store; executor - sends one entry (NamingProxy); concurrency - max replay RPCs in flight; logger, metrics - observability.
//
// Returns: *RecoveryDriver (not started).
//
// Called from NewNamingProxy.
func NewRecoveryDriver(store *RedoStore, executor redoExecutor, concurrency int, logger log.Logger, metrics *Metrics) *RecoveryDriver {
	if concurrency < 1 {
		panic("service.recovery.go: concurrency must be at least 1")
	}
	return &RecoveryDriver{
		store:       helpers.NilPanic(store, "service.recovery.go: redo store is required"),
		executor:    helpers.NilPanic(executor, "service.recovery.go: executor is required"),
		concurrency: concurrency,
		logger:      log.With(helpers.NilPanic(logger, "service.recovery.go: logger is required"), "component", "recovery"),
		metrics:     helpers.NilPanic(metrics, "service.recovery.go: metrics is required"),
		events:      make(chan domain.ConnectionEvent, eventQueueSize),
		stopped:     make(chan struct{}),
	}
}

// Start runs the event loop until ctx is cancelled or Stop is called. Calling Start twice is a no-op.
func (d *RecoveryDriver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return
	}
	select {
	case <-d.stopped:
		return
	default:
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	go d.loop(ctx, d.done)
}

func (d *RecoveryDriver) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.HandleEvent(ctx, ev)
		}
	}
}

// Stop cancels in-flight replays and waits for the event loop to exit. Idempotent.
func (d *RecoveryDriver) Stop() {
	d.mu.Lock()
	select {
	case <-d.stopped:
	default:
		close(d.stopped)
	}
	cancel, done := d.cancel, d.done
	d.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// OnConnectionEvent queues ev for the event loop. Implements interfaces.ConnectionListener.
// Events are handled in arrival order; after Stop they are dropped.
func (d *RecoveryDriver) OnConnectionEvent(ev domain.ConnectionEvent) {
	select {
	case d.events <- ev:
	case <-d.stopped:
	}
}

// IsConnected reports the last connection state seen by the driver.
func (d *RecoveryDriver) IsConnected() bool {
	return d.connected.Load()
}

// HandleEvent applies one connection event synchronously.
//
// Parameters: ctx - bounds replay RPCs; ev - connection event.
//
// Called from the event loop and from tests.
func (d *RecoveryDriver) HandleEvent(ctx context.Context, ev domain.ConnectionEvent) {
	level.Info(d.logger).Log("msg", "connection event", "event", ev.String())
	switch ev {
	case domain.ConnectionDisconnected:
		d.connected.Store(false)
		d.store.MarkAllUnconfirmed()
	case domain.ConnectionReconnected:
		d.connected.Store(true)
		d.replay(ctx, false)
	case domain.ConnectionConnected:
		d.connected.Store(true)
		d.replay(ctx, true)
	default:
		level.Warn(d.logger).Log("msg", "unknown connection event", "event", int(ev))
	}
}

// replay re-sends the snapshot entries, all of them or only the unconfirmed ones.
func (d *RecoveryDriver) replay(ctx context.Context, onlyUnconfirmed bool) {
	snap := d.store.Snapshot()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	var replayed, failed atomic.Int64
	for _, reg := range snap.Registrations {
		if onlyUnconfirmed && reg.Confirmed {
			continue
		}
		g.Go(func() error {
			err := d.executor.redoRegistration(gctx, reg)
			d.record(redoKindRegistration, reg.Key, err, &replayed, &failed)
			return nil
		})
	}
	for _, sub := range snap.Subscriptions {
		if onlyUnconfirmed && sub.Confirmed {
			continue
		}
		g.Go(func() error {
			err := d.executor.redoSubscription(gctx, sub)
			d.record(redoKindSubscription, sub.Key, err, &replayed, &failed)
			return nil
		})
	}
	_ = g.Wait()

	regs, subs := d.store.Len()
	d.metrics.setRedoEntries(regs, subs)
	level.Info(d.logger).Log("msg", "redo replay finished", "replayed", replayed.Load(), "failed", failed.Load(), "only_unconfirmed", onlyUnconfirmed)
}

func (d *RecoveryDriver) record(kind string, key domain.ServiceKey, err error, replayed, failed *atomic.Int64) {
	d.metrics.observeReplay(kind, err)
	if err != nil {
		failed.Add(1)
		level.Error(d.logger).Log("msg", "redo replay failed", "kind", kind, "service", key.String(), "err", err)
		return
	}
	replayed.Add(1)
}

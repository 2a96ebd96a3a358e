package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tutorcenter/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultQueueSize = 1024
	defaultWorkers   = 2
)

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// AsyncEventBus implements EventBus with a buffered queue drained by a fixed
// worker pool. Publish never blocks: when the queue is full or the bus is not
// running the event is dropped and logged.
type AsyncEventBus struct {
	handlers *subscriptions
	logger   *zap.Logger
	queue    chan envelope
	workers  int
	onDrop   func(ctx context.Context, event shared.DomainEvent)

	running atomic.Bool
	dropped atomic.Int64
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// Option configures an AsyncEventBus
type Option func(*AsyncEventBus)

// WithQueueSize sets the queue capacity
func WithQueueSize(n int) Option {
	return func(b *AsyncEventBus) {
		if n > 0 {
			b.queue = make(chan envelope, n)
		}
	}
}

// WithWorkers sets the number of dispatch goroutines
func WithWorkers(n int) Option {
	return func(b *AsyncEventBus) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithDropHook registers a callback invoked for every dropped event
func WithDropHook(fn func(ctx context.Context, event shared.DomainEvent)) Option {
	return func(b *AsyncEventBus) {
		b.onDrop = fn
	}
}

// NewAsyncEventBus creates a new asynchronous event bus
func NewAsyncEventBus(logger *zap.Logger, opts ...Option) *AsyncEventBus {
	b := &AsyncEventBus{
		handlers: newSubscriptions(),
		logger:   logger,
		queue:    make(chan envelope, defaultQueueSize),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish enqueues events for asynchronous delivery. The context passed to
// handlers keeps the caller's values but not its cancellation.
func (b *AsyncEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	detached := context.WithoutCancel(ctx)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, event := range events {
		if !b.running.Load() {
			b.drop(detached, event, "bus not running")
			continue
		}
		select {
		case b.queue <- envelope{ctx: detached, event: event}:
		default:
			b.drop(detached, event, "queue full")
		}
	}
	return nil
}

func (b *AsyncEventBus) drop(ctx context.Context, event shared.DomainEvent, reason string) {
	b.dropped.Add(1)
	b.logger.Warn("event dropped",
		zap.String("reason", reason),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	if b.onDrop != nil {
		b.onDrop(ctx, event)
	}
}

// Dropped returns the number of events dropped since creation
func (b *AsyncEventBus) Dropped() int64 {
	return b.dropped.Load()
}

// Subscribe registers a handler for specific event types
func (b *AsyncEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.handlers.add(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *AsyncEventBus) Unsubscribe(handler shared.EventHandler) {
	b.handlers.remove(handler)
}

// Start launches the worker pool
func (b *AsyncEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running.Load() {
		return nil
	}
	b.queue = make(chan envelope, cap(b.queue))
	b.running.Store(true)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.work(b.queue)
	}
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("queue_size", cap(b.queue)),
	)
	return nil
}

// Stop stops accepting events and waits for queued ones to be delivered,
// or for ctx to expire
func (b *AsyncEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped", zap.Int64("dropped", b.Dropped()))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *AsyncEventBus) work(queue <-chan envelope) {
	defer b.wg.Done()
	for env := range queue {
		for _, handler := range b.handlers.forType(env.event.EventType()) {
			if err := b.dispatchToHandler(env.ctx, handler, env.event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", env.event.EventType()),
					zap.String("event_id", env.event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
}

// dispatchToHandler safely dispatches an event to a handler
func (b *AsyncEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*AsyncEventBus)(nil)

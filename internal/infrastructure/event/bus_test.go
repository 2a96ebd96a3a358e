package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func newStatusEvent(action string) *shared.StatusChangedEvent {
	return shared.NewStatusChangedEvent("Payment", uuid.New(), uuid.New(), action,
		map[string]any{"status": "pending"}, map[string]any{"status": "completed"})
}

// recordingHandler collects events and signals each delivery
type recordingHandler struct {
	mu      sync.Mutex
	handled []shared.DomainEvent
	ctxs    []context.Context
	err     error
	block   chan struct{}
	done    chan struct{}
}

func newRecordingHandler(buffer int) *recordingHandler {
	return &recordingHandler{done: make(chan struct{}, buffer)}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.ctxs = append(h.ctxs, ctx)
	h.mu.Unlock()
	h.done <- struct{}{}
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return []string{shared.EventTypeStatusChanged}
}

func (h *recordingHandler) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestAsyncEventBus_DeliversEvents(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithWorkers(1))
	handler := newRecordingHandler(4)
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	e1, e2 := newStatusEvent("payment.complete"), newStatusEvent("payment.refund")
	require.NoError(t, bus.Publish(context.Background(), e1, e2))

	handler.wait(t, 2)
	assert.Equal(t, 2, handler.count())
	assert.Zero(t, bus.Dropped())
}

func TestAsyncEventBus_DetachesCancellation(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithWorkers(1))
	handler := newRecordingHandler(1)
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	meta := shared.RequestMeta{RequestID: "req-42"}
	ctx, cancel := context.WithCancel(shared.WithRequestMeta(context.Background(), meta))
	require.NoError(t, bus.Publish(ctx, newStatusEvent("expense.approve")))
	cancel()

	handler.wait(t, 1)
	handler.mu.Lock()
	got := handler.ctxs[0]
	handler.mu.Unlock()
	assert.NoError(t, got.Err())
	assert.Equal(t, "req-42", shared.RequestMetaFrom(got).RequestID)
}

func TestAsyncEventBus_DropsWhenNotRunning(t *testing.T) {
	var hooked atomic.Int32
	bus := NewAsyncEventBus(zap.NewNop(), WithDropHook(func(context.Context, shared.DomainEvent) {
		hooked.Add(1)
	}))

	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("payment.complete")))
	assert.Equal(t, int64(1), bus.Dropped())
	assert.Equal(t, int32(1), hooked.Load())
}

func TestAsyncEventBus_DropsWhenQueueFull(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithQueueSize(1), WithWorkers(1))
	handler := newRecordingHandler(8)
	handler.block = make(chan struct{})
	bus.Subscribe(handler)
	require.NoError(t, bus.Start(context.Background()))

	// the worker takes the first event and blocks, the second fills the queue
	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("a")))
	require.Eventually(t, func() bool { return len(bus.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("b"), newStatusEvent("c")))

	assert.Equal(t, int64(1), bus.Dropped())

	close(handler.block)
	handler.wait(t, 2)
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 2, handler.count())
}

func TestAsyncEventBus_HandlerFailuresDoNotStopDelivery(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithWorkers(1))
	failing := newRecordingHandler(2)
	failing.err = errors.New("database down")
	bus.Subscribe(failing)
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("a"), newStatusEvent("b")))
	failing.wait(t, 2)
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panickingHandler) EventTypes() []string                          { return nil }

func TestAsyncEventBus_RecoversFromPanics(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop(), WithWorkers(1))
	bus.Subscribe(panickingHandler{})
	after := newRecordingHandler(1)
	bus.Subscribe(after)
	require.NoError(t, bus.Start(context.Background()))
	defer bus.Stop(context.Background())

	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("a")))
	after.wait(t, 1)
}

func TestAsyncEventBus_StopIsIdempotent(t *testing.T) {
	bus := NewAsyncEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))

	require.NoError(t, bus.Publish(context.Background(), newStatusEvent("late")))
	assert.Equal(t, int64(1), bus.Dropped())
}

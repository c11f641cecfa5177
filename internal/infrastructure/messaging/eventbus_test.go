package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
)

type recordingHandler struct {
	mu     sync.Mutex
	name   string
	events []shared.Event
	err    error
}

func (h *recordingHandler) HandlerName() string { return h.name }

func (h *recordingHandler) Handle(_ context.Context, event shared.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func newEvent(t shared.EventType) shared.Event {
	return shared.NewBaseEvent(t, "aggregate-1", time.Now())
}

func TestEventBus_PublishToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	defer bus.Close()

	finalized := &recordingHandler{name: "finalized"}
	locked := &recordingHandler{name: "locked"}
	require.NoError(t, bus.Subscribe(shared.EventGradeFinalized, finalized))
	require.NoError(t, bus.Subscribe(shared.EventGradesLocked, locked))

	require.NoError(t, bus.Publish(context.Background(), newEvent(shared.EventGradeFinalized)))

	assert.Equal(t, 1, finalized.count())
	assert.Equal(t, 0, locked.count())
}

func TestEventBus_MultipleHandlersPerType(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	defer bus.Close()

	first := &recordingHandler{name: "first"}
	second := &recordingHandler{name: "second"}
	require.NoError(t, bus.Subscribe(shared.EventPlacementApproved, first))
	require.NoError(t, bus.Subscribe(shared.EventPlacementApproved, second))

	require.NoError(t, bus.Publish(context.Background(), newEvent(shared.EventPlacementApproved)))

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestEventBus_HandlerErrorsAreSwallowed(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	defer bus.Close()

	failing := &recordingHandler{name: "failing", err: errors.New("boom")}
	healthy := &recordingHandler{name: "healthy"}
	require.NoError(t, bus.Subscribe(shared.EventGradeFinalized, failing))
	require.NoError(t, bus.Subscribe(shared.EventGradeFinalized, healthy))

	// The publisher must never see a handler failure.
	err := bus.Publish(context.Background(), newEvent(shared.EventGradeFinalized))
	assert.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
}

func TestEventBus_NoHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	defer bus.Close()

	assert.NoError(t, bus.Publish(context.Background(), newEvent(shared.EventStandingChanged)))
}

func TestEventBus_NilHandler(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventGradeFinalized, nil))
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(Config{AsyncMode: true, WorkerPoolSize: 2})

	h := &recordingHandler{name: "async"}
	require.NoError(t, bus.Subscribe(shared.EventGradeFinalized, h))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(context.Background(), newEvent(shared.EventGradeFinalized)))
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.count() < 5 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 5, h.count())

	require.NoError(t, bus.Close())
}

func TestEventBus_ClosedBusRefusesWork(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), newEvent(shared.EventGradeFinalized)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventGradeFinalized, &recordingHandler{name: "late"}), ErrEventBusClosed)

	// Closing twice is a no-op.
	assert.NoError(t, bus.Close())
}

// Package messaging implements the in-process event bus that carries domain
// events from command handlers to their subscribers.
package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unihub/academic-records-hub/internal/domain/shared"
	"github.com/unihub/academic-records-hub/pkg/logger"
)

// ErrEventBusClosed is returned when publishing or subscribing after Close.
var ErrEventBusClosed = errors.New("messaging: event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus is a simple in-memory implementation of shared.EventBus.
// Suitable for single-instance deployments and testing.
//
// Handler errors are logged and swallowed: a standing recomputation that fails
// must never surface as a failed grade transition.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]shared.EventHandler

	asyncMode  bool
	workerPool chan struct{}
	log        *logger.Logger

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Config contains configuration for InMemoryEventBus.
type Config struct {
	// AsyncMode runs handlers on the worker pool instead of the publisher's
	// goroutine.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent workers for async mode.
	WorkerPoolSize int

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		AsyncMode:      false,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(cfg Config) *InMemoryEventBus {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  cfg.AsyncMode,
		workerPool: make(chan struct{}, cfg.WorkerPoolSize),
		log:        cfg.Logger,
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for an event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.log.Debug("subscribed handler",
		logger.String("event_type", string(eventType)),
		logger.String("handler", handler.HandlerName()))

	return nil
}

// Publish delivers the events to all handlers subscribed to their types.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.Event) error {
	for _, event := range events {
		if event == nil {
			continue
		}
		if err := b.publishOne(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// publishOne fans one event out to its subscribers.
func (b *InMemoryEventBus) publishOne(ctx context.Context, event shared.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("no handlers for event",
			logger.String("event_type", string(event.EventType())))
		return nil
	}

	for _, handler := range handlers {
		if b.asyncMode {
			b.executeAsync(event, handler)
		} else {
			b.execute(ctx, event, handler)
		}
	}

	return nil
}

// execute runs a handler on the publisher's goroutine.
func (b *InMemoryEventBus) execute(ctx context.Context, event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	err := handler.Handle(ctx, event)
	if err != nil {
		b.log.Error("event handler failed",
			logger.String("event_type", string(event.EventType())),
			logger.String("handler", handler.HandlerName()),
			logger.Duration("duration", time.Since(start)),
			logger.Err(err))
	}
}

// executeAsync runs a handler on the worker pool. The context is detached:
// the publisher's request may finish before the handler runs.
func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		b.execute(context.Background(), event, handler)
	}()
}

// Close stops the bus and waits for in-flight async handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

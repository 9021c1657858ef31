// Package eventbus fans detected events out to observers (live feed,
// logging) without blocking the session goroutine.
package eventbus

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/gsilight/internal/event"
)

// Default configuration. One worker keeps delivery in publish order.
const (
	DefaultWorkerCount = 1
	DefaultQueueSize   = 100
)

// Handler is a function that handles events
type Handler func(event.Event)

// work represents a unit of work for the worker pool
type work struct {
	event   event.Event
	handler Handler
}

// Bus provides event routing with a bounded worker pool
type Bus struct {
	mu       sync.RWMutex
	handlers map[event.Kind][]Handler
	all      []Handler

	workQueue chan work
	wg        sync.WaitGroup

	// Closing this channel signals publishers to stop.
	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus with default settings
func New() *Bus {
	return NewWithConfig(DefaultWorkerCount, DefaultQueueSize)
}

// NewWithConfig creates a new event bus with custom worker count and queue size
func NewWithConfig(workerCount, queueSize int) *Bus {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	b := &Bus{
		handlers:  make(map[event.Kind][]Handler),
		workQueue: make(chan work, queueSize),
		closing:   make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}

	log.Debug().Int("workers", workerCount).Int("queue_size", queueSize).Msg("Event bus worker pool started")
	return b
}

// worker processes events from the work queue
func (b *Bus) worker(id int) {
	defer b.wg.Done()

	for w := range b.workQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("event", string(w.event.Kind)).
						Int("worker", id).
						Msg("Event handler panicked")
				}
			}()
			w.handler(w.event)
		}()
	}
}

// Subscribe registers a handler for one event kind
func (b *Bus) Subscribe(kind event.Kind, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[kind] = append(b.handlers[kind], handler)
}

// SubscribeAll registers a handler for every event kind
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)
}

// Publish queues e for every matching handler.
// Non-blocking: if the work queue is full or the bus is closing, the event is dropped.
func (b *Bus) Publish(e event.Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.all)+len(b.handlers[e.Kind]))
	handlers = append(handlers, b.all...)
	handlers = append(handlers, b.handlers[e.Kind]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		select {
		case <-b.closing:
			log.Warn().Str("event", string(e.Kind)).Msg("Event bus closing, dropping event")
			return
		default:
		}

		select {
		case b.workQueue <- work{event: e, handler: handler}:
		default:
			log.Warn().
				Str("event", string(e.Kind)).
				Msg("Event bus queue full, dropping event")
		}
	}
}

// Close shuts down the worker pool gracefully.
// Publish must not be called concurrently with Close.
func (b *Bus) Close(ctx context.Context) {
	b.closeOnce.Do(func() {
		close(b.closing)
		close(b.workQueue)
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug().Msg("Event bus workers stopped gracefully")
	case <-ctx.Done():
		log.Warn().Msg("Event bus shutdown timed out, some events may be lost")
	}
}

// Clear removes all handlers
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = make(map[event.Kind][]Handler)
	b.all = nil
}

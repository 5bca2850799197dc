package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DispatcherConfig sizes the event buffer and selects the overflow policy.
type DispatcherConfig struct {
	BufferSize int
	// DropIfFull discards events when the buffer is saturated instead of
	// blocking the emitting operation. Discards are logged and counted.
	DropIfFull bool
}

// Dispatcher decouples event emission from sink delivery through a buffered
// worker goroutine, so a slow sink never stalls an auth operation. Events
// still buffered at Close time are flushed into the sink before the worker
// stops.
type Dispatcher struct {
	sink       Sink
	logger     zerolog.Logger
	events     chan Event
	quit       chan struct{}
	flushed    chan struct{}
	dropIfFull bool

	dropped   atomic.Uint64
	stopped   atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery worker. A nil sink falls back to
// NoOpSink, so emitting stays safe regardless of wiring.
func NewDispatcher(cfg DispatcherConfig, sink Sink, logger zerolog.Logger) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		logger:     logger,
		events:     make(chan Event, cfg.BufferSize),
		quit:       make(chan struct{}),
		flushed:    make(chan struct{}),
		dropIfFull: cfg.DropIfFull,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.flushed)
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			for n := len(d.events); n > 0; n-- {
				d.sink.Emit(context.Background(), <-d.events)
			}
			return
		}
	}
}

// Emit queues one event for delivery. Under DropIfFull a saturated buffer
// drops the event, logs a warning with the running discard total, and
// returns without blocking; otherwise Emit blocks until the buffer accepts
// the event, the context is done, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopped.Load() {
		return
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		default:
			total := d.dropped.Add(1)
			d.logger.Warn().
				Str("event_type", event.EventType).
				Uint64("dropped_total", total).
				Msg("audit buffer full, event dropped")
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close flushes buffered events into the sink and stops the worker. Emit
// calls after Close are no-ops. Close is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.stopped.Store(true)
		close(d.quit)
		<-d.flushed
	})
}

// Dropped returns the number of events discarded under DropIfFull.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

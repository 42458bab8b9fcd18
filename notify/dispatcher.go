package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
}

// Dispatcher queues messages and sends them off the request path.
// Messages are dropped when the buffer is full; the flows that enqueue
// them must never block on mail delivery.
type Dispatcher struct {
	notifier Notifier
	ch       chan Message
	done     chan struct{}
	wg       sync.WaitGroup
	dropped  atomic.Uint64
	closed   atomic.Bool
	once     sync.Once
}

// NewDispatcher starts the sender goroutine. Returns nil when disabled;
// a nil dispatcher accepts and drops every call.
func NewDispatcher(cfg Config, notifier Notifier) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if notifier == nil {
		notifier = NoOp{}
	}

	d := &Dispatcher{
		notifier: notifier,
		ch:       make(chan Message, cfg.BufferSize),
		done:     make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case msg := <-d.ch:
			_ = d.notifier.Send(context.Background(), msg)
		case <-d.done:
			for {
				select {
				case msg := <-d.ch:
					_ = d.notifier.Send(context.Background(), msg)
				default:
					return
				}
			}
		}
	}
}

// Enqueue queues a message without blocking.
func (d *Dispatcher) Enqueue(msg Message) {
	if d == nil || d.closed.Load() {
		return
	}

	select {
	case d.ch <- msg:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Close drains buffered messages and stops the sender. Idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many messages were discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

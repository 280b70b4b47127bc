package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool bounds concurrent request processing. Rules operations run in
// the fast lane; calls to the suggestion service, which wait on the
// network, run in the slow lane so they cannot starve rules requests.
type WorkerPool struct {
	fast lane
	slow lane
}

type lane struct {
	sem    chan struct{}
	queued int64
	active int64
	total  int64
}

func (l *lane) acquire(ctx context.Context) error {
	atomic.AddInt64(&l.queued, 1)
	defer atomic.AddInt64(&l.queued, -1)

	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *lane) release() {
	atomic.AddInt64(&l.active, -1)
	atomic.AddInt64(&l.total, 1)
	<-l.sem
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers int // Max concurrent rules operations (default: 100)
	MaxSlowWorkers int // Max concurrent suggestion calls (default: 4)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers: 100,
		MaxSlowWorkers: 4,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = def.MaxFastWorkers
	}
	if config.MaxSlowWorkers <= 0 {
		config.MaxSlowWorkers = def.MaxSlowWorkers
	}

	return &WorkerPool{
		fast: lane{sem: make(chan struct{}, config.MaxFastWorkers)},
		slow: lane{sem: make(chan struct{}, config.MaxSlowWorkers)},
	}
}

// AcquireFast acquires a slot for a rules operation.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireFast(ctx context.Context) error { return p.fast.acquire(ctx) }

// ReleaseFast releases a fast operation slot.
func (p *WorkerPool) ReleaseFast() { p.fast.release() }

// AcquireSlow acquires a slot for a suggestion call.
func (p *WorkerPool) AcquireSlow(ctx context.Context) error { return p.slow.acquire(ctx) }

// ReleaseSlow releases a slow operation slot.
func (p *WorkerPool) ReleaseSlow() { p.slow.release() }

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	ActiveFast int64 `json:"active_fast"`
	ActiveSlow int64 `json:"active_slow"`
	QueuedFast int64 `json:"queued_fast"`
	QueuedSlow int64 `json:"queued_slow"`
	TotalFast  int64 `json:"total_fast"`
	TotalSlow  int64 `json:"total_slow"`
	MaxFast    int   `json:"max_fast"`
	MaxSlow    int   `json:"max_slow"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast: atomic.LoadInt64(&p.fast.active),
		ActiveSlow: atomic.LoadInt64(&p.slow.active),
		QueuedFast: atomic.LoadInt64(&p.fast.queued),
		QueuedSlow: atomic.LoadInt64(&p.slow.queued),
		TotalFast:  atomic.LoadInt64(&p.fast.total),
		TotalSlow:  atomic.LoadInt64(&p.slow.total),
		MaxFast:    cap(p.fast.sem),
		MaxSlow:    cap(p.slow.sem),
	}
}

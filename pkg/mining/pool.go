package mining

import (
	"context"
	"fmt"

	"github.com/herohde/tacticore/pkg/clock"
	"github.com/herohde/tacticore/pkg/filter"
	"github.com/herohde/tacticore/pkg/protocol"
	"github.com/seekerror/logw"
)

// revive backoff schedule: 3 attempts at 100, 400, 1600 ms, per the bounded retry
// budget for a worker that keeps failing to come back up.
var reviveBackoffMs = []int{100, 400, 1600}

// WorkerPool owns a fixed number of long-lived UCI engine subprocess workers. At most
// one analyse() runs per worker at a time; the pool hands out Idle workers from a
// channel-based free list so the "at-most-one-in-flight per worker" and "never more
// than engine_instances Searching/Finalizing" contracts hold by construction.
type WorkerPool struct {
	workers []*Worker
	idle    chan *Worker
	clock   clock.Clock
}

// NewWorkerPool spawns n workers against the given engine binary and protocol,
// bringing each through Spawning/Handshaking/Configuring to Idle before returning.
func NewWorkerPool(ctx context.Context, n int, enginePath string, args []string, p protocol.Protocol, clk clock.Clock) (*WorkerPool, error) {
	pool := &WorkerPool{idle: make(chan *Worker, n), clock: clk}

	for i := 0; i < n; i++ {
		w := newWorker(i, enginePath, args, p, clk)
		if err := w.Start(ctx); err != nil {
			pool.Close(ctx)
			return nil, fmt.Errorf("worker %d: %w", i, err)
		}
		pool.workers = append(pool.workers, w)
		pool.idle <- w
	}

	return pool, nil
}

// Size returns the number of workers in the pool (engine_instances).
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// Acquire blocks until an Idle worker is available, or ctx is cancelled.
func (p *WorkerPool) Acquire(ctx context.Context) (*Worker, error) {
	select {
	case w := <-p.idle:
		return w, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a worker to the idle pool (after Analyse completes, successfully or
// not); a worker that failed to revive is not returned and effectively shrinks the
// pool.
func (p *WorkerPool) Release(w *Worker) {
	p.idle <- w
}

// Run acquires a worker, analyses record against filterEngine, and releases the
// worker, reviving it on crash/stall per the bounded retry budget. Returns nil if the
// analysis completed; otherwise returns the analysis error, including a crash/stall
// error after a successful revive (the record's analysis is then incomplete). If the
// worker could not be revived after exhausting the backoff schedule, the revive error
// is returned and the worker is NOT returned to the idle pool (the caller should treat
// the pool as having shrunk by one).
func (p *WorkerPool) Run(ctx context.Context, record *Record, filterEngine filter.Evaluator, maxNodes, maxTimeMs int) error {
	w, err := p.Acquire(ctx)
	if err != nil {
		return err
	}

	err = w.Analyse(ctx, record, filterEngine, maxNodes, maxTimeMs)
	if err == nil {
		p.Release(w)
		return nil
	}

	var me *Error
	if !(errorsAs(err, &me) && (me.Kind == EngineCrashed || me.Kind == EngineStalled)) {
		p.Release(w)
		return err
	}

	logw.Warningf(ctx, "worker %d: %v; reviving", w.id, err)
	if rerr := p.reviveWithBackoff(ctx, w); rerr != nil {
		return rerr
	}

	p.Release(w)
	return err
}

func (p *WorkerPool) reviveWithBackoff(ctx context.Context, w *Worker) error {
	var lastErr error
	for _, ms := range reviveBackoffMs {
		if err := w.Revive(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		p.clock.Sleep(msDuration(ms))
	}
	w.markDead()
	return fmt.Errorf("worker %d: failed to revive after %d attempts: %w", w.id, len(reviveBackoffMs), lastErr)
}

// AllDead reports whether every worker in the pool has failed to revive (none are
// currently idle or capable of accepting work); used by the Dispatcher to decide
// whether to abort fatally.
func (p *WorkerPool) AllDead() bool {
	for _, w := range p.workers {
		if w.State() != Closed {
			return false
		}
	}
	return true
}

// Close stops every worker, draining and killing each child process.
func (p *WorkerPool) Close(ctx context.Context) {
	for _, w := range p.workers {
		w.Close(ctx)
	}
}

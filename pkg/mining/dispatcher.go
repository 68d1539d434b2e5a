package mining

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/tacticore/pkg/clock"
	"github.com/herohde/tacticore/pkg/filter"
	"github.com/seekerror/logw"
)

// Config holds the Dispatcher's wave/cap parameters, sourced from CLI flags outside
// this package's scope.
type Config struct {
	MaxNodes    int
	MaxTimeMs   int
	RandomCount int
	Infinite    bool
	MaxWaves    int
	MaxFrontier int
	MaxTotal    int
	Engine      string // tag recorded on every emitted Record
}

// Filters bundles the four top-level filter trees the mining pipeline keeps.
// Accelerate is a cheap early-stop pre-filter; Quality/Winning/Drawing decide
// acceptance once the search has stopped.
type Filters struct {
	Accelerate *filter.FilterEngine
	Quality    *filter.FilterEngine
	Winning    *filter.FilterEngine
	Drawing    *filter.FilterEngine
}

// earlyStop is the live Evaluator passed to each worker's analyse() call: a search
// stops as soon as Accelerate fires (hopeless position, fast reject) or as soon as
// Quality AND (Winning OR Drawing) is already satisfied (no need to keep searching
// once the puzzle acceptance condition is met).
func (f Filters) earlyStop() filter.Evaluator {
	return filter.Any(
		f.Accelerate,
		filter.All(f.Quality, filter.Any(f.Winning, f.Drawing)),
	)
}

// Dispatcher runs wave-based expansion over the Frontier, feeding the WorkerPool and
// classifying completed searches into the Sink, until a termination condition fires.
type Dispatcher struct {
	seeder  *Seeder
	front   *Frontier
	pool    *WorkerPool
	filters Filters
	sink    *Sink
	clock   clock.Clock
	cfg     Config

	wave     int
	produced int
	started  int
}

// NewDispatcher constructs a Dispatcher over an already-running Seeder, Frontier,
// WorkerPool and Sink.
func NewDispatcher(seeder *Seeder, front *Frontier, pool *WorkerPool, filters Filters, sink *Sink, clk clock.Clock, cfg Config) *Dispatcher {
	return &Dispatcher{seeder: seeder, front: front, pool: pool, filters: filters, sink: sink, clock: clk, cfg: cfg}
}

// Run drives waves until a termination condition fires:
//  1. finite total reached (records_produced >= max_total), unless infinite mode,
//  2. max_waves reached, unless infinite mode,
//  3. source exhausted AND frontier empty AND workers idle,
//  4. external cancellation via ctx.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.front.Close()

	sourceExhausted := false
	for {
		if !d.cfg.Infinite && d.cfg.MaxTotal > 0 && d.produced >= d.cfg.MaxTotal {
			logw.Infof(ctx, "dispatcher: reached max_total=%d", d.cfg.MaxTotal)
			return nil
		}
		if !d.cfg.Infinite && d.cfg.MaxWaves > 0 && d.wave >= d.cfg.MaxWaves {
			logw.Infof(ctx, "dispatcher: reached max_waves=%d", d.cfg.MaxWaves)
			return nil
		}
		if sourceExhausted && d.front.Len() == 0 {
			logw.Infof(ctx, "dispatcher: source exhausted and frontier drained")
			return nil
		}
		select {
		case <-ctx.Done():
			return &Error{Kind: Cancelled, Component: "Dispatcher", Cause: ctx.Err()}
		default:
		}

		d.wave++
		sourceExhausted = d.topUp(ctx) || sourceExhausted

		if err := d.dispatchWave(ctx); err != nil {
			return err
		}

		if d.pool.AllDead() {
			return fmt.Errorf("dispatcher: all %d workers permanently dead", d.pool.Size())
		}
	}
}

// topUp asks the Seeder for up to random_count new positions, pushing them onto the
// frontier. Push blocks until the whole batch fits under the cap (or the frontier is
// closed); the Seeder never silently drops a batch when the frontier is full. Returns
// true if the Seeder reported exhaustion.
func (d *Dispatcher) topUp(ctx context.Context) bool {
	var batch []Seed
	for i := 0; i < d.cfg.RandomCount; i++ {
		s, err := d.seeder.Next()
		if err == ErrSeederExhausted {
			d.front.Push(batch)
			return true
		}
		if err != nil {
			logw.Warningf(ctx, "Seeder: %v", err)
			continue
		}
		batch = append(batch, s)
	}
	d.front.Push(batch)
	return false
}

// dispatchWave hands out frontier items to the WorkerPool, one goroutine per item, up
// to engine_instances running concurrently (enforced by WorkerPool.Acquire blocking
// extra goroutines), and waits for the whole wave to complete before returning — a
// stricter, simpler condition than the spec's minimum of "at least one completion",
// satisfying it trivially.
//
// A per-record failure (a worker crash/stall, even one that exhausts its revive budget)
// only discards that one record: it is logged and the wave continues. Only a Kind.Fatal
// error (a malformed filter DSL, an invalid protocol) aborts the whole dispatcher; the
// "every worker in the pool is dead" case is caught separately by the caller via
// WorkerPool.AllDead after the wave completes.
func (d *Dispatcher) dispatchWave(ctx context.Context) error {
	waveSize := d.pool.Size() * 4
	batch := d.front.DrainInto(waveSize)
	if len(batch) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, seed := range batch {
		d.started++
		seed := seed
		wg.Add(1)
		go func() {
			defer wg.Done()

			record := NewRecord(seed.Position, seed.Parent, d.cfg.Engine, d.clock.Now())
			err := d.pool.Run(ctx, record, d.filters.earlyStop(), d.cfg.MaxNodes, d.cfg.MaxTimeMs)
			if err != nil {
				logw.Errorf(ctx, "worker run failed for %v: %v", seed.Position.FEN(), err)

				var me *Error
				if errorsAs(err, &me) && me.Kind.Fatal() {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
				return
			}

			isPuzzle := d.classify(record)
			if serr := d.sink.Emit(record, isPuzzle); serr != nil {
				logw.Errorf(ctx, "sink emit failed for %v: %v", seed.Position.FEN(), serr)
				return
			}

			mu.Lock()
			d.produced++
			mu.Unlock()

			if isPuzzle {
				d.expand(record)
			}
		}()
	}
	wg.Wait()

	return firstErr
}

// classify decides puzzle vs non-puzzle: quality AND (winning OR drawing).
func (d *Dispatcher) classify(r *Record) bool {
	return d.filters.Quality.Apply(r.Analysis) &&
		(d.filters.Winning.Apply(r.Analysis) || d.filters.Drawing.Apply(r.Analysis))
}

// expand feeds the best move of an accepted record's PV1 back into the frontier as a
// new seed. Push blocks this goroutine until the frontier has room rather than
// dropping the expansion seed, per the no-silent-drops frontier contract.
func (d *Dispatcher) expand(r *Record) {
	if r.BestMove == "" {
		return
	}
	next, ok, err := r.Position.PlayUCI(r.BestMove)
	if err != nil || !ok {
		return
	}
	parent := r.Position
	d.front.Push([]Seed{{Position: next, Parent: &parent}})
}

package mining

import (
	"sync"

	"github.com/herohde/tacticore/pkg/chess"
)

// Seed is one frontier entry: a position plus the parent it was expanded from, if any.
type Seed struct {
	Position chess.Position
	Parent   *chess.Position
}

// Frontier is a bounded FIFO buffer of pending Seeds, safe for many producers and many
// consumers. It is the only shared mutable collection in the pipeline; everything else
// is either immutable (FilterNode, Protocol) or strictly worker-local. Guarded by a
// single mutex plus two condition variables (not-full, not-empty), mirroring the
// classic bounded-buffer pattern rather than buffered channels, so Len() and cap
// enforcement stay exact even under concurrent push/pop.
type Frontier struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	items  []Seed
	cap    int
	closed bool
}

// NewFrontier returns an empty Frontier with the given hard cap.
func NewFrontier(cap int) *Frontier {
	f := &Frontier{cap: cap}
	f.notFull = sync.NewCond(&f.mu)
	f.notEmpty = sync.NewCond(&f.mu)
	return f
}

// Push blocks until there is room for all of batch (never partially admitting a
// batch), or until the Frontier is closed, in which case it returns false.
func (f *Frontier) Push(batch []Seed) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.items)+len(batch) > f.cap && !f.closed {
		f.notFull.Wait()
	}
	if f.closed {
		return false
	}

	f.items = append(f.items, batch...)
	f.notEmpty.Broadcast()
	return true
}

// TryPush pushes batch only if doing so would not exceed the cap; it never blocks.
// Returns false (FrontierCapReached, not an error) if the batch doesn't fit.
func (f *Frontier) TryPush(batch []Seed) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || len(f.items)+len(batch) > f.cap {
		return false
	}
	f.items = append(f.items, batch...)
	f.notEmpty.Broadcast()
	return true
}

// Pop blocks until an item is available or the Frontier is closed and drained.
func (f *Frontier) Pop() (Seed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for len(f.items) == 0 && !f.closed {
		f.notEmpty.Wait()
	}
	if len(f.items) == 0 {
		return Seed{}, false
	}

	s := f.items[0]
	f.items = f.items[1:]
	f.notFull.Broadcast()
	return s, true
}

// DrainInto atomically moves up to waveSize items out of the frontier, in FIFO order.
func (f *Frontier) DrainInto(waveSize int) []Seed {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := waveSize
	if n > len(f.items) {
		n = len(f.items)
	}

	wave := append([]Seed(nil), f.items[:n]...)
	f.items = f.items[n:]
	f.notFull.Broadcast()
	return wave
}

// Len returns the current number of pending items.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Close marks the Frontier closed: blocked Push/Pop calls are released. Pop continues
// to succeed until the buffer drains, after which it returns false.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.notEmpty.Broadcast()
	f.notFull.Broadcast()
}

package mining

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/herohde/tacticore/pkg/clock"
	"github.com/herohde/tacticore/pkg/filter"
	"github.com/herohde/tacticore/pkg/protocol"
	"github.com/herohde/tacticore/pkg/uci"
	"github.com/seekerror/logw"
)

// State is a worker's position in the UCI subprocess lifecycle state machine.
type State int

const (
	Spawning State = iota
	Handshaking
	Configuring
	Idle
	Searching
	Finalizing
	Reviving
	Closed
)

func (s State) String() string {
	switch s {
	case Spawning:
		return "Spawning"
	case Handshaking:
		return "Handshaking"
	case Configuring:
		return "Configuring"
	case Idle:
		return "Idle"
	case Searching:
		return "Searching"
	case Finalizing:
		return "Finalizing"
	case Reviving:
		return "Reviving"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

const handshakeTimeout = 600_000 * time.Millisecond
const pollInterval = 5 * time.Millisecond

// sticky holds the last thread-count/hash-size/MultiPV settings applied to a worker,
// re-applied verbatim on revival after a crash.
type sticky struct {
	threads, hash, multipv int
	chess960                bool
	haveChess960            bool
}

// Worker owns exactly one long-lived UCI engine subprocess: a pair of byte streams
// (stdin; stdout with stderr merged in) and one UciLineParser's worth of state. All of
// a Worker's fields are strictly worker-local: the pool never touches one worker's
// state from the goroutine driving another, and at most one analyse() runs on a given
// worker at a time (the pool's sole concurrency contract).
type Worker struct {
	id       int
	path     string
	args     []string
	protocol protocol.Protocol
	clock    clock.Clock

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines <-chan string

	state  State
	sticky sticky
}

func newWorker(id int, path string, args []string, p protocol.Protocol, clk clock.Clock) *Worker {
	return &Worker{id: id, path: path, args: args, protocol: p, clock: clk, state: Closed}
}

// Start spawns the child process and runs it through Spawning -> Handshaking ->
// Configuring -> Idle.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.spawn(ctx); err != nil {
		return err
	}
	if err := w.handshake(ctx); err != nil {
		return err
	}
	return w.configure(ctx)
}

func (w *Worker) spawn(ctx context.Context) error {
	w.state = Spawning

	cmd := exec.CommandContext(ctx, w.path, w.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &Error{Kind: EngineSpawn, Component: "WorkerPool", Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &Error{Kind: EngineSpawn, Component: "WorkerPool", Cause: err}
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return &Error{Kind: EngineSpawn, Component: "WorkerPool", Cause: err}
	}

	w.cmd = cmd
	w.stdin = stdin
	w.lines = readLines(ctx, stdout)

	logw.Infof(ctx, "worker %d: spawned %v", w.id, w.path)
	return nil
}

// readLines adapts a child process's stdout into a line channel, in the same style as
// the stdin/stdout channel wrappers used for the engine's own UCI front end.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ret := make(chan string, 64)
	go func() {
		defer close(ret)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			ret <- scanner.Text()
		}
	}()
	return ret
}

func (w *Worker) send(ctx context.Context, line string) error {
	logw.Debugf(ctx, ">> %v", line)
	_, err := fmt.Fprintln(w.stdin, line)
	return err
}

// handshake probes the engine with the protocol's showuci token (if declared) and
// waits for the conventional "uciok" terminator, up to the 600s stall ceiling.
func (w *Worker) handshake(ctx context.Context) error {
	w.state = Handshaking

	if w.protocol.Has(protocol.ShowUCI) {
		cmd, _ := w.protocol.Render(protocol.ShowUCI)
		if err := w.send(ctx, cmd); err != nil {
			return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
		}
	}

	deadline := w.clock.After(handshakeTimeout)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: io.ErrClosedPipe}
			}
			if strings.EqualFold(strings.TrimSpace(line), "uciok") {
				return nil
			}
		case <-deadline:
			return &Error{Kind: EngineStalled, Component: "WorkerPool", Cause: fmt.Errorf("no uciok within %v", handshakeTimeout)}
		}
	}
}

// configure issues the protocol's one-shot setup commands, then waits for readyok.
func (w *Worker) configure(ctx context.Context) error {
	w.state = Configuring

	for _, cmd := range w.protocol.Setup() {
		if err := w.send(ctx, cmd); err != nil {
			return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
		}
	}

	if err := w.waitReady(ctx); err != nil {
		return err
	}

	w.state = Idle
	return nil
}

func (w *Worker) waitReady(ctx context.Context) error {
	cmd, _ := w.protocol.Render(protocol.IsReady)
	if err := w.send(ctx, cmd); err != nil {
		return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
	}

	ready, _ := w.protocol.Render(protocol.ReadyOK)
	deadline := w.clock.After(handshakeTimeout)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: io.ErrClosedPipe}
			}
			if strings.EqualFold(strings.TrimSpace(line), ready) {
				return nil
			}
		case <-deadline:
			return &Error{Kind: EngineStalled, Component: "WorkerPool", Cause: fmt.Errorf("no %v within %v", ready, handshakeTimeout)}
		}
	}
}

// setSticky applies and remembers the thread-count/hash-size/MultiPV options, so
// Revive can re-apply them verbatim after a crash.
func (w *Worker) setSticky(ctx context.Context, threads, hashMB, multipv int) error {
	if threads > 0 {
		if cmd, err := w.protocol.Render(protocol.SetThreads, threads); err == nil {
			if err := w.send(ctx, cmd); err != nil {
				return err
			}
			w.sticky.threads = threads
		}
	}
	if hashMB > 0 {
		if cmd, err := w.protocol.Render(protocol.SetHash, hashMB); err == nil {
			if err := w.send(ctx, cmd); err != nil {
				return err
			}
			w.sticky.hash = hashMB
		}
	}
	if multipv > 0 {
		if cmd, err := w.protocol.Render(protocol.SetMultiPV, multipv); err == nil {
			if err := w.send(ctx, cmd); err != nil {
				return err
			}
			w.sticky.multipv = multipv
		}
	}
	return nil
}

func (w *Worker) setChess960(ctx context.Context, on bool) error {
	if w.sticky.haveChess960 && w.sticky.chess960 == on {
		return nil
	}
	if !w.protocol.Has(protocol.SetChess960) {
		return nil
	}
	cmd, _ := w.protocol.Render(protocol.SetChess960, on)
	if err := w.send(ctx, cmd); err != nil {
		return err
	}
	w.sticky.chess960, w.sticky.haveChess960 = on, true
	return nil
}

// Analyse runs analyse(record, filter, max_nodes, max_time_ms): the worker must be
// Idle. It drives the engine through Searching, folding every parsed Output into
// record.Analysis and invoking filterEngine.Apply after each fold; the first true
// result or observed bestmove ends the search via Finalizing, after which the worker
// returns to Idle.
func (w *Worker) Analyse(ctx context.Context, record *Record, filterEngine filter.Evaluator, maxNodes, maxTimeMs int) error {
	if w.state != Idle {
		return fmt.Errorf("worker %d: analyse called while %v, not Idle", w.id, w.state)
	}

	if err := w.waitReady(ctx); err != nil {
		return err
	}

	if err := w.setChess960(ctx, record.Position.Chess960()); err != nil {
		return err
	}

	newgame, _ := w.protocol.Render(protocol.NewGame)
	if err := w.send(ctx, newgame); err != nil {
		return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
	}

	pos, _ := w.protocol.Render(protocol.SetPosition, record.Position.FEN())
	if err := w.send(ctx, pos); err != nil {
		return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
	}

	goCmd, _ := w.protocol.Render(protocol.SearchNodes, maxNodes)
	w.state = Searching
	if err := w.send(ctx, goCmd); err != nil {
		return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
	}

	return w.searchLoop(ctx, record, filterEngine, maxTimeMs)
}

func (w *Worker) searchLoop(ctx context.Context, record *Record, filterEngine filter.Evaluator, maxTimeMs int) error {
	start := w.clock.Now()
	stopped := false

	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: io.ErrClosedPipe}
			}

			parsed := uci.ParseLine(line)
			if parsed.IsBestMove {
				record.BestMove = parsed.BestMove
				w.state = Idle
				return nil
			}
			if parsed.Output.HasContent() {
				record.Analysis.Add(parsed.Output)
				if filterEngine.Apply(record.Analysis) && !stopped {
					stopped = true
					w.state = Finalizing
					stop, _ := w.protocol.Render(protocol.Stop)
					if err := w.send(ctx, stop); err != nil {
						return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
					}
				}
			}

		case <-w.clock.After(pollInterval):
			elapsed := w.clock.Now().Sub(start)
			if !stopped && maxTimeMs > 0 && elapsed.Milliseconds() >= int64(maxTimeMs) {
				stopped = true
				w.state = Finalizing
				stop, _ := w.protocol.Render(protocol.Stop)
				if err := w.send(ctx, stop); err != nil {
					return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
				}
				start = w.clock.Now() // restart the clock to bound the post-stop drain
			} else if stopped && elapsed >= handshakeTimeout {
				return &Error{Kind: EngineStalled, Component: "WorkerPool", Cause: fmt.Errorf("no bestmove after stop")}
			}

		case <-ctx.Done():
			return &Error{Kind: Cancelled, Component: "WorkerPool", Cause: ctx.Err()}
		}
	}
}

// Revive kills the current child (if any), respawns it, and re-applies the one-shot
// setup commands plus the most recent sticky options, before returning the worker to
// Idle. Per the pinned design decision, sticky options are re-applied BEFORE the
// isready/readyok handshake that configure() performs, not after.
func (w *Worker) Revive(ctx context.Context) error {
	w.state = Reviving
	w.kill()

	if err := w.spawn(ctx); err != nil {
		return err
	}
	if err := w.handshake(ctx); err != nil {
		return err
	}

	w.state = Configuring
	for _, cmd := range w.protocol.Setup() {
		if err := w.send(ctx, cmd); err != nil {
			return &Error{Kind: EngineCrashed, Component: "WorkerPool", Cause: err}
		}
	}
	if err := w.setSticky(ctx, w.sticky.threads, w.sticky.hash, w.sticky.multipv); err != nil {
		return err
	}
	if w.sticky.haveChess960 {
		if cmd, err := w.protocol.Render(protocol.SetChess960, w.sticky.chess960); err == nil {
			if err := w.send(ctx, cmd); err != nil {
				return err
			}
		}
	}

	if err := w.waitReady(ctx); err != nil {
		return err
	}

	w.state = Idle
	return nil
}

// markDead transitions the worker to Closed after it has exhausted its revive backoff
// budget; the pool will never hand it out again.
func (w *Worker) markDead() {
	w.kill()
	w.state = Closed
}

func (w *Worker) kill() {
	if w.cmd == nil || w.cmd.Process == nil {
		return
	}
	_ = w.cmd.Process.Kill()
	_ = w.cmd.Wait()
}

// Close stops the worker: sends stop, drains briefly for bestmove, then kills the
// child and transitions to Closed.
func (w *Worker) Close(ctx context.Context) {
	if w.state == Searching || w.state == Finalizing {
		stop, _ := w.protocol.Render(protocol.Stop)
		_ = w.send(ctx, stop)

		deadline := w.clock.After(handshakeTimeout)
	drain:
		for {
			select {
			case line, ok := <-w.lines:
				if !ok {
					break drain
				}
				if uci.ParseLine(line).IsBestMove {
					break drain
				}
			case <-deadline:
				break drain
			}
		}
	}

	w.kill()
	w.state = Closed
}

// State reports the worker's current lifecycle state.
func (w *Worker) State() State {
	return w.state
}

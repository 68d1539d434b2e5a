// tacticminer drives a pool of UCI chess engine subprocesses over a wave-scheduled
// frontier of seed positions, classifying each analyzed position as a tactical puzzle
// or non-puzzle via a programmable filter DSL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/herohde/tacticore/pkg/clock"
	"github.com/herohde/tacticore/pkg/filter"
	"github.com/herohde/tacticore/pkg/mining"
	"github.com/herohde/tacticore/pkg/protocol"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 1, 0)

var (
	engineInstances = flag.Int("engine-instances", 2, "Number of worker processes")
	enginePath      = flag.String("engine", "", "Path to the UCI engine binary (required)")
	maxNodes        = flag.Int("max-nodes", 50_000_000, "Per-position node cap")
	maxDuration     = flag.String("max-duration", "1000000", "Per-position wall-clock cap (ms; also \"60s\", \"2m\")")
	randomCount     = flag.Int("random-count", 100, "Seeds to top up per wave")
	randomInfinite  = flag.Bool("random-infinite", false, "Disable total/waves termination")
	maxWaves        = flag.Int("max-waves", 100, "Max waves")
	maxFrontier     = flag.Int("max-frontier", 5000, "Frontier cap")
	maxTotal        = flag.Int("max-total", 500_000, "Stop after this many records")
	chess960        = flag.Bool("chess960", false, "Treat seeds as Chess960")
	seedFile        = flag.String("seed-file", "", "Optional file-backed seed source")
	randomWalkPlies = flag.Int("random-walk-plies", 40, "Max plies for a random-standard/Chess960 seed walk")
	randomSeed      = flag.Int64("random-seed", 1, "Seed for the random-walk Seeder's RNG")
	dest            = flag.String("out", ".", "Output directory or file stem for the puzzle/non-puzzle streams")
	destIsDir       = flag.Bool("out-is-dir", true, "Treat -out as a directory rather than a file stem")

	puzzleQuality    = flag.String("puzzle-quality", filter.DefaultQuality, "Override quality filter DSL")
	puzzleWinning    = flag.String("puzzle-winning", filter.DefaultWinning, "Override winning filter DSL")
	puzzleDrawing    = flag.String("puzzle-drawing", filter.DefaultDrawing, "Override drawing filter DSL")
	puzzleAccelerate = flag.String("puzzle-accelerate", filter.DefaultAccelerate, "Override accelerate filter DSL")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: tacticminer -engine <path> [options]

tacticminer mines tactical puzzle positions by driving a pool of external UCI chess
engine processes over a wave-scheduled frontier of seed positions, early-stopping each
search and classifying its result via a programmable boolean filter DSL.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "tacticminer %v", version)

	if *enginePath == "" {
		logw.Errorf(ctx, "tacticminer: -engine is required")
		os.Exit(2)
	}

	durationMs, err := parseDurationMs(*maxDuration)
	if err != nil {
		logw.Errorf(ctx, "tacticminer: invalid -max-duration %q: %v", *maxDuration, err)
		os.Exit(2)
	}

	filters, err := compileFilters()
	if err != nil {
		logw.Errorf(ctx, "tacticminer: %v", err)
		os.Exit(2)
	}

	clk := clock.System{}

	seeder := mining.NewRandomSeeder(seedMode(), *randomSeed, *randomWalkPlies)
	if *seedFile != "" {
		f, err := os.Open(*seedFile)
		if err != nil {
			logw.Errorf(ctx, "tacticminer: %v", err)
			os.Exit(2)
		}
		defer f.Close()
		seeder = mining.NewFileSeeder(f)
	}

	front := mining.NewFrontier(*maxFrontier)

	proto := protocol.StandardUCI()
	pool, err := mining.NewWorkerPool(ctx, *engineInstances, *enginePath, nil, proto, clk)
	if err != nil {
		logw.Errorf(ctx, "tacticminer: %v", err)
		os.Exit(3)
	}
	defer pool.Close(ctx)

	sink, err := mining.NewSink(*dest, *destIsDir, time.Now())
	if err != nil {
		logw.Errorf(ctx, "tacticminer: %v", err)
		os.Exit(2)
	}
	defer sink.Close()

	cfg := mining.Config{
		MaxNodes:    *maxNodes,
		MaxTimeMs:   durationMs,
		RandomCount: *randomCount,
		Infinite:    *randomInfinite,
		MaxWaves:    *maxWaves,
		MaxFrontier: *maxFrontier,
		MaxTotal:    *maxTotal,
		Engine:      filepath.Base(*enginePath),
	}

	d := mining.NewDispatcher(seeder, front, pool, filters, sink, clk, cfg)
	runErr := d.Run(ctx)

	puzzles, nonpuzzles := sink.Counts()
	logw.Infof(ctx, "tacticminer: %d puzzles, %d non-puzzles emitted", puzzles, nonpuzzles)

	if runErr != nil {
		var me *mining.Error
		if errors.As(runErr, &me) && me.Kind == mining.Cancelled {
			logw.Infof(ctx, "tacticminer: %v", runErr)
			return
		}
		logw.Errorf(ctx, "tacticminer: %v", runErr)
		os.Exit(3)
	}
}

func seedMode() mining.Mode {
	if *chess960 {
		return mining.RandomChess960
	}
	return mining.RandomStandard
}

func compileFilters() (mining.Filters, error) {
	accelerate, err := filter.Compile(*puzzleAccelerate)
	if err != nil {
		return mining.Filters{}, fmt.Errorf("accelerate filter: %w", err)
	}
	quality, err := filter.Compile(*puzzleQuality)
	if err != nil {
		return mining.Filters{}, fmt.Errorf("quality filter: %w", err)
	}
	winning, err := filter.Compile(*puzzleWinning)
	if err != nil {
		return mining.Filters{}, fmt.Errorf("winning filter: %w", err)
	}
	drawing, err := filter.Compile(*puzzleDrawing)
	if err != nil {
		return mining.Filters{}, fmt.Errorf("drawing filter: %w", err)
	}
	return mining.Filters{Accelerate: accelerate, Quality: quality, Winning: winning, Drawing: drawing}, nil
}

// parseDurationMs accepts a plain integer (milliseconds) or a Go duration string
// ("60s", "2m").
func parseDurationMs(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return int(d.Milliseconds()), nil
}

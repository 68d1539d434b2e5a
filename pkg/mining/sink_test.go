package mining_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/herohde/tacticore/pkg/chess"
	"github.com/herohde/tacticore/pkg/mining"
	"github.com/herohde/tacticore/pkg/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkEmitRoutesToPuzzlesOrNonpuzzles(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	sink, err := mining.NewSink(dir, true, ts)
	require.NoError(t, err)
	defer sink.Close()

	puzzle := mining.NewRecord(chess.Initial(), nil, "stockfish", ts)
	puzzle.Analysis.Add(uci.ParseLine("info depth 20 multipv 1 score cp 500 pv e2e4").Output)
	puzzle.BestMove = "e2e4"
	require.NoError(t, sink.Emit(puzzle, true))

	dud := mining.NewRecord(chess.Initial(), nil, "stockfish", ts)
	require.NoError(t, sink.Emit(dud, false))

	puzzles, nonpuzzles := sink.Counts()
	assert.EqualValues(t, 1, puzzles)
	assert.EqualValues(t, 1, nonpuzzles)

	stamp := "20260102T030405Z"
	assertLineCount(t, filepath.Join(dir, stamp+".puzzles.json"), 1)
	assertLineCount(t, filepath.Join(dir, stamp+".nonpuzzles.json"), 1)
}

func TestSinkEmitWritesEvaluationAndPV(t *testing.T) {
	dir := t.TempDir()
	sink, err := mining.NewSink(filepath.Join(dir, "run"), false, time.Now())
	require.NoError(t, err)
	defer sink.Close()

	r := mining.NewRecord(chess.Initial(), nil, "stockfish", time.Now())
	r.Analysis.Add(uci.ParseLine("info depth 15 multipv 1 score mate 2 pv e2e4 e7e5").Output)
	require.NoError(t, sink.Emit(r, true))

	data, err := os.ReadFile(filepath.Join(dir, "run.puzzles.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	eval := got["eval"].(map[string]any)
	assert.Equal(t, "mate", eval["kind"])
	assert.EqualValues(t, 2, eval["value"])
	assert.Equal(t, []any{"e2e4", "e7e5"}, got["pv"])
}

func TestSinkFileStemDestination(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "out")

	sink, err := mining.NewSink(stem, false, time.Now())
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Emit(mining.NewRecord(chess.Initial(), nil, "e", time.Now()), false))

	_, err = os.Stat(stem + ".nonpuzzles.json")
	assert.NoError(t, err)
}

func assertLineCount(t *testing.T, path string, want int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if sc.Text() != "" {
			n++
		}
	}
	assert.Equal(t, want, n, "line count in %s", path)
}

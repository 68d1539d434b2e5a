package mining_test

import (
	"testing"
	"time"

	"github.com/herohde/tacticore/pkg/chess"
	"github.com/herohde/tacticore/pkg/mining"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	parent := chess.Initial()
	ts := time.Unix(1700000000, 0)

	r := mining.NewRecord(parent, &parent, "stockfish", ts)
	require.NotNil(t, r.Analysis)
	assert.Equal(t, "stockfish", r.Engine)
	assert.Equal(t, ts, r.Timestamp)
	assert.Same(t, &parent, r.Parent)
	assert.Empty(t, r.Tags)
}

func TestRecordAddTagDedupesAndPreservesOrder(t *testing.T) {
	r := mining.NewRecord(chess.Initial(), nil, "stockfish", time.Now())
	r.AddTag("mate")
	r.AddTag("sacrifice")
	r.AddTag("mate")

	assert.Equal(t, []string{"mate", "sacrifice"}, r.Tags)
}

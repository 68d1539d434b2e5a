package mining_test

import (
	"errors"
	"testing"

	"github.com/herohde/tacticore/pkg/mining"
	"github.com/stretchr/testify/assert"
)

func TestKindFatal(t *testing.T) {
	tests := []struct {
		kind     mining.Kind
		expected bool
	}{
		{mining.DslParseError, true},
		{mining.ProtocolInvalid, true},
		{mining.InvalidFen, false},
		{mining.InvalidSeed, false},
		{mining.EngineSpawn, false},
		{mining.EngineStalled, false},
		{mining.EngineCrashed, false},
		{mining.FrontierCapReached, false},
		{mining.Cancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.kind.Fatal(), "%s.Fatal()", tt.kind)
	}
}

func TestErrorMessageIncludesFENWhenPresent(t *testing.T) {
	err := mining.Newf(mining.EngineCrashed, "Worker", "8/8/8/8/8/8/8/8 w - - 0 1", "exit status %d", 1)
	assert.Contains(t, err.Error(), "Worker")
	assert.Contains(t, err.Error(), "EngineCrashed")
	assert.Contains(t, err.Error(), "8/8/8/8/8/8/8/8 w - - 0 1")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestErrorMessageOmitsFENWhenAbsent(t *testing.T) {
	err := mining.Newf(mining.DslParseError, "Filter", "", "unexpected token %q", "bogus")
	assert.NotContains(t, err.Error(), "fen=")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &mining.Error{Kind: mining.EngineCrashed, Component: "Worker", Cause: cause}
	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorAsMatchesByPointerType(t *testing.T) {
	var err error = mining.Newf(mining.ProtocolInvalid, "Protocol", "", "missing field")

	var me *mining.Error
	require := func(ok bool) {
		if !ok {
			t.Fatal("expected errors.As to match *mining.Error")
		}
	}
	require(errors.As(err, &me))
	assert.Equal(t, mining.ProtocolInvalid, me.Kind)
}

package mining

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorsAsMatchesWrappedError(t *testing.T) {
	inner := &Error{Kind: EngineCrashed, Component: "Worker"}
	wrapped := fmt.Errorf("run: %w", inner)

	var target *Error
	assert.True(t, errorsAs(wrapped, &target))
	assert.Equal(t, EngineCrashed, target.Kind)
}

func TestErrorsAsFailsOnUnrelatedError(t *testing.T) {
	var target *Error
	assert.False(t, errorsAs(errors.New("plain"), &target))
}

func TestMsDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, msDuration(1500))
	assert.Equal(t, time.Duration(0), msDuration(0))
}

package mining

import (
	"errors"
	"time"
)

// errorsAs is a thin wrapper so callers in this package don't need to import errors
// directly just for the As pattern.
func errorsAs(err error, target any) bool {
	return errors.As(err, target)
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

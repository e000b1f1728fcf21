package resolve

import "errors"

// ErrTimeout is returned by Result when the deadline elapses before the
// invocation publishes. It is distinct from any error the invocation itself
// produced; those are returned as-is.
var ErrTimeout = errors.New("resolve: result timed out")

// ErrFrozen is returned by Wrapped setters after Freeze.
var ErrFrozen = errors.New("resolve: wrapped value is frozen")

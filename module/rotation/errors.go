package rotation

import (
	"errors"
)

// ErrInvalidComposition is wrapped by every error reporting a committee that
// violates a consensus invariant after rotation. Such errors are always
// returned as irrecoverable exceptions: nodes that accept the committee would
// diverge from honest nodes.
var ErrInvalidComposition = errors.New("invalid committee composition")

// IsInvalidCompositionError returns whether err reports a rejected rotation.
func IsInvalidCompositionError(err error) bool {
	return errors.Is(err, ErrInvalidComposition)
}

package upload

import "errors"

// ErrDestinationUnreachable is returned when the target chat of a
// forwarded upload cannot be resolved.
var ErrDestinationUnreachable = errors.New("upload: destination unreachable")

package journal

import "errors"

// ErrJobNotFound is returned when a job id is unknown.
var ErrJobNotFound = errors.New("journal: job not found")

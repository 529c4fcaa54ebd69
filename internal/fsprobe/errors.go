package fsprobe

import "errors"

// ErrNotFound is returned when a probed path does not exist.
var ErrNotFound = errors.New("fsprobe: not found")

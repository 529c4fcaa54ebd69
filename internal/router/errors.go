// Package router queues upload jobs and runs them on a worker pool, one
// job at a time per destination chat.
package router

import "errors"

// Sentinel errors for router operations.
var (
	// ErrInboxFull indicates the router is holding as many pending jobs
	// as it accepts and the new job was dropped.
	ErrInboxFull = errors.New("router: inbox full, job dropped")

	// ErrRouterStopped indicates the router has been shut down and is
	// no longer accepting jobs.
	ErrRouterStopped = errors.New("router: stopped")
)

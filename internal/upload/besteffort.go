package upload

import "log/slog"

// bestEffort runs a non-critical operation. Failures are logged and
// reported to the caller, never escalated.
func bestEffort(logger *slog.Logger, op string, fn func() error) bool {
	if err := fn(); err != nil {
		logger.Warn("non-critical operation failed", "op", op, "error", err)
		return false
	}
	return true
}

package upload

import "strings"

// Per-file size limits of the Bot API.
const (
	// PublicAPILimit applies to https://api.telegram.org (50 MiB).
	PublicAPILimit uint64 = 52428800
	// LocalAPILimit applies to a self-hosted Bot API server (2 GiB).
	LocalAPILimit uint64 = 2147483648
)

// PublicAPIRoot is the root of the hosted Bot API.
const PublicAPIRoot = "https://api.telegram.org"

// SizeLimit returns the largest file the walker accepts for apiRoot.
// A non-zero override wins.
func SizeLimit(apiRoot string, override uint64) uint64 {
	if override > 0 {
		return override
	}
	root := strings.TrimRight(strings.TrimSpace(apiRoot), "/")
	if root == "" || root == PublicAPIRoot {
		return PublicAPILimit
	}
	return LocalAPILimit
}

package config

import (
	"cmp"
	"slices"
	"strings"
)

// Resolve returns the module IDs from the configuration in load order:
// journal modules first, channel modules last, alphabetical otherwise.
// Start follows this order and Stop reverses it, so storage outlives
// everything that writes to it and no message is accepted before the
// rest of the application is up.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(rank(a), rank(b)), strings.Compare(a, b))
	})
	return ids
}

func rank(id string) int {
	switch {
	case strings.HasPrefix(id, "journal."):
		return 0
	case strings.HasPrefix(id, "channel."):
		return 2
	default:
		return 1
	}
}

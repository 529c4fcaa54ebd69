// Package core provides the module system tgupload is assembled from:
// a global registry filled from init(), an AppContext handed to every
// module, and the App that drives the lifecycle.
package core

// ModuleID is a dotted module identifier, e.g. "channel.telegram".
type ModuleID string

// Module is implemented by every tgupload module.
type Module interface {
	ModuleInfo() ModuleInfo
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID uniquely identifies the module. The first segment is its namespace.
	ID ModuleID

	// New returns a fresh, unconfigured instance.
	New func() Module
}

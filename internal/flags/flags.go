// Package flags provides feature flags read from the flags section of the
// config file. Flags are read-only after initialization.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/hopper/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagWatchRegistry makes a session reload the registry when its backing
	// file changes on disk.
	FlagWatchRegistry = "watch-registry"

	// FlagValidatePatterns compiles regexes at add/edit time so a broken
	// pattern is rejected before it is stored.
	FlagValidatePatterns = "validate-patterns"
)

// Defaults returns the value of every known flag when the config is silent.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagWatchRegistry:    true,
		FlagValidatePatterns: true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over Defaults.
// Unknown names are kept (and logged) so All reports what the user wrote.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	known := slices.Collect(maps.Keys(merged))
	for name, v := range flags {
		if !slices.Contains(known, name) {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		merged[name] = v
	}
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

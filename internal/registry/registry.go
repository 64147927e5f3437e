// Package registry provides the generic type-tag to strategy dispatch used
// for extraction, repair and text-attribute capabilities.
//
// One Registry instance is parameterized by a single capability interface.
// The recursion controller resolves strategies by an element's open type tag
// and never names a concrete implementation, so table cells can route to a
// precise region-based repair while photographic figures route to a
// generative one, purely by configuration.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoStrategy reports a lookup against a registry that has neither a
// type-specific entry nor a default. This is a configuration error and is
// surfaced to the caller of the whole analysis rather than recovered.
var ErrNoStrategy = errors.New("registry: no strategy configured")

// Registry maps open element type tags to strategy values with a single
// default fallback. It is safe for concurrent use.
type Registry[S any] struct {
	mu         sync.RWMutex
	byType     map[string]S
	def        S
	hasDefault bool
}

// New returns an empty registry.
func New[S any]() *Registry[S] {
	return &Registry[S]{byType: make(map[string]S)}
}

// RegisterDefault sets the fallback strategy used when no type-specific
// entry matches.
func (r *Registry[S]) RegisterDefault(strategy S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def = strategy
	r.hasDefault = true
}

// RegisterTypes associates each tag with the strategy. Later registrations
// for the same tag overwrite earlier ones.
func (r *Registry[S]) RegisterTypes(typeTags []string, strategy S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range typeTags {
		r.byType[tag] = strategy
	}
}

// Resolve returns the strategy registered for the tag, or the default if no
// type-specific entry exists. It fails with ErrNoStrategy when neither is
// configured.
func (r *Registry[S]) Resolve(typeTag string) (S, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byType[typeTag]; ok {
		return s, nil
	}
	if r.hasDefault {
		return r.def, nil
	}
	var zero S
	return zero, fmt.Errorf("%w for type %q", ErrNoStrategy, typeTag)
}

// Configured reports whether the registry can resolve at least the empty
// tag, i.e. a default is present. Used for fail-fast construction checks.
func (r *Registry[S]) Configured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasDefault || len(r.byType) > 0
}

// Types returns the tags with type-specific registrations, in no particular
// order.
func (r *Registry[S]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byType))
	for tag := range r.byType {
		tags = append(tags, tag)
	}
	return tags
}

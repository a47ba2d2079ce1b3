// Package registry holds signal-module descriptors and selects the subset
// applicable to a processing track. No execution logic lives here.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"solana-token-qualifier/internal/domain"
)

// Descriptor describes one registered signal module.
type Descriptor struct {
	Name     string         // stable identifier
	Enabled  bool
	Weight   float64        // relative, not normalized to 1
	Priority int            // tie-break ordering, higher first
	Tracks   []domain.Track // applicability; empty means all tracks
	Variant  string         // optional A/B tag
	Module   Module

	// normalized is derived once at registration and used as the map key,
	// so outcome keying cannot collide on cosmetic name differences.
	normalized string
}

// NormalizedName returns the stable key derived at registration.
func (d *Descriptor) NormalizedName() string {
	return d.normalized
}

// AppliesTo reports whether the descriptor matches the given track.
func (d *Descriptor) AppliesTo(track domain.Track) bool {
	if len(d.Tracks) == 0 {
		return true
	}
	for _, t := range d.Tracks {
		if t == track {
			return true
		}
	}
	return false
}

// Normalize derives the stable module key from a display name.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Registry is a thread-safe collection of module descriptors.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Descriptor // keyed by normalized name (+variant)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{modules: make(map[string]*Descriptor)}
}

// Register adds or replaces a module by name.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return fmt.Errorf("descriptor with empty name")
	}
	if d.Weight < 0 {
		return fmt.Errorf("module %s: negative weight", d.Name)
	}
	if d.Module == nil {
		return fmt.Errorf("module %s: nil implementation", d.Name)
	}

	d.normalized = Normalize(d.Name)
	key := d.normalized
	if d.Variant != "" {
		key = key + "#" + strings.ToLower(d.Variant)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[key] = &d
	return nil
}

// Unregister removes a module (and all of its variants) by name.
func (r *Registry) Unregister(name string) {
	norm := Normalize(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, d := range r.modules {
		if d.normalized == norm {
			delete(r.modules, key)
		}
	}
}

// ModulesForTrack returns all enabled modules applicable to the track,
// ordered by descending priority.
func (r *Registry) ModulesForTrack(track domain.Track) []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Descriptor
	for _, d := range r.modules {
		if d.Enabled && d.AppliesTo(track) {
			result = append(result, d)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].normalized < result[j].normalized
	})

	return result
}

// AllModules returns every registered descriptor regardless of track or
// enabled state.
func (r *Registry) AllModules() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Descriptor, 0, len(r.modules))
	for _, d := range r.modules {
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].normalized < result[j].normalized
	})

	return result
}

// SetupABTest installs two weighted variants under one logical signal name.
// Any previously registered module with that name is replaced.
func (r *Registry) SetupABTest(name string, variantA, variantB Descriptor) error {
	r.Unregister(name)

	variantA.Name = name
	variantA.Variant = "A"
	if err := r.Register(variantA); err != nil {
		return fmt.Errorf("register variant A: %w", err)
	}

	variantB.Name = name
	variantB.Variant = "B"
	if err := r.Register(variantB); err != nil {
		r.Unregister(name)
		return fmt.Errorf("register variant B: %w", err)
	}

	return nil
}

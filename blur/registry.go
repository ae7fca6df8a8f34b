package blur

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a new Strategy instance.
// Factories may fail, e.g. when GPU setup throws; Select falls through to
// the next available strategy on factory error.
type Factory func() (Strategy, error)

// RegistryEntry represents a registered blur strategy.
type RegistryEntry struct {
	// Name is the unique identifier for this strategy.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: native filtering (separable gaussian)
	//   - 50: GPU compute paths
	//   - 10: approximation fallbacks
	Priority int

	// Factory creates strategy instances.
	Factory Factory

	// Available reports if the strategy is usable on this system.
	// Called during selection; a nil probe means always available.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered blur strategies.
//
// The registry lets optional strategies (the GPU path) register themselves
// from their own packages without changes to the core library.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// Register adds a strategy to the global registry.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a strategy from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered strategy names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available strategies sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Select instantiates the best available strategy, skipping the given names.
// Strategies whose factory fails are skipped as well, so a GPU strategy that
// throws during setup falls through to the downscale approximation.
func Select(skip ...string) (Strategy, error) {
	return globalRegistry.Select(skip...)
}

// New instantiates a specific named strategy.
func New(name string) (Strategy, error) {
	return globalRegistry.New(name)
}

// Register adds a strategy to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a strategy from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered strategy names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available strategies sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Select instantiates the best available strategy, skipping the given names.
func (r *Registry) Select(skip ...string) (Strategy, error) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	var lastErr error
	for _, name := range available {
		if skipped[name] {
			continue
		}
		s, err := r.New(name)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoStrategyAvailable, lastErr)
	}
	return nil, ErrNoStrategyAvailable
}

// New instantiates a specific named strategy.
func (r *Registry) New(name string) (Strategy, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &StrategyNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &StrategyUnavailableError{Name: name}
	}
	return entry.Factory()
}

// sortedNames returns strategy names sorted by priority (highest first).
// Must be called with the lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// StrategyNotFoundError indicates a named strategy is not registered.
type StrategyNotFoundError struct {
	Name string
}

func (e *StrategyNotFoundError) Error() string {
	return "blur: strategy not found: " + e.Name
}

// StrategyUnavailableError indicates a strategy exists but is not available.
type StrategyUnavailableError struct {
	Name string
}

func (e *StrategyUnavailableError) Error() string {
	return "blur: strategy unavailable: " + e.Name
}

// init registers the built-in CPU strategies.
func init() {
	Register(NameGaussian, 100, func() (Strategy, error) {
		return NewGaussian(), nil
	}, nil)
	Register(NameDownscale, 10, func() (Strategy, error) {
		return NewDownscale(), nil
	}, nil)
}

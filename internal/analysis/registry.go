package analysis

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an analyzer on first use.
type Factory func() (Analyzer, error)

// Registry manages analyzers by name. Analyzers are built lazily, once, so
// that the Japanese dictionary is only loaded when a run asks for it.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	built     map[string]Analyzer
}

// NewRegistry creates a Registry with the built-in analyzers registered:
// "whitespace", "english" and "japanese".
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		built:     make(map[string]Analyzer),
	}
	r.factories["whitespace"] = func() (Analyzer, error) { return NewWhitespaceAnalyzer(), nil }
	r.factories["english"] = func() (Analyzer, error) { return NewEnglishAnalyzer(), nil }
	r.factories["japanese"] = func() (Analyzer, error) { return NewJapaneseAnalyzer() }
	return r
}

// Get returns the analyzer registered under the given name, building it on
// the first call.
func (r *Registry) Get(name string) (Analyzer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.built[name]; ok {
		return a, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer: %q", name)
	}
	a, err := f()
	if err != nil {
		return nil, fmt.Errorf("build analyzer %q: %w", name, err)
	}
	r.built[name] = a
	return a, nil
}

// Register adds a custom analyzer factory to the registry.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("analyzer already registered: %q", name)
	}
	r.factories[name] = f
	return nil
}

// Names returns the names of all registered analyzers, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

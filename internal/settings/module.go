package settings

import (
	"sort"
	"sync"

	"argus-settings/internal/common/config"
	apperrors "argus-settings/internal/common/errors"
)

// ApplyFunc assigns a module's values onto s. It runs after every base of the
// module has been applied, so it may read and replace what they set.
type ApplyFunc func(s *Settings, env *config.Env) error

// Module is a named settings layer.
type Module struct {
	// Path is the dotted module path, e.g. argus.site.settings.dockerdev.
	Path string
	// Base is the path of the module this one layers on. Empty for roots.
	Base  string
	Doc   string
	Apply ApplyFunc
}

// Registry maps module paths to modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds m. Paths must be dotted identifiers and unique; a module's
// base does not need to be registered yet.
func (r *Registry) Register(m Module) error {
	if !IsIdentifier(m.Path) {
		return apperrors.NewModuleInvalidError(m.Path, "path must be a dotted identifier")
	}
	if m.Base != "" && !IsIdentifier(m.Base) {
		return apperrors.NewModuleInvalidError(m.Path, "base must be a dotted identifier")
	}
	if m.Base == m.Path {
		return apperrors.NewModuleInvalidError(m.Path, "module cannot be its own base")
	}
	if m.Apply == nil {
		return apperrors.NewModuleInvalidError(m.Path, "apply function is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[m.Path]; exists {
		return apperrors.NewModuleInvalidError(m.Path, "already registered")
	}
	r.modules[m.Path] = m
	return nil
}

// MustRegister is Register for package-level setup; it panics on error.
func (r *Registry) MustRegister(modules ...Module) *Registry {
	for _, m := range modules {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Lookup(path string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[path]
	return m, ok
}

// Paths returns the registered module paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for p := range r.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Chain returns the modules to apply for path, root first. It fails with
// MODULE_NOT_FOUND when path or any base in its chain is not registered and
// with MODULE_LOAD_FAILED when the chain loops.
func (r *Registry) Chain(path string) ([]Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var chain []Module
	seen := make(map[string]bool)
	requiredBy := ""
	for current := path; current != ""; {
		if seen[current] {
			return nil, apperrors.NewModuleLoadFailedError(path, &cycleError{module: current})
		}
		seen[current] = true

		m, ok := r.modules[current]
		if !ok {
			return nil, apperrors.NewModuleNotFoundError(current, requiredBy)
		}
		chain = append(chain, m)
		requiredBy = current
		current = m.Base
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

type cycleError struct {
	module string
}

func (e *cycleError) Error() string {
	return "base chain loops back to " + e.module
}

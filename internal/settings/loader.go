package settings

import (
	"sync"
	"time"

	"argus-settings/internal/common/config"
	apperrors "argus-settings/internal/common/errors"
	"argus-settings/internal/common/logger"
)

// Recorder receives load outcomes. The metrics package implements it.
type Recorder interface {
	RecordLoad(module, result string, duration time.Duration)
	RecordMediaPlugins(module string, count int)
}

// Loader resolves modules from a Registry. Each module path is evaluated at
// most once per Loader; later loads return a copy of the cached result.
type Loader struct {
	registry     *Registry
	env          *config.Env
	log          logger.Logger
	recorder     Recorder
	overlayFiles []string
	validate     bool

	mu    sync.Mutex
	cache map[string]*Settings
}

type Option func(*Loader)

func WithLogger(log logger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func WithRecorder(r Recorder) Option {
	return func(l *Loader) { l.recorder = r }
}

// WithOverlayFiles applies YAML overlay files, in order, after the module chain.
func WithOverlayFiles(paths ...string) Option {
	return func(l *Loader) { l.overlayFiles = append(l.overlayFiles, paths...) }
}

// WithValidation makes Load fail when the final settings do not validate.
func WithValidation() Option {
	return func(l *Loader) { l.validate = true }
}

func NewLoader(registry *Registry, env *config.Env, opts ...Option) *Loader {
	l := &Loader{
		registry: registry,
		env:      env,
		log:      logger.NewNoOpLogger(),
		cache:    make(map[string]*Settings),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the registry the loader resolves against.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load resolves path. The whole base chain is resolved before any module is
// applied, so a missing base fails the load without running anything.
func (l *Loader) Load(path string) (*Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[path]; ok {
		l.log.Debug("settings served from cache", map[string]interface{}{"module": path})
		return cached.Clone(), nil
	}

	start := time.Now()
	s, err := l.load(path)
	if err != nil {
		l.record(path, "error", start, nil)
		l.log.Error("settings load failed", map[string]interface{}{
			"module": path,
			"error":  err,
		})
		return nil, err
	}

	l.cache[path] = s
	l.record(path, "ok", start, s)
	l.log.Info("settings loaded", map[string]interface{}{
		"module":        path,
		"media_plugins": s.MediaPlugins,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return s.Clone(), nil
}

// Layer is the state of the settings after one module was applied.
type Layer struct {
	Module   string
	Settings *Settings
}

// Layers applies the chain for path and returns a snapshot after each module,
// root first. Overlay files are not applied and nothing is cached.
func (l *Loader) Layers(path string) ([]Layer, error) {
	chain, err := l.registry.Chain(path)
	if err != nil {
		return nil, err
	}

	s := &Settings{}
	layers := make([]Layer, 0, len(chain))
	for _, m := range chain {
		if err := m.Apply(s, l.env); err != nil {
			return nil, apperrors.NewModuleLoadFailedError(m.Path, err)
		}
		snapshot := s.Clone()
		snapshot.Module = m.Path
		layers = append(layers, Layer{Module: m.Path, Settings: snapshot})
	}
	return layers, nil
}

// Reset drops every cached result.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Settings)
}

func (l *Loader) load(path string) (*Settings, error) {
	chain, err := l.registry.Chain(path)
	if err != nil {
		return nil, err
	}

	s := &Settings{}
	for _, m := range chain {
		if err := m.Apply(s, l.env); err != nil {
			return nil, apperrors.NewModuleLoadFailedError(m.Path, err)
		}
		l.log.Debug("settings module applied", map[string]interface{}{"module": m.Path, "target": path})
	}

	for _, file := range l.overlayFiles {
		doc, err := ReadOverlayFile(file)
		if err != nil {
			return nil, err
		}
		if s, err = ApplyOverlay(s, doc); err != nil {
			return nil, apperrors.NewOverlayReadFailedError(file, err)
		}
		l.log.Debug("overlay file applied", map[string]interface{}{"path": file, "target": path})
	}

	s.Module = path

	if l.validate {
		if err := Validate(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (l *Loader) record(path, result string, start time.Time, s *Settings) {
	if l.recorder == nil {
		return
	}
	l.recorder.RecordLoad(path, result, time.Since(start))
	if s != nil {
		l.recorder.RecordMediaPlugins(path, len(s.MediaPlugins))
	}
}

var (
	processOnce   sync.Once
	processLoader *Loader
	processErr    error
)

// Load resolves path with a process-wide loader over Builtin() and the process
// environment. Like an import, each path is evaluated once per process.
func Load(path string) (*Settings, error) {
	processOnce.Do(func() {
		var env *config.Env
		env, processErr = config.NewEnv(config.Options{})
		if processErr == nil {
			processLoader = NewLoader(Builtin(), env)
		}
	})
	if processErr != nil {
		return nil, processErr
	}
	return processLoader.Load(path)
}

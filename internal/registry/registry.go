// Package registry owns the translation networks, one per direction.
//
// A Registry is built once at startup by Open and passed explicitly to the
// code that translates; there is no process-wide model cache.
package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/born-ml/transcoder/internal/generate"
	"github.com/born-ml/transcoder/internal/loader"
	"github.com/born-ml/transcoder/internal/nn"
)

// Direction names a translation direction.
type Direction string

// Supported directions.
const (
	CppToPseudo Direction = "cpp-to-pseudo"
	PseudoToCpp Direction = "pseudo-to-cpp"
)

// Directions returns every supported direction.
func Directions() []Direction {
	return []Direction{CppToPseudo, PseudoToCpp}
}

// Sentinel errors.
var (
	ErrUnknownDirection     = errors.New("unknown translation direction")
	ErrDirectionUnavailable = errors.New("translation direction unavailable")
)

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownDirection, s, CppToPseudo, PseudoToCpp)
}

// Registry maps directions to loaded networks.
//
// Networks are read-only once registered, so Model handles may be shared by
// concurrent requests.
type Registry struct {
	cfg    *nn.Config
	logger *slog.Logger

	mu       sync.RWMutex
	cache    map[string]*nn.Seq2SeqTransformer // by cleaned weights path
	models   map[Direction]generate.Model
	failures map[Direction]error
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for load events. nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry for networks built from cfg.
func New(cfg *nn.Config, opts ...Option) *Registry {
	r := &Registry{
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:    make(map[string]*nn.Seq2SeqTransformer),
		models:   make(map[Direction]generate.Model),
		failures: make(map[Direction]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a registry and loads every direction in paths.
//
// A direction that fails to load is recorded rather than returned: Model
// reports it as ErrDirectionUnavailable while the other direction keeps
// serving. Open itself fails only on an invalid configuration or an unknown
// direction key.
func Open(cfg *nn.Config, paths map[Direction]string, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := New(cfg, opts...)

	dirs := make([]Direction, 0, len(paths))
	for d := range paths {
		if _, err := ParseDirection(string(d)); err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })

	for _, d := range dirs {
		model, err := r.Load(paths[d])
		if err != nil {
			r.logger.Error("direction unavailable", "direction", d, "path", paths[d], "error", err)
			r.mu.Lock()
			r.failures[d] = err
			r.mu.Unlock()
			continue
		}
		r.Register(d, model)
	}
	return r, nil
}

// Load reads a SafeTensors checkpoint and builds a network from it.
//
// Results are cached by cleaned path, so two directions sharing a file share
// one network. A missing file yields an error wrapping fs.ErrNotExist; a
// checkpoint that disagrees with the configuration yields one wrapping
// nn.ErrWeightsMismatch.
func (r *Registry) Load(path string) (*nn.Seq2SeqTransformer, error) {
	key := filepath.Clean(path)

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		r.logger.Debug("model cache hit", "path", key)
		return cached, nil
	}

	start := time.Now()
	state, err := loader.ReadSafeTensors(key, loader.NewPyTorchMapper())
	if err != nil {
		return nil, fmt.Errorf("load weights %s: %w", key, err)
	}

	model, err := nn.NewSeq2SeqTransformer(r.cfg)
	if err != nil {
		return nil, err
	}
	if err := model.LoadStateDict(state, true); err != nil {
		return nil, fmt.Errorf("load weights %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}
	r.cache[key] = model

	r.logger.Info("model loaded",
		"path", key,
		"tensors", len(state),
		"parameters", model.NumParameters(),
		"duration", time.Since(start))
	return model, nil
}

// Register installs model for direction, replacing any previous model or
// recorded failure.
func (r *Registry) Register(direction Direction, model generate.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[direction] = model
	delete(r.failures, direction)
}

// Model returns the network serving direction.
//
// Returns ErrUnknownDirection for an unsupported direction and
// ErrDirectionUnavailable (wrapping the load failure, if any) when the
// direction has no network.
func (r *Registry) Model(direction Direction) (generate.Model, error) {
	if _, err := ParseDirection(string(direction)); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[direction]; ok {
		return m, nil
	}
	if cause, ok := r.failures[direction]; ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectionUnavailable, direction, cause)
	}
	return nil, fmt.Errorf("%w: %s: no weights configured", ErrDirectionUnavailable, direction)
}

// Available returns the directions that currently have a network, sorted.
func (r *Registry) Available() []Direction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dirs := make([]Direction, 0, len(r.models))
	for d := range r.models {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

// Failures returns a copy of the recorded load failures.
func (r *Registry) Failures() map[Direction]error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Direction]error, len(r.failures))
	for d, err := range r.failures {
		out[d] = err
	}
	return out
}

// Config returns the network configuration.
func (r *Registry) Config() *nn.Config { return r.cfg }

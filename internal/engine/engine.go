// Package engine turns normalized chat messages into vendor-correct request
// bodies and vendor responses back into normalized text, driven entirely by
// the model catalog. It never talks to the network itself.
package engine

import (
	"log/slog"

	"modelbridge/internal/catalog"
)

// Engine binds the catalog to the request builder and response decoders.
// One Engine serves all in-flight requests; it holds no per-request state.
type Engine struct {
	registry *catalog.Registry
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine over an already-loaded registry.
func New(registry *catalog.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListModels returns the discovery listing for the /v1/models surface.
func (e *Engine) ListModels() []catalog.Summary {
	return e.registry.List()
}

// Package pipeline wires the preprocessing pipelines: each one reads a
// raw source, aggregates, and publishes a fixed set of snapshot
// artifacts under the processed directory.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Env carries the directory layout shared by every pipeline.
type Env struct {
	DataDir      string
	ProcessedDir string
}

// Pipeline is one batch preprocessing run.
type Pipeline interface {
	// Name is the unique pipeline identifier used on the CLI.
	Name() string

	// Artifacts lists the snapshot file names the pipeline publishes.
	Artifacts() []string

	// Run reads the raw source, aggregates, and writes the artifacts.
	// A run either publishes every artifact or fails leaving the
	// previous ones untouched.
	Run(ctx context.Context, env Env) error
}

// Registry holds the available pipelines in registration order.
type Registry struct {
	pipelines map[string]Pipeline
	order     []string
}

// NewRegistry returns a registry populated with all five pipelines.
func NewRegistry() *Registry {
	r := &Registry{pipelines: make(map[string]Pipeline)}
	r.Register(&Overview{})
	r.Register(&MapUF{})
	r.Register(&Redacao{})
	r.Register(&Schools{})
	r.Register(&IDEB{})
	return r
}

// Register adds a pipeline to the registry.
func (r *Registry) Register(p Pipeline) {
	r.pipelines[p.Name()] = p
	r.order = append(r.order, p.Name())
}

// Get returns a pipeline by name.
func (r *Registry) Get(name string) (Pipeline, error) {
	p, ok := r.pipelines[name]
	if !ok {
		return nil, eris.Errorf("pipeline: unknown pipeline %q", name)
	}
	return p, nil
}

// All returns every pipeline in registration order.
func (r *Registry) All() []Pipeline {
	out := make([]Pipeline, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.pipelines[name])
	}
	return out
}

// AllNames returns the registered pipeline names in registration order.
func (r *Registry) AllNames() []string {
	return append([]string(nil), r.order...)
}

// Run executes one pipeline with a fresh run ID, timing, and the
// processed directory created if absent.
func Run(ctx context.Context, env Env, p Pipeline) error {
	log := zap.L().With(
		zap.String("pipeline", p.Name()),
		zap.String("run_id", uuid.NewString()),
	)

	if err := os.MkdirAll(env.ProcessedDir, 0o755); err != nil {
		return eris.Wrap(err, "pipeline: create processed dir")
	}

	start := time.Now()
	log.Info("starting pipeline")
	if err := p.Run(ctx, env); err != nil {
		return eris.Wrapf(err, "pipeline: %s", p.Name())
	}
	log.Info("pipeline complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Strings("artifacts", p.Artifacts()),
	)
	return nil
}

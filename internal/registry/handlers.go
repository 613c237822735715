package registry

import (
	"context"

	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/model"
)

// Evaluator is the subset of session.Session a ProjectFileLoader needs.
type Evaluator interface {
	Evaluate(ctx context.Context, path string, props model.Properties) (*engine.Result, error)
	Outputs(ctx context.Context, path string, props model.Properties) (*engine.Outputs, error)
}

// ProjectFileLoader turns a project file of one language into a raw engine
// result.
type ProjectFileLoader interface {
	Language() string
	Load(ctx context.Context, ev Evaluator, path string, props model.Properties) (*engine.Result, error)
	Outputs(ctx context.Context, ev Evaluator, path string, props model.Properties) (*engine.Outputs, error)
}

// EngineLoader is the ProjectFileLoader for languages whose project files the
// evaluation engine understands directly.
type EngineLoader struct {
	Lang string
}

// Language implements ProjectFileLoader.
func (l EngineLoader) Language() string { return l.Lang }

// Load implements ProjectFileLoader.
func (l EngineLoader) Load(ctx context.Context, ev Evaluator, path string, props model.Properties) (*engine.Result, error) {
	return ev.Evaluate(ctx, path, props)
}

// Outputs implements ProjectFileLoader.
func (l EngineLoader) Outputs(ctx context.Context, ev Evaluator, path string, props model.Properties) (*engine.Outputs, error) {
	return ev.Outputs(ctx, path, props)
}

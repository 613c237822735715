package engine

import (
	"context"
	"fmt"

	"github.com/vk/projgraph/internal/model"
)

// Engine evaluates project files. Implementations need not be safe for
// concurrent use.
type Engine interface {
	// Evaluate fully evaluates the project file at the absolute path.
	Evaluate(ctx context.Context, path string, props model.Properties) (*Result, error)
	// Outputs evaluates only what is needed to know where the project's
	// build output would be written.
	Outputs(ctx context.Context, path string, props model.Properties) (*Outputs, error)
	// Close releases the engine's resources.
	Close() error
}

// Factory creates an Engine. It is called at most once per loader.
type Factory func(ctx context.Context) (Engine, error)

// Reference is a project-to-project reference as written in a project file.
// Path is unresolved and may be relative to the referencing project's directory.
type Reference struct {
	Path    string
	Aliases []string
}

// Outputs are the build artifacts of a project.
type Outputs struct {
	OutputPath    string
	OutputRefPath string
}

// Result is the raw evaluation result for one project file.
type Result struct {
	Path string
	Name string
	Outputs

	Documents           []string
	AdditionalDocuments []string
	ProjectReferences   []Reference
	MetadataReferences  []string
	CompilationOptions  map[string]string

	// Warnings are non-fatal messages produced during evaluation.
	Warnings []string
}

// EvaluationError is returned by engines when a project file can not be evaluated.
type EvaluationError struct {
	Path string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate project %s: %v", e.Path, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

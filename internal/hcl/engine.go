package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/model"
)

var errClosed = errors.New("hcl engine is closed")

// Engine is the HCL implementation of engine.Engine. Every call reads the
// project file from disk again, so a long-lived engine sees edits made
// between loads. It is not safe for concurrent use.
type Engine struct {
	closed bool
}

// New creates a new HCL evaluation engine.
func New() *Engine {
	return &Engine{}
}

// Factory is an engine.Factory producing HCL engines.
func Factory(ctx context.Context) (engine.Engine, error) {
	ctxlog.FromContext(ctx).Debug("Creating HCL evaluation engine.")
	return New(), nil
}

// Evaluate implements engine.Engine.
func (e *Engine) Evaluate(ctx context.Context, path string, props model.Properties) (*engine.Result, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags, err := e.parse(ctx, path)
	if err != nil {
		return nil, err
	}

	var root projectFile
	decodeDiags := gohcl.DecodeBody(file.Body, newEvalContext(path, props), &root)
	diags = append(diags, decodeDiags...)
	if diags.HasErrors() {
		return nil, &engine.EvaluationError{Path: path, Err: diags}
	}

	result := translateProject(path, &root)
	result.Warnings = append(warningsOf(diags), result.Warnings...)

	logger.Debug("HCL project evaluated.",
		"path", path,
		"documents", len(result.Documents),
		"project_references", len(result.ProjectReferences),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// Outputs implements engine.Engine. Only the `project` block's output
// attributes are evaluated.
func (e *Engine) Outputs(ctx context.Context, path string, props model.Properties) (*engine.Outputs, error) {
	file, diags, err := e.parse(ctx, path)
	if err != nil {
		return nil, err
	}

	content, _, partialDiags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: "project"}},
	})
	diags = append(diags, partialDiags...)
	block, blockDiags := findUniqueBlock(content.Blocks, "project")
	diags = append(diags, blockDiags...)
	if diags.HasErrors() {
		return nil, &engine.EvaluationError{Path: path, Err: diags}
	}
	if block == nil {
		return &engine.Outputs{}, nil
	}

	var out outputsBlock
	if decodeDiags := gohcl.DecodeBody(block.Body, newEvalContext(path, props), &out); decodeDiags.HasErrors() {
		return nil, &engine.EvaluationError{Path: path, Err: decodeDiags}
	}
	return &engine.Outputs{
		OutputPath:    absUnder(path, out.OutputPath),
		OutputRefPath: absUnder(path, out.OutputRefPath),
	}, nil
}

// Close implements engine.Engine.
func (e *Engine) Close() error {
	e.closed = true
	return nil
}

func (e *Engine) parse(ctx context.Context, path string) (*hcl.File, hcl.Diagnostics, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if e.closed {
		return nil, nil, errClosed
	}

	// hclparse.Parser caches by file name; a fresh one per call keeps
	// results in step with the file on disk.
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, nil, &engine.EvaluationError{Path: path, Err: fmt.Errorf("failed to parse HCL file: %w", diags)}
	}
	return file, diags, nil
}

func warningsOf(diags hcl.Diagnostics) []string {
	var out []string
	for _, d := range diags {
		if d.Severity == hcl.DiagWarning {
			out = append(out, d.Error())
		}
	}
	return out
}

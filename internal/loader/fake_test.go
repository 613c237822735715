package loader

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/testutil"
)

// fakeProject describes what fakeEngine returns for one project file.
type fakeProject struct {
	refs     []string
	output   string
	warnings []string
	fail     bool
}

// fakeEngine serves projects from memory, keyed by file base name. The files
// themselves still have to exist on disk for path resolution.
type fakeEngine struct {
	projects map[string]fakeProject

	mu        sync.Mutex
	evaluated []string
	props     map[string]model.Properties
	closes    atomic.Int32
}

func newFakeEngine(projects map[string]fakeProject) *fakeEngine {
	return &fakeEngine{projects: projects, props: make(map[string]model.Properties)}
}

func (e *fakeEngine) factory(context.Context) (engine.Engine, error) {
	return e, nil
}

func (e *fakeEngine) Evaluate(ctx context.Context, path string, props model.Properties) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	e.mu.Lock()
	e.evaluated = append(e.evaluated, base)
	e.props[base] = props
	e.mu.Unlock()

	p, ok := e.projects[base]
	if !ok || p.fail {
		return nil, &engine.EvaluationError{Path: path, Err: errors.New("malformed project")}
	}

	dir := filepath.Dir(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	res := &engine.Result{
		Path:      path,
		Name:      name,
		Documents: []string{filepath.Join(dir, name+".cs")},
		Warnings:  p.warnings,
	}
	if p.output != "" {
		res.OutputPath = filepath.Join(dir, p.output)
	}
	for _, ref := range p.refs {
		res.ProjectReferences = append(res.ProjectReferences, engine.Reference{Path: ref})
	}
	return res, nil
}

func (e *fakeEngine) Outputs(ctx context.Context, path string, props model.Properties) (*engine.Outputs, error) {
	p := e.projects[filepath.Base(path)]
	if p.output == "" {
		return &engine.Outputs{}, nil
	}
	return &engine.Outputs{OutputPath: filepath.Join(filepath.Dir(path), p.output)}, nil
}

func (e *fakeEngine) Close() error {
	e.closes.Add(1)
	return nil
}

func (e *fakeEngine) evaluatedFiles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.evaluated...)
}

func (e *fakeEngine) propsOf(base string) model.Properties {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.props[base]
}

// writeProjects writes an empty file for every project of the fake engine,
// plus any extra files, and returns the root directory.
func writeProjects(t *testing.T, e *fakeEngine, extra map[string]string) string {
	t.Helper()

	files := make(map[string]string, len(e.projects)+len(extra))
	for name := range e.projects {
		files[name] = ""
	}
	for name, content := range extra {
		files[name] = content
	}
	return testutil.WriteFiles(t, files)
}

func newTestLoader(t *testing.T, e *fakeEngine, opts ...Option) *Loader {
	t.Helper()

	l, err := New(append([]Option{WithEngineFactory(e.factory), WithConcurrency(4)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close(context.Background()) })
	return l
}

package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/hcl"
	"github.com/vk/projgraph/internal/identity"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/pathres"
	"github.com/vk/projgraph/internal/progress"
	"github.com/vk/projgraph/internal/registry"
	"github.com/vk/projgraph/internal/session"
	"github.com/vk/projgraph/internal/solution"
)

// ErrClosed is returned by loads started after Close.
var ErrClosed = errors.New("loader is closed")

// Loader loads projects and solutions. Loads may run concurrently; they share
// the loader's evaluation session, so engine calls are serialized.
//
// The extension registry is not synchronized: AssociateExtension must not be
// called while a load is running.
type Loader struct {
	registry  *registry.Registry
	reporter  *diag.Reporter
	resolver  *pathres.Resolver
	factory   engine.Factory
	solutions solution.Reader

	loadMetadata     bool
	skipUnrecognized bool
	concurrency      int

	// ids backs loads that are not given an identity map, so the same
	// project keeps its identity for the loader's lifetime.
	ids         *identity.Map
	solutionIDs *identity.Map

	propsMu sync.Mutex
	props   model.Properties

	sessMu  sync.Mutex
	session *session.Session
	closed  bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithProperties adds global properties every project is evaluated with.
// Later options override earlier ones for the same name.
func WithProperties(props map[string]string) Option {
	return func(l *Loader) { l.props = l.props.Merge(model.NewProperties(props)) }
}

// WithLoadMetadataForReferencedProjects makes LoadProject represent a
// referenced project by its prebuilt output when that output exists.
func WithLoadMetadataForReferencedProjects(enabled bool) Option {
	return func(l *Loader) { l.loadMetadata = enabled }
}

// WithSkipUnrecognizedProjects selects whether projects that cannot be
// resolved or loaded are logged and skipped (true, the default) or abort the
// load.
func WithSkipUnrecognizedProjects(enabled bool) Option {
	return func(l *Loader) { l.skipUnrecognized = enabled }
}

// WithConcurrency bounds the number of projects processed at once.
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.concurrency = n }
}

// WithEngineFactory sets how the evaluation engine is created. The default
// is the HCL engine.
func WithEngineFactory(f engine.Factory) Option {
	return func(l *Loader) { l.factory = f }
}

// WithSolutionReader sets how solution files are read. The default is the
// HCL solution reader.
func WithSolutionReader(r solution.Reader) Option {
	return func(l *Loader) { l.solutions = r }
}

// WithRegistry replaces the default extension registry. The loader keeps its
// own copy, so AssociateExtension never changes r.
func WithRegistry(r *registry.Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r.Clone()
		}
	}
}

// New creates a Loader.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		registry:         registry.NewDefault(),
		reporter:         diag.NewReporter(),
		factory:          hcl.Factory,
		solutions:        solution.NewReader(),
		skipUnrecognized: true,
		concurrency:      runtime.NumCPU(),
		ids:              identity.NewMap(),
		solutionIDs:      identity.NewMap(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", l.concurrency)
	}
	if l.factory == nil {
		return nil, errors.New("engine factory must not be nil")
	}
	if l.solutions == nil {
		return nil, errors.New("solution reader must not be nil")
	}
	if err := l.registry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry: %w", err)
	}
	l.resolver = pathres.New(l.reporter)
	return l, nil
}

// AssociateExtension maps a project file extension to a language. A language
// with no loader yet is served by the evaluation engine directly.
func (l *Loader) AssociateExtension(extension, language string) {
	if !slices.Contains(l.registry.Languages(), language) {
		l.registry.Register(registry.EngineLoader{Lang: language})
	}
	l.registry.Associate(extension, language)
}

// Diagnostics returns every diagnostic recorded so far.
func (l *Loader) Diagnostics() []diag.Diagnostic {
	return l.reporter.Diagnostics()
}

// OnDiagnostic registers a listener for recorded diagnostics.
func (l *Loader) OnDiagnostic(listener diag.Listener) {
	l.reporter.OnDiagnostic(listener)
}

// Properties returns the loader's global properties.
func (l *Loader) Properties() model.Properties {
	l.propsMu.Lock()
	defer l.propsMu.Unlock()
	return l.props
}

// LoadProject loads the project at path and every project reachable from it.
// The first description is the requested project. A nil ids uses the
// loader's own identity map.
func (l *Loader) LoadProject(ctx context.Context, path string, ids *identity.Map, sink progress.Sink) ([]*model.ProjectDescription, error) {
	logger := ctxlog.FromContext(ctx).With("project", path)
	ctx = ctxlog.WithLogger(ctx, logger)
	start := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	sess, err := l.openSession(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = l.ids
	}

	w := &Worker{
		Registry:                            l.registry,
		Evaluator:                           sess,
		Reporter:                            l.reporter,
		IDs:                                 ids,
		Properties:                          l.Properties(),
		BaseDir:                             cwd,
		Requested:                           diag.ThrowForAll,
		Discovered:                          diag.Uniform(l.unrecognizedMode()),
		PreferMetadataForReferencedProjects: l.loadMetadata,
		Progress:                            sink,
		Concurrency:                         l.concurrency,
	}
	projects, err := w.Load(ctx, []Request{{Path: path}})
	if err != nil {
		return nil, err
	}
	logger.Info("Project loaded.", "projects", len(projects), "elapsed", time.Since(start))
	return projects, nil
}

// LoadSolution loads every project declared by the solution file at path,
// plus every project reachable from them.
func (l *Loader) LoadSolution(ctx context.Context, path string, sink progress.Sink) (*model.SolutionSnapshot, error) {
	logger := ctxlog.FromContext(ctx).With("solution", path)
	ctx = ctxlog.WithLogger(ctx, logger)
	start := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	abs, _, err := l.resolver.Resolve(ctx, path, cwd, diag.Throw)
	if err != nil {
		return nil, err
	}

	entries, err := l.solutions.Read(ctx, abs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		d := diag.New(diag.EvaluationFailure, abs, err, "failed to read solution %q: %v", abs, err)
		return nil, l.reporter.Report(ctx, d, diag.Throw)
	}
	logger.Debug("Solution read.", "entries", len(entries))

	sess, err := l.openSession(ctx)
	if err != nil {
		return nil, err
	}

	opts := diag.Uniform(l.unrecognizedMode())
	solutionDir := filepath.Dir(abs)
	w := &Worker{
		Registry:    l.registry,
		Evaluator:   sess,
		Reporter:    l.reporter,
		IDs:         l.ids,
		Properties:  l.solutionProperties(solutionDir),
		BaseDir:     solutionDir,
		Requested:   opts,
		Discovered:  opts,
		Progress:    sink,
		Concurrency: l.concurrency,
	}
	projects, err := w.Load(ctx, requestsFor(entries))
	if err != nil {
		return nil, err
	}

	id, _ := l.solutionIDs.GetOrAdd(identity.Key{Path: abs})
	snapshot := Assemble(id, abs, entries, projects)
	logger.Info("Solution loaded.", "projects", len(snapshot.Projects), "elapsed", time.Since(start))
	return snapshot, nil
}

// Close releases the evaluation session. Loads started afterwards fail with
// ErrClosed.
func (l *Loader) Close(ctx context.Context) error {
	l.sessMu.Lock()
	l.closed = true
	sess := l.session
	l.sessMu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.Close(ctx)
}

func (l *Loader) openSession(ctx context.Context) (*session.Session, error) {
	l.sessMu.Lock()
	defer l.sessMu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if l.session == nil {
		sess, err := session.Open(ctx, l.factory)
		if err != nil {
			return nil, err
		}
		l.session = sess
	}
	return l.session, nil
}

// solutionProperties derives the properties for one solution load. The
// loader's own properties are left untouched.
func (l *Loader) solutionProperties(solutionDir string) model.Properties {
	l.propsMu.Lock()
	defer l.propsMu.Unlock()

	dir := solutionDir
	if dir[len(dir)-1] != filepath.Separator {
		dir += string(filepath.Separator)
	}
	return l.props.With(model.SolutionDirProperty, dir)
}

func (l *Loader) unrecognizedMode() diag.Mode {
	if l.skipUnrecognized {
		return diag.Log
	}
	return diag.Throw
}

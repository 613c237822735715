package loader

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/fsutil"
	"github.com/vk/projgraph/internal/identity"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/pathres"
	"github.com/vk/projgraph/internal/progress"
	"github.com/vk/projgraph/internal/registry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Request is one project path the caller asked for.
type Request struct {
	Path string
	// Configuration, when set, overrides the Configuration property for this
	// project and qualifies its identity.
	Configuration string
}

// Worker walks the project-to-project reference graph starting from a set of
// requested paths and loads every reachable project exactly once.
//
// Requested and discovered projects are reported under separate diag.Options.
// A failure reported under Throw aborts the whole load; a failure reported
// under Log drops the offending project and whatever is only reachable
// through it.
type Worker struct {
	Registry  *registry.Registry
	Evaluator registry.Evaluator
	Reporter  *diag.Reporter
	// IDs assigns identities; a fresh map is used when nil.
	IDs        *identity.Map
	Properties model.Properties
	// BaseDir resolves relative requested paths.
	BaseDir    string
	Requested  diag.Options
	Discovered diag.Options
	// PreferMetadataForReferencedProjects represents a discovered project by
	// its prebuilt output when that output exists. There is no staleness
	// check: an existing artifact always wins over the project source.
	PreferMetadataForReferencedProjects bool
	Progress                            progress.Sink
	// Concurrency bounds the number of projects processed at once.
	// Zero means runtime.NumCPU().
	Concurrency int
}

// item is one entry of the worklist.
type item struct {
	raw       string
	baseDir   string
	requested bool
	props     model.Properties

	// abs and key are set once the path is resolved.
	abs string
	key string
}

// edge is a reference recorded on the referencing node. key is empty when
// the referenced path could not even be canonicalized.
type edge struct {
	key     string
	path    string
	aliases []string
}

// node is a successfully processed project. Nodes refer to each other by
// key only.
type node struct {
	key       string
	path      string
	id        identity.ID
	requested bool
	language  string
	props     model.Properties

	result       *engine.Result
	outputs      *engine.Outputs
	metadataOnly bool
	edges        []edge
}

// walk is the state of one Load call.
type walk struct {
	w        *Worker
	resolver *pathres.Resolver
	ids      *identity.Map
	sink     progress.Sink
	group    *errgroup.Group
	sem      *semaphore.Weighted

	visited sync.Map

	mu    sync.Mutex
	nodes map[string]*node
}

// Load runs the walk. The returned descriptions start with the requested
// projects in request order, followed by discovered projects in
// breadth-first discovery order.
func (w *Worker) Load(ctx context.Context, requests []Request) ([]*model.ProjectDescription, error) {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := w.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	ids := w.IDs
	if ids == nil {
		ids = identity.NewMap()
	}
	wk := &walk{
		w:        w,
		resolver: pathres.New(w.Reporter),
		ids:      ids,
		sink:     progress.OrNop(w.Progress),
		sem:      semaphore.NewWeighted(int64(limit)),
		nodes:    make(map[string]*node),
	}
	logger.Debug("Project graph walk started.", "requested", len(requests), "concurrency", limit)

	// Requested paths are resolved and claimed up front, in order, so the
	// first of two duplicates always wins and a requested project is never
	// claimed under the discovered policy.
	roots, err := wk.claimRequested(ctx, requests)
	if err != nil {
		return nil, err
	}

	group, gctx := errgroup.WithContext(ctx)
	wk.group = group
	for _, it := range roots {
		wk.spawn(gctx, it)
	}
	if err := group.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	projects := wk.describe(roots)
	logger.Debug("Project graph walk finished.", "loaded", len(projects))
	return projects, nil
}

func (wk *walk) claimRequested(ctx context.Context, requests []Request) ([]item, error) {
	logger := ctxlog.FromContext(ctx)
	roots := make([]item, 0, len(requests))
	claimed := make(map[string]model.Properties, len(requests))

	for _, req := range requests {
		start := time.Now()
		abs, ok, err := wk.resolver.Resolve(ctx, req.Path, wk.w.BaseDir, wk.w.Requested.OnPathFailure)
		if err != nil {
			if ctx.Err() == nil {
				wk.advance(req.Path, true, progress.Failed, start)
			}
			return nil, err
		}
		if !ok {
			wk.advance(req.Path, true, progress.Skipped, start)
			continue
		}

		props := wk.w.Properties
		if req.Configuration != "" {
			props = props.With(model.ConfigurationProperty, req.Configuration)
		}

		key := pathres.Key(abs)
		if _, loaded := wk.visited.LoadOrStore(key, struct{}{}); loaded {
			if first, ok := claimed[key]; ok && !first.Equal(props) {
				kept, _ := first.Get(model.ConfigurationProperty)
				logger.Warn("Duplicate requested project collapsed; its configuration is ignored.",
					"path", abs, "configuration", req.Configuration, "kept", kept)
			} else {
				logger.Debug("Duplicate requested project collapsed.", "path", abs, "configuration", req.Configuration)
			}
			wk.advance(abs, true, progress.Skipped, start)
			continue
		}
		claimed[key] = props
		roots = append(roots, item{raw: req.Path, requested: true, props: props, abs: abs, key: key})
	}
	return roots, nil
}

func (wk *walk) spawn(ctx context.Context, it item) {
	wk.group.Go(func() error {
		if err := wk.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer wk.sem.Release(1)
		return wk.process(ctx, it)
	})
}

// process handles one worklist item. A nil error means the item is done,
// whether it loaded or was skipped under Log.
func (wk *walk) process(ctx context.Context, it item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	opts := wk.w.Discovered
	if it.requested {
		opts = wk.w.Requested
	}

	if !it.requested {
		abs, ok, err := wk.resolver.Resolve(ctx, it.raw, it.baseDir, opts.OnPathFailure)
		if err != nil {
			return wk.fail(ctx, it.raw, err, start)
		}
		if !ok {
			wk.advance(it.raw, false, progress.Skipped, start)
			return nil
		}
		it.abs, it.key = abs, pathres.Key(abs)
		if _, loaded := wk.visited.LoadOrStore(it.key, struct{}{}); loaded {
			logger.Debug("Project already visited.", "path", abs)
			wk.advance(abs, false, progress.Skipped, start)
			return nil
		}
	}

	id, created := wk.ids.GetOrAdd(identity.Key{Path: it.abs, Configuration: configurationOf(it.props)})
	n := &node{key: it.key, path: it.abs, id: id, requested: it.requested, props: it.props}
	logger.Debug("Project claimed.", "path", it.abs, "id", id.Value, "new_id", created, "requested", it.requested)

	loader, ok := wk.w.Registry.LoaderFor(it.abs)
	if !ok {
		d := diag.New(diag.UnrecognizedProjectType, it.abs, nil,
			"cannot open project %q because the file extension %q is not associated with a language", it.abs, filepath.Ext(it.abs))
		return wk.report(ctx, it, d, opts.OnLoaderFailure, start)
	}
	n.language = loader.Language()

	if wk.w.PreferMetadataForReferencedProjects && !it.requested {
		out, err := wk.prebuiltOutputs(ctx, loader, it)
		if err != nil {
			return wk.fail(ctx, it.abs, err, start)
		}
		if out != nil {
			n.outputs, n.metadataOnly = out, true
			wk.store(n)
			wk.advance(it.abs, false, progress.MetadataOnly, start)
			return nil
		}
	}

	result, err := loader.Load(ctx, wk.w.Evaluator, it.abs, it.props)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		d := diag.New(diag.EvaluationFailure, it.abs, err, "failed to evaluate project %q: %v", it.abs, err)
		return wk.report(ctx, it, d, opts.OnLoaderFailure, start)
	}
	for _, warning := range result.Warnings {
		// Log mode only records, so Report never returns an error here.
		_ = wk.w.Reporter.Report(ctx, diag.New(diag.EvaluationWarning, it.abs, nil, "%s", warning), diag.Log)
	}
	n.result = result

	projectDir := filepath.Dir(it.abs)
	for _, ref := range result.ProjectReferences {
		e := edge{path: ref.Path, aliases: ref.Aliases}
		if refAbs, _, failed := pathres.Canonicalize(ref.Path, projectDir); !failed {
			e.key, e.path = pathres.Key(refAbs), refAbs
		}
		n.edges = append(n.edges, e)
	}
	wk.store(n)

	for _, ref := range result.ProjectReferences {
		wk.spawn(ctx, item{raw: ref.Path, baseDir: projectDir, props: wk.w.Properties})
	}
	wk.advance(it.abs, it.requested, progress.Loaded, start)
	return nil
}

// prebuiltOutputs returns the project's outputs when its output artifact
// already exists, or nil when the project has to be evaluated in full.
// Only cancellation is returned as an error.
func (wk *walk) prebuiltOutputs(ctx context.Context, loader registry.ProjectFileLoader, it item) (*engine.Outputs, error) {
	logger := ctxlog.FromContext(ctx)

	out, err := loader.Outputs(ctx, wk.w.Evaluator, it.abs, it.props)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Debug("Could not determine project outputs, evaluating in full.", "path", it.abs, "error", err)
		return nil, nil
	}
	if out.OutputPath == "" {
		return nil, nil
	}
	exists, err := fsutil.FileExists(out.OutputPath)
	if err != nil || !exists {
		logger.Debug("Prebuilt output not found, evaluating in full.", "path", it.abs, "output", out.OutputPath)
		return nil, nil
	}
	logger.Debug("Using prebuilt output instead of project source.", "path", it.abs, "output", out.OutputPath)
	return out, nil
}

// report hands d to the reporter and accounts for the item.
func (wk *walk) report(ctx context.Context, it item, d diag.Diagnostic, mode diag.Mode, start time.Time) error {
	if err := wk.w.Reporter.Report(ctx, d, mode); err != nil {
		wk.advance(it.abs, it.requested, progress.Failed, start)
		return err
	}
	wk.advance(it.abs, it.requested, progress.Skipped, start)
	return nil
}

// fail accounts for an item that aborts the load. Cancellation is not
// advanced.
func (wk *walk) fail(ctx context.Context, path string, err error, start time.Time) error {
	if ctx.Err() == nil {
		wk.advance(path, false, progress.Failed, start)
	}
	return err
}

func (wk *walk) advance(path string, requested bool, outcome progress.Outcome, start time.Time) {
	wk.sink.Advance(progress.Event{Path: path, Requested: requested, Outcome: outcome, Elapsed: time.Since(start)})
}

func (wk *walk) store(n *node) {
	wk.mu.Lock()
	defer wk.mu.Unlock()
	wk.nodes[n.key] = n
}

// describe orders the loaded nodes and turns them into immutable
// descriptions with references resolved to identities.
func (wk *walk) describe(roots []item) []*model.ProjectDescription {
	wk.mu.Lock()
	defer wk.mu.Unlock()

	order := make([]*node, 0, len(wk.nodes))
	seen := make(map[string]bool, len(wk.nodes))
	for _, r := range roots {
		if n, ok := wk.nodes[r.key]; ok && !seen[n.key] {
			seen[n.key] = true
			order = append(order, n)
		}
	}
	for i := 0; i < len(order); i++ {
		for _, e := range order[i].edges {
			if n, ok := wk.nodes[e.key]; ok && !seen[n.key] {
				seen[n.key] = true
				order = append(order, n)
			}
		}
	}

	projects := make([]*model.ProjectDescription, 0, len(order))
	for _, n := range order {
		projects = append(projects, n.describe(wk.nodes))
	}
	return projects
}

func (n *node) describe(nodes map[string]*node) *model.ProjectDescription {
	file := filepath.Base(n.path)
	p := &model.ProjectDescription{
		ID:           n.id,
		Name:         file[:len(file)-len(filepath.Ext(file))],
		Language:     n.language,
		FilePath:     n.path,
		Properties:   n.props,
		MetadataOnly: n.metadataOnly,
	}

	if n.metadataOnly {
		p.OutputPath = n.outputs.OutputPath
		p.OutputRefPath = n.outputs.OutputRefPath
		return p
	}

	r := n.result
	if r.Name != "" {
		p.Name = r.Name
	}
	p.OutputPath = r.OutputPath
	p.OutputRefPath = r.OutputRefPath
	p.Documents = append([]string(nil), r.Documents...)
	p.AdditionalDocuments = append([]string(nil), r.AdditionalDocuments...)
	p.MetadataReferences = append([]string(nil), r.MetadataReferences...)
	if len(r.CompilationOptions) > 0 {
		p.CompilationOptions = make(map[string]string, len(r.CompilationOptions))
		for k, v := range r.CompilationOptions {
			p.CompilationOptions[k] = v
		}
	}

	linked := make(map[string]bool, len(n.edges))
	for _, e := range n.edges {
		target, ok := nodes[e.key]
		if !ok {
			p.UnresolvedReferences = append(p.UnresolvedReferences, e.path)
			continue
		}
		if linked[target.key] {
			continue
		}
		linked[target.key] = true
		p.ProjectReferences = append(p.ProjectReferences, model.ProjectReference{
			ID:      target.id,
			Path:    target.path,
			Aliases: append([]string(nil), e.aliases...),
		})
	}
	return p
}

func configurationOf(props model.Properties) string {
	v, _ := props.Get(model.ConfigurationProperty)
	return v
}


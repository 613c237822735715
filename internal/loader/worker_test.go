package loader

import (
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/identity"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/progress"
	"github.com/vk/projgraph/internal/registry"
	"github.com/vk/projgraph/internal/session"
	"github.com/vk/projgraph/internal/solution"
	"github.com/vk/projgraph/internal/testutil"
)

func newWorker(e *fakeEngine, root string) *Worker {
	return &Worker{
		Registry:    registry.NewDefault(),
		Evaluator:   session.New(e),
		Reporter:    diag.NewReporter(),
		BaseDir:     root,
		Requested:   diag.ThrowForAll,
		Discovered:  diag.LogForAll,
		Concurrency: 8,
	}
}

func TestWorker_PolicyIsolation(t *testing.T) {
	e := newFakeEngine(map[string]fakeProject{
		"A.csproj": {refs: []string{"Gone.csproj", "bad\x00path.csproj"}},
	})
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)
	w := newWorker(e, root)

	projects, err := w.Load(ctx, []Request{{Path: "A.csproj"}})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, []diag.Kind{diag.InvalidPath, diag.FileNotFound}, sortedKinds(w.Reporter.Diagnostics()))
	assert.Len(t, projects[0].UnresolvedReferences, 2)
}

func TestWorker_IgnoreModeRecordsNothing(t *testing.T) {
	e := newFakeEngine(map[string]fakeProject{
		"A.csproj": {refs: []string{"Gone.csproj"}},
	})
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)
	w := newWorker(e, root)
	w.Discovered = diag.IgnoreAll

	projects, err := w.Load(ctx, []Request{{Path: "A.csproj"}})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Empty(t, w.Reporter.Diagnostics())
}

func TestWorker_RequestedLogModeSkips(t *testing.T) {
	e := newFakeEngine(map[string]fakeProject{"B.csproj": {}})
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)
	w := newWorker(e, root)
	w.Requested = diag.LogForAll
	rec := &progress.Recorder{}
	w.Progress = rec

	projects, err := w.Load(ctx, []Request{{Path: "A.csproj"}, {Path: "B.csproj"}, {Path: ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, testutil.ProjectNames(projects))
	assert.Equal(t, []diag.Kind{diag.InvalidPath, diag.FileNotFound}, sortedKinds(w.Reporter.Diagnostics()))
	assert.Len(t, rec.Events(), 3)
}

func TestWorker_RequestedThrowModeReportsFailedProgress(t *testing.T) {
	e := newFakeEngine(map[string]fakeProject{"B.csproj": {}})
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)
	w := newWorker(e, root)
	rec := &progress.Recorder{}
	w.Progress = rec

	_, err := w.Load(ctx, []Request{{Path: "B.csproj"}, {Path: "A.csproj"}})
	require.ErrorIs(t, err, diag.ErrFileNotFound)

	events := rec.Events()
	require.Len(t, events, 1, "B is claimed but never processed")
	assert.Equal(t, "A.csproj", events[0].Path)
	assert.True(t, events[0].Requested)
	assert.Equal(t, progress.Failed, events[0].Outcome)
}

func TestWorker_DuplicateRequestConfiguration(t *testing.T) {
	t.Run("same configuration collapses quietly", func(t *testing.T) {
		e := newFakeEngine(map[string]fakeProject{"A.csproj": {}})
		root := writeProjects(t, e, nil)
		ctx, logs := testutil.Context(t)
		w := newWorker(e, root)

		projects, err := w.Load(ctx, []Request{{Path: "A.csproj", Configuration: "Release"}, {Path: "A.csproj", Configuration: "Release"}})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Contains(t, logs.String(), "Duplicate requested project collapsed.")
		assert.NotContains(t, logs.String(), "configuration is ignored")
	})

	t.Run("other configuration is ignored with a warning", func(t *testing.T) {
		e := newFakeEngine(map[string]fakeProject{"A.csproj": {}})
		root := writeProjects(t, e, nil)
		ctx, logs := testutil.Context(t)
		w := newWorker(e, root)

		projects, err := w.Load(ctx, []Request{{Path: "A.csproj", Configuration: "Release"}, {Path: "A.csproj", Configuration: "Debug"}})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Release", projects[0].Configuration())
		assert.Contains(t, logs.String(), "configuration is ignored")
		assert.Contains(t, logs.String(), "kept=Release")
	})
}

func TestWorker_DeterministicOrderUnderConcurrency(t *testing.T) {
	projects := map[string]fakeProject{}
	var rootRefs, want []string
	want = append(want, "Root")
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("P%02d", i)
		rootRefs = append(rootRefs, name+".csproj")
		want = append(want, name)
	}
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("P%02d", i)
		leaf := fmt.Sprintf("L%02d", 19-i)
		projects[name+".csproj"] = fakeProject{refs: []string{leaf + ".csproj", "P00.csproj"}}
		projects[leaf+".csproj"] = fakeProject{}
		want = append(want, leaf)
	}
	projects["Root.csproj"] = fakeProject{refs: rootRefs}

	e := newFakeEngine(projects)
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)

	for run := 0; run < 10; run++ {
		w := newWorker(e, root)
		got, err := w.Load(ctx, []Request{{Path: "Root.csproj"}})
		require.NoError(t, err)
		require.Equal(t, want, testutil.ProjectNames(got), "run %d", run)
	}
}

func TestWorker_ConfigurationQualifiesIdentity(t *testing.T) {
	e := newFakeEngine(map[string]fakeProject{
		"A.csproj": {refs: []string{"B.csproj"}},
		"B.csproj": {},
	})
	root := writeProjects(t, e, nil)
	ctx, _ := testutil.Context(t)

	ids := identity.NewMap()
	w := newWorker(e, root)
	w.IDs = ids
	w.Properties = model.NewProperties(map[string]string{"Configuration": "Debug"})

	projects, err := w.Load(ctx, []Request{{Path: "A.csproj", Configuration: "Release"}})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, "Release", projects[0].Configuration())
	assert.Equal(t, "Debug", projects[1].Configuration(), "discovered projects use the global properties")

	id, created := ids.GetOrAdd(identity.Key{Path: filepath.Join(root, "A.csproj"), Configuration: "Release"})
	assert.False(t, created)
	assert.Equal(t, projects[0].ID, id)
}

func TestAssemble(t *testing.T) {
	root := t.TempDir()
	a := &model.ProjectDescription{Name: "A", FilePath: filepath.Join(root, "src", "A.csproj")}
	b := &model.ProjectDescription{Name: "B", FilePath: filepath.Join(root, "B.csproj")}
	c := &model.ProjectDescription{Name: "C", FilePath: filepath.Join(root, "lib", "C.csproj")}
	entries := []solution.Entry{
		{Kind: solution.Folder, Name: "src"},
		{Kind: solution.Project, Name: "B", Path: "B.csproj"},
		{Kind: solution.Project, Name: "Missing", Path: "Missing.csproj"},
		{Kind: solution.Project, Name: "A", Path: "src/A.csproj"},
	}
	id := identity.New("S")

	snapshot := Assemble(id, filepath.Join(root, "S.slnhcl"), entries, []*model.ProjectDescription{a, c, b})

	assert.Equal(t, id, snapshot.ID)
	assert.Equal(t, []string{"B", "A", "C"}, testutil.ProjectNames(snapshot.Projects))
	got, ok := snapshot.ProjectByPath(c.FilePath)
	require.True(t, ok)
	assert.Same(t, c, got)
}

func sortedKinds(ds []diag.Diagnostic) []diag.Kind {
	out := kinds(ds)
	slices.Sort(out)
	return out
}

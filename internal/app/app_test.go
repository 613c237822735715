package app

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/projgraph/internal/testutil"
	"gopkg.in/yaml.v3"
)

var workspace = map[string]string{
	"S.slnhcl": `
project "App" {
  path          = "App/App.csproj"
  configuration = "Debug"
}
`,
	"App/App.csproj": `
project {
  output_path = "bin/${prop.Configuration}/App.dll"
}
document "Program.cs" {}
project_reference "../Lib/Lib.csproj" {
  aliases = ["lib"]
}
project_reference "../Gone/Gone.csproj" {}
`,
	"App/Program.cs": "",
	"Lib/Lib.csproj": `project {}`,
}

func runApp(t *testing.T, cfg Config) (string, error) {
	t.Helper()

	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	logs := &testutil.SafeBuffer{}
	err = NewApp(out, logs, config).Run(context.Background())
	return out.String(), err
}

func TestRun_SolutionAsJSON(t *testing.T) {
	root := testutil.WriteFiles(t, workspace)

	out, err := runApp(t, Config{Path: root, Output: OutputJSON, SkipUnrecognizedProjects: true})
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, filepath.Join(root, "S.slnhcl"), rep.Solution)
	require.Len(t, rep.Projects, 2)

	app, lib := rep.Projects[0], rep.Projects[1]
	assert.Equal(t, "App", app.Name)
	assert.Equal(t, "Debug", app.Configuration)
	assert.Equal(t, filepath.Join(root, "App", "bin", "Debug", "App.dll"), app.OutputPath)
	require.Len(t, app.References, 1)
	assert.Equal(t, lib.ID, app.References[0].ID)
	assert.Equal(t, []string{filepath.Join(root, "Gone", "Gone.csproj")}, app.Unresolved)

	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, "FileNotFound", rep.Diagnostics[0].Kind)
}

func TestRun_ProjectAsYAML(t *testing.T) {
	root := testutil.WriteFiles(t, workspace)

	out, err := runApp(t, Config{
		Path:                     filepath.Join(root, "Lib", "Lib.csproj"),
		Output:                   OutputYAML,
		SkipUnrecognizedProjects: true,
	})
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Empty(t, rep.Solution)
	require.Len(t, rep.Projects, 1)
	assert.Equal(t, "Lib", rep.Projects[0].Name)
	assert.Equal(t, "C#", rep.Projects[0].Language)
}

func TestRun_Text(t *testing.T) {
	root := testutil.WriteFiles(t, workspace)

	out, err := runApp(t, Config{
		Path:                     filepath.Join(root, "S.slnhcl"),
		SkipUnrecognizedProjects: true,
		Properties:               map[string]string{"Configuration": "Release"},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Solution: "+filepath.Join(root, "S.slnhcl"))
	assert.Contains(t, out, "App (C#) ")
	assert.Contains(t, out, "  -> Lib [lib]\n")
	assert.Contains(t, out, "  !! Gone.csproj\n")
	assert.Contains(t, out, "Diagnostics:\n  FileNotFound ")
}

func TestRun_StrictFailure(t *testing.T) {
	root := testutil.WriteFiles(t, workspace)

	_, err := runApp(t, Config{Path: root, SkipUnrecognizedProjects: false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load solution")
}

func TestRun_CustomExtension(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"Tool/Tool.toolproj": `document "main.go" {}`,
		"Tool/main.go":       "",
	})

	out, err := runApp(t, Config{
		Path:       filepath.Join(root, "Tool", "Tool.toolproj"),
		Extensions: map[string]string{".toolproj": "Go"},
		Output:     OutputJSON,
	})
	require.NoError(t, err)

	var rep report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Projects, 1)
	assert.Equal(t, "Go", rep.Projects[0].Language)
	assert.Equal(t, []string{filepath.Join(root, "Tool", "main.go")}, rep.Projects[0].Documents)
}

func TestResolveTarget(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"one/S.slnhcl":  "",
		"two/A.slnhcl":  "",
		"two/B.SLNHCL":  "",
		"none/A.csproj": "",
	})

	path, kind, err := resolveTarget(filepath.Join(root, "one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "one", "S.slnhcl"), path)
	assert.Equal(t, targetSolution, kind)

	_, _, err = resolveTarget(filepath.Join(root, "two"))
	assert.ErrorContains(t, err, "found 2")

	_, _, err = resolveTarget(filepath.Join(root, "none"))
	assert.ErrorContains(t, err, "no .slnhcl file found")

	path, kind, err = resolveTarget(filepath.Join(root, "none", "A.csproj"))
	require.NoError(t, err)
	assert.Equal(t, targetProject, kind)
	assert.Equal(t, filepath.Join(root, "none", "A.csproj"), path)
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "missing path", cfg: Config{Workers: 1}, wantErr: "Path is a required"},
		{name: "no workers", cfg: Config{Path: "x", Workers: 0}, wantErr: "workers must be at least 1"},
		{name: "bad output", cfg: Config{Path: "x", Workers: 1, Output: "xml"}, wantErr: "invalid output format"},
		{name: "bad extension", cfg: Config{Path: "x", Workers: 1, Extensions: map[string]string{".": "C#"}}, wantErr: "invalid extension association"},
		{name: "valid", cfg: Config{Path: "x", Workers: 1, Output: "YAML"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, OutputYAML, got.Output)
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := newLogger("warn", "json", buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/projgraph/internal/app"
)

func TestParse(t *testing.T) {
	t.Run("full flag set", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse([]string{
			"-p", "Configuration=Release",
			"-p", "Platform=x64",
			"-ext", ".toolproj=Go",
			"-metadata-refs",
			"-skip-unrecognized=false",
			"-workers", "3",
			"-log-level", "DEBUG",
			"-output", "json",
			"repo/App.slnhcl",
		}, out)
		require.NoError(t, err)
		require.False(t, exit)

		assert.Equal(t, &app.Config{
			Path:                              "repo/App.slnhcl",
			Properties:                        map[string]string{"Configuration": "Release", "Platform": "x64"},
			Extensions:                        map[string]string{".toolproj": "Go"},
			LoadMetadataForReferencedProjects: true,
			SkipUnrecognizedProjects:          false,
			Workers:                           3,
			LogFormat:                         "text",
			LogLevel:                          "debug",
			Output:                            "json",
		}, cfg)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, exit, err := Parse([]string{"App.csproj"}, &bytes.Buffer{})
		require.NoError(t, err)
		require.False(t, exit)
		assert.True(t, cfg.SkipUnrecognizedProjects)
		assert.False(t, cfg.LoadMetadataForReferencedProjects)
		assert.Equal(t, "text", cfg.Output)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.GreaterOrEqual(t, cfg.Workers, 1)
	})

	t.Run("help", func(t *testing.T) {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse([]string{"-h"}, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("no path prints usage", func(t *testing.T) {
		out := &bytes.Buffer{}
		_, exit, err := Parse(nil, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Contains(t, out.String(), "projload [options] PATH")
	})

	errorCases := []struct {
		name string
		args []string
		want string
	}{
		{"malformed property", []string{"-p", "novalue", "x"}, "expected name=value"},
		{"bad log format", []string{"-log-format", "xml", "x"}, "invalid log-format"},
		{"bad log level", []string{"-log-level", "trace", "x"}, "invalid log-level"},
		{"bad output", []string{"-output", "xml", "x"}, "invalid output format"},
		{"zero workers", []string{"-workers", "0", "x"}, "workers must be at least 1"},
		{"two paths", []string{"a", "b"}, "expected a single PATH"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

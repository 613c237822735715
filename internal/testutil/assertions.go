package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/projgraph/internal/model"
)

// ProjectNames returns the names of the given projects, in order.
func ProjectNames(projects []*model.ProjectDescription) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}

// RequireProject returns the project whose file has the given base name.
func RequireProject(t *testing.T, projects []*model.ProjectDescription, fileName string) *model.ProjectDescription {
	t.Helper()

	for _, p := range projects {
		if filepath.Base(p.FilePath) == fileName {
			return p
		}
	}
	require.Failf(t, "project not found", "no project loaded from %q among %v", fileName, ProjectNames(projects))
	return nil
}

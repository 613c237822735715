package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/projgraph/internal/fsutil"
	"github.com/vk/projgraph/internal/solution"
)

type targetKind int

const (
	targetProject targetKind = iota
	targetSolution
)

func (k targetKind) String() string {
	if k == targetSolution {
		return "solution"
	}
	return "project"
}

// resolveTarget decides what the user asked to load. A directory must hold
// exactly one solution file, searched recursively.
func resolveTarget(path string) (string, targetKind, error) {
	if fsutil.IsDir(path) {
		files, err := fsutil.FindFilesByExtension(path, solution.Extension)
		if err != nil {
			return "", targetProject, fmt.Errorf("failed to search %s for solutions: %w", path, err)
		}
		switch len(files) {
		case 0:
			return "", targetProject, fmt.Errorf("no %s file found in %s", solution.Extension, path)
		case 1:
			return files[0], targetSolution, nil
		default:
			return "", targetProject, fmt.Errorf("found %d %s files in %s, specify one of them", len(files), solution.Extension, path)
		}
	}

	if strings.EqualFold(filepath.Ext(path), solution.Extension) {
		return path, targetSolution, nil
	}
	return path, targetProject, nil
}

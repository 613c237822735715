package loader

import (
	"path/filepath"

	"github.com/vk/projgraph/internal/identity"
	"github.com/vk/projgraph/internal/model"
	"github.com/vk/projgraph/internal/pathres"
	"github.com/vk/projgraph/internal/solution"
)

// Assemble combines the worker's descriptions into a solution snapshot.
// Projects declared by entries come first, in declaration order, followed by
// the remaining projects in the order given. Entries that failed to load are
// simply absent.
func Assemble(id identity.ID, solutionPath string, entries []solution.Entry, projects []*model.ProjectDescription) *model.SolutionSnapshot {
	byKey := make(map[string]*model.ProjectDescription, len(projects))
	for _, p := range projects {
		byKey[pathres.Key(p.FilePath)] = p
	}

	solutionDir := filepath.Dir(solutionPath)
	ordered := make([]*model.ProjectDescription, 0, len(projects))
	placed := make(map[*model.ProjectDescription]bool, len(projects))
	for _, e := range solution.Projects(entries) {
		abs, _, failed := pathres.Canonicalize(e.Path, solutionDir)
		if failed {
			continue
		}
		if p, ok := byKey[pathres.Key(abs)]; ok && !placed[p] {
			placed[p] = true
			ordered = append(ordered, p)
		}
	}
	for _, p := range projects {
		if !placed[p] {
			placed[p] = true
			ordered = append(ordered, p)
		}
	}

	return &model.SolutionSnapshot{ID: id, FilePath: solutionPath, Projects: ordered}
}

// requestsFor turns the project entries of a solution into worker requests.
func requestsFor(entries []solution.Entry) []Request {
	projects := solution.Projects(entries)
	requests := make([]Request, 0, len(projects))
	for _, e := range projects {
		requests = append(requests, Request{Path: e.Path, Configuration: e.Configuration})
	}
	return requests
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines SolutionSnapshot, the immutable aggregate returned when a
// whole solution is loaded.
package model

import (
	"github.com/vk/projgraph/internal/identity"
)

// SolutionSnapshot is a loaded solution. Projects holds the solution's
// declared projects in declaration order, followed by projects that were only
// discovered through references.
type SolutionSnapshot struct {
	ID       identity.ID
	FilePath string
	Projects []*ProjectDescription
}

// Project returns the project with the given identity.
func (s *SolutionSnapshot) Project(id identity.ID) (*ProjectDescription, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// ProjectByPath returns the project loaded from the given absolute path.
func (s *SolutionSnapshot) ProjectByPath(path string) (*ProjectDescription, bool) {
	for _, p := range s.Projects {
		if p.FilePath == path {
			return p, true
		}
	}
	return nil, false
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines ProjectDescription, the evaluation result for a single
// project file, and ProjectReference, the edge between two loaded projects.
//
// Why references by identity?
//
// Project files can reference each other in cycles when the input is
// malformed. Storing the target's identity instead of a pointer to its
// description keeps the model a flat, indexable list. Consumers that need the
// target description look it up by identity.
package model

import (
	"github.com/vk/projgraph/internal/identity"
)

// ProjectReference is an edge from a loaded project to another loaded project.
type ProjectReference struct {
	ID      identity.ID
	Path    string
	Aliases []string
}

// ProjectDescription is the evaluation result for one project file.
type ProjectDescription struct {
	ID       identity.ID
	Name     string
	Language string
	FilePath string

	// Documents are absolute paths of the compiled source documents.
	Documents []string
	// AdditionalDocuments are absolute paths of non-compiled inputs.
	AdditionalDocuments []string

	ProjectReferences []ProjectReference
	// UnresolvedReferences lists absolute paths of referenced projects that
	// could not be loaded. Each one was reported as a diagnostic.
	UnresolvedReferences []string
	// MetadataReferences are the external binaries the project file names.
	MetadataReferences []string

	CompilationOptions map[string]string
	OutputPath         string
	OutputRefPath      string
	Properties         Properties

	// MetadataOnly is set when the project was represented by its prebuilt
	// output instead of a full evaluation. Such a project has no documents
	// and its own references were not followed.
	MetadataOnly bool
}

// Configuration returns the build configuration the project was evaluated
// with, or an empty string.
func (p *ProjectDescription) Configuration() string {
	v, _ := p.Properties.Get(ConfigurationProperty)
	return v
}

// ReferencedIDs returns the identities of all project references.
func (p *ProjectDescription) ReferencedIDs() []identity.ID {
	ids := make([]identity.ID, 0, len(p.ProjectReferences))
	for _, ref := range p.ProjectReferences {
		ids = append(ids, ref.ID)
	}
	return ids
}

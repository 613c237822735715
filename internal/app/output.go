package app

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/model"
	"gopkg.in/yaml.v3"
)

type report struct {
	Solution    string             `json:"solution,omitempty" yaml:"solution,omitempty"`
	Projects    []projectReport    `json:"projects" yaml:"projects"`
	Diagnostics []diagnosticReport `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type projectReport struct {
	ID            uint64            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	Language      string            `json:"language" yaml:"language"`
	Path          string            `json:"path" yaml:"path"`
	Configuration string            `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	OutputPath    string            `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	MetadataOnly  bool              `json:"metadata_only,omitempty" yaml:"metadata_only,omitempty"`
	Documents     []string          `json:"documents,omitempty" yaml:"documents,omitempty"`
	References    []referenceReport `json:"references,omitempty" yaml:"references,omitempty"`
	Unresolved    []string          `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

type referenceReport struct {
	ID      uint64   `json:"id" yaml:"id"`
	Path    string   `json:"path" yaml:"path"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

type diagnosticReport struct {
	Kind    string `json:"kind" yaml:"kind"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

func newReport(solutionPath string, projects []*model.ProjectDescription, diagnostics []diag.Diagnostic) *report {
	rep := &report{Solution: solutionPath, Projects: make([]projectReport, 0, len(projects))}
	for _, p := range projects {
		pr := projectReport{
			ID:            p.ID.Value,
			Name:          p.Name,
			Language:      p.Language,
			Path:          p.FilePath,
			Configuration: p.Configuration(),
			OutputPath:    p.OutputPath,
			MetadataOnly:  p.MetadataOnly,
			Documents:     p.Documents,
			Unresolved:    p.UnresolvedReferences,
		}
		for _, ref := range p.ProjectReferences {
			pr.References = append(pr.References, referenceReport{ID: ref.ID.Value, Path: ref.Path, Aliases: ref.Aliases})
		}
		rep.Projects = append(rep.Projects, pr)
	}
	for _, d := range diagnostics {
		rep.Diagnostics = append(rep.Diagnostics, diagnosticReport{Kind: d.Kind.String(), Path: d.Path, Message: d.Message})
	}
	return rep
}

// render writes rep to w in the given format.
func render(w io.Writer, format string, rep *report) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return renderText(w, rep)
	}
}

func renderText(w io.Writer, rep *report) error {
	names := make(map[uint64]string, len(rep.Projects))
	for _, p := range rep.Projects {
		names[p.ID] = p.Name
	}

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	if rep.Solution != "" {
		printf("Solution: %s\n", rep.Solution)
	}
	for _, p := range rep.Projects {
		kind := ""
		if p.MetadataOnly {
			kind = ", metadata only"
		}
		printf("%s (%s%s) %s\n", p.Name, p.Language, kind, p.Path)
		if p.Configuration != "" {
			printf("  configuration: %s\n", p.Configuration)
		}
		if p.OutputPath != "" {
			printf("  output: %s\n", p.OutputPath)
		}
		if len(p.Documents) > 0 {
			printf("  documents: %d\n", len(p.Documents))
		}
		for _, ref := range p.References {
			printf("  -> %s", names[ref.ID])
			if len(ref.Aliases) > 0 {
				printf(" %v", ref.Aliases)
			}
			printf("\n")
		}
		for _, u := range p.Unresolved {
			printf("  !! %s\n", filepath.Base(u))
		}
	}
	if len(rep.Diagnostics) > 0 {
		printf("Diagnostics:\n")
		for _, d := range rep.Diagnostics {
			printf("  %s %s: %s\n", d.Kind, d.Path, d.Message)
		}
	}
	return err
}

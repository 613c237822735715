package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/projgraph/internal/engine"
)

// translateProject converts the decoded HCL schema into an engine result.
func translateProject(path string, root *projectFile) *engine.Result {
	r := &engine.Result{Path: path}

	if p := root.Project; p != nil {
		r.Name = p.Name
		r.OutputPath = absUnder(path, p.OutputPath)
		r.OutputRefPath = absUnder(path, p.OutputRefPath)
		if len(p.CompileOptions) > 0 {
			r.CompilationOptions = p.CompileOptions
		}
		if p.AssemblyName != "" {
			if r.CompilationOptions == nil {
				r.CompilationOptions = make(map[string]string)
			}
			r.CompilationOptions["assembly_name"] = p.AssemblyName
		}
	}
	if r.Name == "" {
		file := filepath.Base(path)
		r.Name = strings.TrimSuffix(file, filepath.Ext(file))
	}

	var warnings []string
	r.Documents, warnings = expandDocuments(path, root.Documents)
	r.Warnings = append(r.Warnings, warnings...)
	r.AdditionalDocuments, warnings = expandDocuments(path, root.AdditionalDocuments)
	r.Warnings = append(r.Warnings, warnings...)

	for _, ref := range root.ProjectReferences {
		if !included(ref.Condition) {
			continue
		}
		r.ProjectReferences = append(r.ProjectReferences, engine.Reference{Path: ref.Path, Aliases: ref.Aliases})
	}
	for _, ref := range root.MetadataReferences {
		if !included(ref.Condition) {
			continue
		}
		r.MetadataReferences = append(r.MetadataReferences, ref.Path)
	}
	return r
}

// expandDocuments resolves document labels against the project directory.
// Labels containing glob meta characters are expanded; plain labels that name
// no existing file produce a warning but are kept.
func expandDocuments(projectPath string, blocks []*documentBlock) ([]string, []string) {
	var docs, warnings []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		docs = append(docs, p)
	}

	for _, b := range blocks {
		if !included(b.Condition) {
			continue
		}
		abs := absUnder(projectPath, b.Path)
		if strings.ContainsAny(b.Path, "*?[") {
			matches, err := filepath.Glob(abs)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid document pattern %q: %v", b.Path, err))
				continue
			}
			slices.Sort(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}
		if _, err := os.Stat(abs); err != nil {
			warnings = append(warnings, fmt.Sprintf("document %q does not exist", abs))
		}
		add(abs)
	}
	return docs, warnings
}

// absUnder makes p absolute relative to the directory of projectPath.
func absUnder(projectPath, p string) string {
	if p == "" {
		return ""
	}
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(filepath.Dir(projectPath), p)
}

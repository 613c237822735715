package solution

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/projgraph/internal/ctxlog"
)

// Extension is the file extension of solution files.
const Extension = ".slnhcl"

// EntryKind distinguishes projects from solution folders.
type EntryKind int

const (
	Project EntryKind = iota + 1
	Folder
)

// String implements fmt.Stringer.
func (k EntryKind) String() string {
	switch k {
	case Project:
		return "project"
	case Folder:
		return "folder"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one declared item of a solution file.
type Entry struct {
	Kind EntryKind
	Name string
	// Path is the project path as written, usually relative to the solution
	// directory. It is empty for folders.
	Path string
	// Configuration optionally selects the project's build configuration.
	Configuration string
}

// Reader reads solution files.
type Reader interface {
	Read(ctx context.Context, path string) ([]Entry, error)
}

// HCLReader is the HCL implementation of Reader.
type HCLReader struct{}

// NewReader creates a new HCL solution reader.
func NewReader() *HCLReader {
	return &HCLReader{}
}

type projectBody struct {
	Path          string `hcl:"path"`
	Configuration string `hcl:"configuration,optional"`
}

type folderBody struct {
	Remain hcl.Body `hcl:",remain"`
}

// Read implements Reader.
func (r *HCLReader) Read(ctx context.Context, path string) ([]Entry, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading solution file.", "path", path)

	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse solution file %s: %w", path, diags)
	}

	// Only the native syntax keeps blocks in declaration order.
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("solution file %s is not in native HCL syntax", path)
	}
	for name, attr := range body.Attributes {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unexpected attribute",
			Detail:   fmt.Sprintf("Attribute %q is not allowed at the top level of a solution file.", name),
			Subject:  attr.SrcRange.Ptr(),
		})
	}

	var entries []Entry
	for _, block := range body.Blocks {
		switch block.Type {
		case "project":
			if len(block.Labels) != 1 {
				diags = append(diags, labelDiag(block))
				continue
			}
			var pb projectBody
			diags = append(diags, gohcl.DecodeBody(block.Body, nil, &pb)...)
			entries = append(entries, Entry{Kind: Project, Name: block.Labels[0], Path: pb.Path, Configuration: pb.Configuration})
		case "folder":
			if len(block.Labels) != 1 {
				diags = append(diags, labelDiag(block))
				continue
			}
			var fb folderBody
			diags = append(diags, gohcl.DecodeBody(block.Body, nil, &fb)...)
			entries = append(entries, Entry{Kind: Folder, Name: block.Labels[0]})
		default:
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unsupported block type",
				Detail:   fmt.Sprintf("Blocks of type %q are not expected in a solution file.", block.Type),
				Subject:  block.TypeRange.Ptr(),
			})
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode solution file %s: %w", path, diags)
	}

	logger.Debug("Solution file read.", "path", path, "entries", len(entries))
	return entries, nil
}

func labelDiag(block *hclsyntax.Block) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid block labels",
		Detail:   fmt.Sprintf("A %q block needs exactly one label, its name.", block.Type),
		Subject:  block.DefRange().Ptr(),
	}
}

// Projects returns the project entries of entries, in order.
func Projects(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == Project {
			out = append(out, e)
		}
	}
	return out
}

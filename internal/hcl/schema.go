package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// projectFile is used to decode all top-level blocks of a project file.
type projectFile struct {
	Project             *projectBlock             `hcl:"project,block"`
	Documents           []*documentBlock          `hcl:"document,block"`
	AdditionalDocuments []*documentBlock          `hcl:"additional_document,block"`
	ProjectReferences   []*projectReferenceBlock  `hcl:"project_reference,block"`
	MetadataReferences  []*metadataReferenceBlock `hcl:"metadata_reference,block"`
}

type projectBlock struct {
	Name           string            `hcl:"name,optional"`
	AssemblyName   string            `hcl:"assembly_name,optional"`
	OutputPath     string            `hcl:"output_path,optional"`
	OutputRefPath  string            `hcl:"output_ref_path,optional"`
	CompileOptions map[string]string `hcl:"compile_options,optional"`
}

// outputsBlock decodes only what Outputs needs; everything else is left
// unevaluated in Remain.
type outputsBlock struct {
	OutputPath    string   `hcl:"output_path,optional"`
	OutputRefPath string   `hcl:"output_ref_path,optional"`
	Remain        hcl.Body `hcl:",remain"`
}

type documentBlock struct {
	Path      string `hcl:"path,label"`
	Condition *bool  `hcl:"condition,optional"`
}

type projectReferenceBlock struct {
	Path      string   `hcl:"path,label"`
	Aliases   []string `hcl:"aliases,optional"`
	Condition *bool    `hcl:"condition,optional"`
}

type metadataReferenceBlock struct {
	Path      string `hcl:"path,label"`
	Condition *bool  `hcl:"condition,optional"`
}

// included reports whether an optional condition admits the block.
func included(cond *bool) bool {
	return cond == nil || *cond
}

// findUniqueBlock searches blocks for the one block of the given type.
// It returns an error diagnostic if more than one is found and nil if none is.
func findUniqueBlock(blocks hcl.Blocks, name string) (*hcl.Block, hcl.Diagnostics) {
	var found *hcl.Block
	var diags hcl.Diagnostics

	for _, block := range blocks {
		if block.Type == name {
			if found != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"" + name + "\" block",
					Detail:   "Only one \"" + name + "\" block is allowed.",
					Subject:  &block.DefRange,
				})
			}
			found = block
		}
	}

	return found, diags
}

// Package hcl provides the concrete HCL implementation of the engine.Engine
// interface. Project files are HCL documents made of one optional `project`
// block plus `document`, `additional_document`, `project_reference` and
// `metadata_reference` blocks:
//
//	project {
//	  name        = "App"
//	  output_path = "bin/${prop.Configuration}/App.dll"
//	}
//	document "Program.cs" {}
//	document "Debug.cs" { condition = prop.Configuration == "Debug" }
//	project_reference "../Lib/Lib.csproj" {}
//
// Expressions are evaluated against the global properties (exposed as the
// `prop` map, in their declared spelling and in lower case), a `project`
// object (`dir`, `file`, `name`) and a set of string and collection functions
// from cty's stdlib.
package hcl

// Package solution reads solution files into an ordered list of entries.
//
// A solution file is an HCL document made of `project` and `folder` blocks.
// Entries keep the order in which they are declared:
//
//	folder "src" {}
//	project "App" {
//	  path          = "src/App/App.csproj"
//	  configuration = "Release"
//	}
//	project "Lib" { path = "src/Lib/Lib.csproj" }
//
// Folders only group projects for display and never reach the loader.
package solution

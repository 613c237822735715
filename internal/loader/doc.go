// Package loader turns requested project or solution paths into immutable
// project descriptions.
//
// A Loader owns one extension registry, one diagnostic reporter and one lazily
// created evaluation session. LoadProject and LoadSolution both delegate to a
// Worker, which walks the project reference graph with a worklist and a
// visited set:
//
//	requested paths ─► resolve + claim (in order)
//	                      │
//	                      ▼
//	              ┌── worklist (bounded fan-out) ◄──┐
//	              │   resolve, claim, pick loader,  │
//	              │   evaluate through the session  │
//	              └── enqueue project references ───┘
//	                      │
//	                      ▼
//	       order + link references by identity
//
// The policy for each failure class is chosen per load: requested projects and
// projects discovered through references are reported under separate
// diag.Options.
package loader

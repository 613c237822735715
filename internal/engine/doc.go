// Package engine defines the contract of the external project-evaluation
// engine: the component that interprets a project file's build description
// and returns its effective items (sources, references, output).
//
// Engines are assumed to be single-threaded, stateful and expensive to
// create. Callers never use an Engine directly; they go through a
// session.Session which owns one instance and serializes every call into it.
// The HCL-backed implementation lives in package hcl.
package engine

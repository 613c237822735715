// Package diag defines the diagnostics a load can produce and the policy that
// decides what happens to each of them.
//
// Every failure the loader encounters is turned into a Diagnostic and handed
// to a Reporter together with a Mode. Under Log the diagnostic is recorded and
// the load continues without the offending project; under Throw the Reporter
// returns an *Error that unwinds the whole load; under Ignore it is dropped.
// Which mode applies depends on whether the project was requested by the
// caller or only discovered through a reference, see Options.
//
// Cancellation is deliberately absent from this package: a cancelled load is
// not a diagnostic and is never reported.
package diag

package diag

import "fmt"

// Mode selects what a Reporter does with a diagnostic.
type Mode int

const (
	// Log records the diagnostic and lets the load continue.
	Log Mode = iota
	// Throw aborts the load with an *Error carrying the diagnostic.
	Throw
	// Ignore drops the diagnostic.
	Ignore
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Log:
		return "log"
	case Throw:
		return "throw"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Options holds the reporting modes for one class of projects.
type Options struct {
	OnPathFailure   Mode
	OnLoaderFailure Mode
}

var (
	// ThrowForAll aborts on any path or loader failure.
	ThrowForAll = Options{OnPathFailure: Throw, OnLoaderFailure: Throw}
	// LogForAll records every path or loader failure and continues.
	LogForAll = Options{OnPathFailure: Log, OnLoaderFailure: Log}
	// IgnoreAll drops every path or loader failure.
	IgnoreAll = Options{OnPathFailure: Ignore, OnLoaderFailure: Ignore}
)

// Uniform returns Options using mode for both failure classes.
func Uniform(mode Mode) Options {
	return Options{OnPathFailure: mode, OnLoaderFailure: mode}
}

// Package identity assigns stable handles to loaded projects and keeps the
// mapping from canonical project paths to those handles.
package identity

import (
	"fmt"
	"sync/atomic"
)

// last is the process-wide counter behind New.
var last atomic.Uint64

// ID distinguishes one loaded project (or solution) from another,
// independent of the path string it was loaded from.
type ID struct {
	Value uint64
	// Debug is a human label, usually the path the ID was first created for.
	Debug string
}

// New returns an ID that is unique within the process.
func New(debug string) ID {
	return ID{Value: last.Add(1), Debug: debug}
}

// IsZero reports whether id was never assigned.
func (id ID) IsZero() bool {
	return id.Value == 0
}

// String implements fmt.Stringer.
func (id ID) String() string {
	if id.Debug == "" {
		return fmt.Sprintf("#%d", id.Value)
	}
	return fmt.Sprintf("#%d (%s)", id.Value, id.Debug)
}

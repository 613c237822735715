// Package progress reports how far a load has come. Every processed project
// path advances the sink by exactly one event, whatever its outcome.
package progress

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is what happened to one processed path.
type Outcome int

const (
	Loaded Outcome = iota + 1
	MetadataOnly
	// Skipped covers duplicates and failures reported under Log or Ignore.
	Skipped
	Failed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case MetadataOnly:
		return "metadata"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes one unit of completed work.
type Event struct {
	Path      string
	Requested bool
	Outcome   Outcome
	Elapsed   time.Duration
}

// Sink receives progress events. Implementations must be safe for concurrent use.
type Sink interface {
	Advance(Event)
}

// Func adapts a function to a Sink.
type Func func(Event)

// Advance implements Sink.
func (f Func) Advance(e Event) { f(e) }

// Nop discards every event.
var Nop Sink = Func(func(Event) {})

// Counter counts events.
type Counter struct {
	n atomic.Int64
}

// Advance implements Sink.
func (c *Counter) Advance(Event) { c.n.Add(1) }

// Count returns the number of events seen.
func (c *Counter) Count() int64 { return c.n.Load() }

// Recorder keeps every event, append-only.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Advance implements Sink.
func (r *Recorder) Advance(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Multi fans every event out to all sinks; nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return Func(func(e Event) {
		for _, s := range live {
			s.Advance(e)
		}
	})
}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop
	}
	return s
}

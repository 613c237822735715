package diag

import (
	"context"
	"slices"
	"sync"

	"github.com/vk/projgraph/internal/ctxlog"
)

// Listener observes every diagnostic a Reporter records.
type Listener func(Diagnostic)

// Reporter applies a Mode to diagnostics and keeps the log of recorded ones.
// It is safe for concurrent use.
type Reporter struct {
	mu        sync.Mutex
	log       []Diagnostic
	listeners []Listener
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// OnDiagnostic registers a listener called for every recorded diagnostic.
// Listeners run synchronously on the reporting goroutine.
func (r *Reporter) OnDiagnostic(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Report applies mode to d. It returns a non-nil *Error only under Throw.
func (r *Reporter) Report(ctx context.Context, d Diagnostic, mode Mode) error {
	logger := ctxlog.FromContext(ctx)

	switch mode {
	case Ignore:
		logger.Debug("Diagnostic ignored.", "kind", d.Kind.String(), "path", d.Path, "message", d.Message)
		return nil
	case Throw:
		r.record(d)
		logger.Debug("Diagnostic is fatal, aborting load.", "kind", d.Kind.String(), "path", d.Path, "message", d.Message)
		return &Error{Diagnostic: d}
	default:
		r.record(d)
		attrs := []any{"kind", d.Kind.String(), "path", d.Path}
		if d.Err != nil {
			attrs = append(attrs, "error", d.Err)
		}
		logger.Warn(d.Message, attrs...)
		return nil
	}
}

// Diagnostics returns a copy of every recorded diagnostic, in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.log)
}

func (r *Reporter) record(d Diagnostic) {
	r.mu.Lock()
	r.log = append(r.log, d)
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, l := range listeners {
		l(d)
	}
}

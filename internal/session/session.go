// Package session owns the single evaluation engine instance of a loader and
// serializes every call into it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/engine"
	"github.com/vk/projgraph/internal/model"
	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("evaluation session is closed")

// Session wraps a non-reentrant engine.Engine. At most one call is in flight
// at any instant; waiting for the engine honours the caller's context.
type Session struct {
	engine engine.Engine
	// access is the exclusive handle on the engine.
	access *semaphore.Weighted

	mu       sync.Mutex
	closed   bool
	closeErr error
	once     sync.Once
}

// New wraps e in a Session.
func New(e engine.Engine) *Session {
	return &Session{engine: e, access: semaphore.NewWeighted(1)}
}

// Open creates the engine through factory and wraps it in a Session.
func Open(ctx context.Context, factory engine.Factory) (*Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening evaluation session.")

	e, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation engine: %w", err)
	}
	return New(e), nil
}

// Evaluate runs a full evaluation of the project at path.
func (s *Session) Evaluate(ctx context.Context, path string, props model.Properties) (*engine.Result, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.access.Release(1)

	ctxlog.FromContext(ctx).Debug("Evaluating project.", "path", path)
	return s.engine.Evaluate(ctx, path, props)
}

// Outputs asks the engine for the project's build outputs only.
func (s *Session) Outputs(ctx context.Context, path string, props model.Properties) (*engine.Outputs, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.access.Release(1)

	ctxlog.FromContext(ctx).Debug("Evaluating project outputs.", "path", path)
	return s.engine.Outputs(ctx, path, props)
}

// Close waits for the in-flight call, if any, and releases the engine. Only the
// first call closes the engine; later calls return the same result.
func (s *Session) Close(ctx context.Context) error {
	s.once.Do(func() {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Closing evaluation session.")

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		// Take the handle without the caller's context so a cancelled caller
		// can not leak the engine.
		_ = s.access.Acquire(context.Background(), 1)
		defer s.access.Release(1)
		s.closeErr = s.engine.Close()
	})
	return s.closeErr
}

func (s *Session) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.access.Acquire(ctx, 1); err != nil {
		return err
	}
	if s.isClosed() {
		s.access.Release(1)
		return ErrClosed
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

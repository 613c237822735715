// Package notify publishes load progress and diagnostics to a socket.io
// server so a front-end can follow a running load.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/progress"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted by a Publisher.
const (
	ProgressEvent   = "project.progress"
	DiagnosticEvent = "project.diagnostic"
)

// Emitter sends named events. *socket.Socket satisfies it.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// Options configure Connect.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds the wait for the connection. Zero means 15 seconds.
	Timeout time.Duration
}

// Connect dials the socket.io server at rawURL over websocket and waits until
// the connection is established.
func Connect(ctx context.Context, rawURL string, opts Options) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must include a scheme and host", rawURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	sioOpts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		sioOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sioOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sioOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sioOpts)
	io := manager.Socket(opts.Namespace, sioOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Notifier connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		connectChan <- connectError(errs...)
	})

	logger.Debug("Connecting notifier...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", timeout)
	}
}

// Publisher forwards progress events and diagnostics to an Emitter. It
// implements progress.Sink; Diagnostic is a diag.Listener.
type Publisher struct {
	emitter Emitter
	ctx     context.Context
}

// NewPublisher creates a Publisher. ctx supplies the logger used for emit
// failures; those are logged and otherwise ignored.
func NewPublisher(ctx context.Context, e Emitter) *Publisher {
	return &Publisher{emitter: e, ctx: ctx}
}

// Advance implements progress.Sink.
func (p *Publisher) Advance(ev progress.Event) {
	p.emit(ProgressEvent, progressPayload(ev))
}

// Diagnostic forwards one recorded diagnostic.
func (p *Publisher) Diagnostic(d diag.Diagnostic) {
	p.emit(DiagnosticEvent, diagnosticPayload(d))
}

func (p *Publisher) emit(event string, payload map[string]any) {
	if err := p.emitter.Emit(event, payload); err != nil {
		ctxlog.FromContext(p.ctx).Debug("Failed to publish event.", "event", event, "error", err)
	}
}

func progressPayload(ev progress.Event) map[string]any {
	return map[string]any{
		"path":       ev.Path,
		"requested":  ev.Requested,
		"outcome":    ev.Outcome.String(),
		"elapsed_ms": ev.Elapsed.Milliseconds(),
	}
}

func diagnosticPayload(d diag.Diagnostic) map[string]any {
	payload := map[string]any{
		"kind":    d.Kind.String(),
		"path":    d.Path,
		"message": d.Message,
	}
	if d.Err != nil {
		payload["error"] = d.Err.Error()
	}
	return payload
}

// connectError turns the arguments of a connect_error event into an error.
func connectError(args ...any) error {
	if len(args) == 0 {
		return errors.New("socket.io connection failed")
	}
	if err, ok := args[0].(error); ok && err != nil {
		return err
	}
	return fmt.Errorf("socket.io connection failed: %v", args[0])
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/loader"
	"github.com/vk/projgraph/internal/notify"
	"github.com/vk/projgraph/internal/progress"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW, so structured output stays machine readable.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
	}
}

// Run loads the configured path and renders the result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	path, kind, err := resolveTarget(a.config.Path)
	if err != nil {
		return err
	}
	a.logger.Debug("Load target resolved.", "path", path, "kind", kind.String())

	l, err := loader.New(
		loader.WithProperties(a.config.Properties),
		loader.WithLoadMetadataForReferencedProjects(a.config.LoadMetadataForReferencedProjects),
		loader.WithSkipUnrecognizedProjects(a.config.SkipUnrecognizedProjects),
		loader.WithConcurrency(a.config.Workers),
	)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer func() {
		if err := l.Close(ctx); err != nil {
			a.logger.Warn("Failed to close loader.", "error", err)
		}
	}()

	for _, ext := range slices.Sorted(maps.Keys(a.config.Extensions)) {
		l.AssociateExtension(ext, a.config.Extensions[ext])
	}

	counter := &progress.Counter{}
	sinks := []progress.Sink{counter, progress.Func(func(ev progress.Event) {
		a.logger.Debug("Project processed.", "path", ev.Path, "outcome", ev.Outcome.String(), "elapsed", ev.Elapsed)
	})}

	if a.config.NotifyURL != "" {
		client, err := notify.Connect(ctx, a.config.NotifyURL, notify.Options{})
		if err != nil {
			return fmt.Errorf("failed to connect notifier: %w", err)
		}
		defer client.Disconnect()

		pub := notify.NewPublisher(ctx, client)
		sinks = append(sinks, pub)
		l.OnDiagnostic(pub.Diagnostic)
		a.logger.Info("Publishing progress.", "url", a.config.NotifyURL)
	}
	sink := progress.Multi(sinks...)

	var rep *report
	switch kind {
	case targetSolution:
		snapshot, err := l.LoadSolution(ctx, path, sink)
		if err != nil {
			return fmt.Errorf("failed to load solution: %w", err)
		}
		rep = newReport(snapshot.FilePath, snapshot.Projects, l.Diagnostics())
	default:
		projects, err := l.LoadProject(ctx, path, nil, sink)
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		rep = newReport("", projects, l.Diagnostics())
	}

	a.logger.Info("🏁 Load finished.", "projects", len(rep.Projects), "processed", counter.Count(), "diagnostics", len(rep.Diagnostics))
	return render(a.outW, a.config.Output, rep)
}

// Package pathres turns raw solution and project paths into canonical,
// absolute paths of existing files.
package pathres

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/vk/projgraph/internal/ctxlog"
	"github.com/vk/projgraph/internal/diag"
	"github.com/vk/projgraph/internal/fsutil"
)

// Resolver validates paths and reports failures through a diag.Reporter.
type Resolver struct {
	reporter *diag.Reporter
}

// New creates a Resolver reporting to r.
func New(r *diag.Reporter) *Resolver {
	return &Resolver{reporter: r}
}

// Resolve returns the absolute, cleaned form of rawPath. Relative paths are
// resolved against baseDir. When the path is malformed or names no existing
// file, the failure is reported with mode: under Throw the *diag.Error is
// returned, otherwise ok is false and err is nil so the caller can skip the
// path. A cancelled ctx is returned as-is and never reported.
func (r *Resolver) Resolve(ctx context.Context, rawPath, baseDir string, mode diag.Mode) (abs string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	abs, d, failed := Canonicalize(rawPath, baseDir)
	if !failed {
		var exists bool
		exists, err = fsutil.FileExists(abs)
		switch {
		case err != nil:
			d, failed = diag.New(diag.InvalidPath, abs, err, "cannot access %q", rawPath), true
		case !exists:
			d, failed = diag.New(diag.FileNotFound, abs, nil, "file %q does not exist", abs), true
		}
	}
	if failed {
		return "", false, r.reporter.Report(ctx, d, mode)
	}

	ctxlog.FromContext(ctx).Debug("Path resolved.", "raw", rawPath, "resolved", abs)
	return abs, true, nil
}

// Canonicalize performs the syntactic half of Resolve without touching the
// file system. failed is true when rawPath can not be a file path at all.
func Canonicalize(rawPath, baseDir string) (abs string, d diag.Diagnostic, failed bool) {
	if strings.TrimSpace(rawPath) == "" {
		return "", diag.New(diag.InvalidPath, rawPath, nil, "path is empty"), true
	}
	if strings.ContainsRune(rawPath, 0) {
		return "", diag.New(diag.InvalidPath, rawPath, nil, "path contains a NUL byte"), true
	}

	p := filepath.FromSlash(rawPath)
	if !filepath.IsAbs(p) {
		if baseDir == "" {
			return "", diag.New(diag.InvalidPath, rawPath, nil, "relative path %q has no base directory", rawPath), true
		}
		p = filepath.Join(baseDir, p)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", diag.New(diag.InvalidPath, rawPath, err, "cannot make %q absolute", rawPath), true
	}
	return abs, diag.Diagnostic{}, false
}

// Key returns the visited-set key for an absolute path. Paths compare
// case-insensitively.
func Key(abs string) string {
	return strings.ToLower(filepath.Clean(abs))
}


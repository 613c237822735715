package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Well-known languages.
const (
	CSharp      = "C#"
	VisualBasic = "Visual Basic"
	FSharp      = "F#"
	HCL         = "HCL"
)

// Registry holds the extension and language associations for a single
// loader instance.
type Registry struct {
	extensions map[string]string
	loaders    map[string]ProjectFileLoader
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		extensions: make(map[string]string),
		loaders:    make(map[string]ProjectFileLoader),
	}
}

// NewDefault creates a Registry with the built-in languages and extensions.
func NewDefault() *Registry {
	r := New()
	for ext, lang := range map[string]string{
		".csproj": CSharp,
		".vbproj": VisualBasic,
		".fsproj": FSharp,
		".hproj":  HCL,
	} {
		r.Register(EngineLoader{Lang: lang})
		r.Associate(ext, lang)
	}
	return r
}

// Register adds the loader for its language. Registering a language twice
// is a programmer error and panics.
func (r *Registry) Register(l ProjectFileLoader) {
	lang := l.Language()
	if _, exists := r.loaders[lang]; exists {
		panic(fmt.Sprintf("loader for language '%s' already registered", lang))
	}
	slog.Debug("Registering project loader.", "language", lang)
	r.loaders[lang] = l
}

// Associate maps a file extension (with or without the leading dot,
// any case) to a language, replacing an earlier association.
func (r *Registry) Associate(extension, language string) {
	ext := normalizeExt(extension)
	if ext == "" {
		panic("extension must not be empty")
	}
	slog.Debug("Associating extension.", "extension", ext, "language", language)
	r.extensions[ext] = language
}

// LanguageFor returns the language associated with path's extension.
func (r *Registry) LanguageFor(path string) (string, bool) {
	lang, ok := r.extensions[normalizeExt(filepath.Ext(path))]
	return lang, ok
}

// LoaderFor returns the loader for path's extension.
func (r *Registry) LoaderFor(path string) (ProjectFileLoader, bool) {
	lang, ok := r.LanguageFor(path)
	if !ok {
		return nil, false
	}
	l, ok := r.loaders[lang]
	return l, ok
}

// Extensions returns the associated extensions, sorted.
func (r *Registry) Extensions() []string {
	return slices.Sorted(maps.Keys(r.extensions))
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []string {
	return slices.Sorted(maps.Keys(r.loaders))
}

// Clone returns an independent copy. Loaders are shared.
func (r *Registry) Clone() *Registry {
	return &Registry{
		extensions: maps.Clone(r.extensions),
		loaders:    maps.Clone(r.loaders),
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

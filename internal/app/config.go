package app

import (
	"errors"
	"fmt"
	"strings"
)

// Output formats understood by Run.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Path is a solution file, a project file, or a directory holding exactly
	// one solution file.
	Path string

	Properties map[string]string
	// Extensions maps extra project file extensions to languages.
	Extensions map[string]string

	LoadMetadataForReferencedProjects bool
	SkipUnrecognizedProjects          bool

	Workers   int
	LogFormat string
	LogLevel  string
	Output    string
	// NotifyURL, when set, is the socket.io server progress is published to.
	NotifyURL string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}

	cfg.Output = strings.ToLower(cfg.Output)
	switch cfg.Output {
	case "":
		cfg.Output = OutputText
	case OutputText, OutputJSON, OutputYAML:
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'text', 'json' or 'yaml'", cfg.Output)
	}

	for ext, lang := range cfg.Extensions {
		if strings.Trim(ext, ". ") == "" || lang == "" {
			return nil, fmt.Errorf("invalid extension association %q=%q", ext, lang)
		}
	}
	return &cfg, nil
}

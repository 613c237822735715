package registry

import (
	"fmt"
	"strings"
)

// Validate checks that every associated extension maps to a language with a
// registered loader.
func (r *Registry) Validate() error {
	var errs []string
	for _, ext := range r.Extensions() {
		lang := r.extensions[ext]
		if _, ok := r.loaders[lang]; !ok {
			errs = append(errs, fmt.Sprintf("extension '%s': language '%s' has no registered loader", ext, lang))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

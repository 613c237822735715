package diag

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	ErrInvalidPath         = errors.New("invalid path")
	ErrFileNotFound        = errors.New("file not found")
	ErrUnrecognizedProject = errors.New("unrecognized project type")
	ErrEvaluation          = errors.New("evaluation failed")
	ErrEvaluationWarning   = errors.New("evaluation warning")
)

// Kind classifies a Diagnostic.
type Kind int

const (
	InvalidPath Kind = iota + 1
	FileNotFound
	UnrecognizedProjectType
	EvaluationFailure
	// EvaluationWarning is a non-fatal message produced by the evaluation
	// engine for a project that loaded successfully.
	EvaluationWarning
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InvalidPath:
		return "InvalidPath"
	case FileNotFound:
		return "FileNotFound"
	case UnrecognizedProjectType:
		return "UnrecognizedProjectType"
	case EvaluationFailure:
		return "EvaluationFailure"
	case EvaluationWarning:
		return "EvaluationWarning"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case InvalidPath:
		return ErrInvalidPath
	case FileNotFound:
		return ErrFileNotFound
	case UnrecognizedProjectType:
		return ErrUnrecognizedProject
	case EvaluationFailure:
		return ErrEvaluation
	case EvaluationWarning:
		return ErrEvaluationWarning
	default:
		return nil
	}
}

// Diagnostic describes one problem found while loading.
type Diagnostic struct {
	Kind    Kind
	Path    string
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// New builds a Diagnostic. The message is formatted with fmt.Sprintf.
func New(kind Kind, path string, cause error, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...), Err: cause}
}

// String renders the diagnostic on a single line.
func (d Diagnostic) String() string {
	msg := d.Message
	if msg == "" && d.Err != nil {
		msg = d.Err.Error()
	}
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", d.Kind, d.Path, msg)
}

// Error is the terminating failure returned when a diagnostic is reported
// under Throw. It matches its Kind's sentinel and the underlying cause via
// errors.Is.
type Error struct {
	Diagnostic Diagnostic
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Diagnostic.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Diagnostic.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Diagnostic.Err != nil {
		errs = append(errs, e.Diagnostic.Err)
	}
	return errs
}

// Path returns the path that caused the failure.
func (e *Error) Path() string {
	return e.Diagnostic.Path
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/bomkit/engine/spec"
)

var (
	// ErrNotImplemented is returned when no schema exists for a version and format.
	ErrNotImplemented = errors.New("validation not implemented")

	// ErrMissingOptionalDependency is returned when no validation backend is installed.
	ErrMissingOptionalDependency = errors.New("missing optional dependency")

	// ErrMalformedDocument is returned when the document cannot be parsed at all.
	ErrMalformedDocument = errors.New("malformed document")
)

// NotImplementedError names the version and format that have no schema.
type NotImplementedError struct {
	Version spec.Version
	Format  spec.Format
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("no %s schema for CycloneDX %s", e.Format, e.Version)
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// MissingOptionalDependencyError lists the backends that were tried.
type MissingOptionalDependencyError struct {
	Dependency string
	Tried      []string
	Cause      error
}

func (e *MissingOptionalDependencyError) Error() string {
	msg := fmt.Sprintf("%s validation needs an optional dependency", e.Dependency)
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried %s)", strings.Join(e.Tried, ", "))
	}
	return msg
}

func (e *MissingOptionalDependencyError) Is(target error) bool {
	return target == ErrMissingOptionalDependency
}

func (e *MissingOptionalDependencyError) Unwrap() error {
	return e.Cause
}

// MalformedDocumentError wraps the parser failure.
type MalformedDocumentError struct {
	Format spec.Format
	Cause  error
}

func (e *MalformedDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s document: %v", e.Format, e.Cause)
	}
	return fmt.Sprintf("malformed %s document", e.Format)
}

func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Cause
}

// ValidationError is one structural violation. Path is a JSON pointer for JSON
// documents and a line reference for XML documents.
type ValidationError struct {
	Path    string
	Message string
	// Value is the offending raw value when it could be located.
	Value string
}

func (e ValidationError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Errors is the list of violations found in one document.
type Errors []ValidationError

func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "document is valid"
	case 1:
		return errs[0].String()
	default:
		return fmt.Sprintf("%s (and %d more)", errs[0].String(), len(errs)-1)
	}
}

// Strings returns every violation formatted on one line each.
func (errs Errors) Strings() []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.String())
	}
	return out
}

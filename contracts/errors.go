package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifies why a message failed validation
type Reason string

const (
	// ReasonSchemaRootMismatch means the message is addressed to a different schema family
	ReasonSchemaRootMismatch Reason = "SCHEMA_ROOT_MISMATCH"
	// ReasonUnresolvedReference means the schema reference points nowhere in the document
	ReasonUnresolvedReference Reason = "UNRESOLVED_REFERENCE"
	// ReasonStructuralViolation means the payload broke one or more constraints
	ReasonStructuralViolation Reason = "STRUCTURAL_VIOLATION"
)

var (
	ErrSchemaRootMismatch  = errors.New("schema root mismatch")
	ErrUnresolvedReference = errors.New("unresolved schema reference")
	ErrStructuralViolation = errors.New("structural violation")
)

// Violation is a single constraint failure found in a payload
type Violation struct {
	// Path is a JSON pointer into the validated data ("" for the root)
	Path string `json:"path"`
	// Keyword is a JSON pointer to the violated constraint within the schema
	Keyword string `json:"keyword"`
	Message string `json:"message"`
}

// String formats the violation for logs and CLI output
func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, v.Message)
}

// ValidationError reports that a message or document failed validation.
// Root-mismatch and unresolved-reference errors carry no violations.
type ValidationError struct {
	Reason     Reason      `json:"reason"`
	Schema     string      `json:"schema,omitempty"`
	Violations []Violation `json:"violations,omitempty"`

	cause error
}

// NewReferenceError creates a ValidationError for an addressing failure
func NewReferenceError(reason Reason, schemaRef string, cause error) *ValidationError {
	return &ValidationError{Reason: reason, Schema: schemaRef, cause: cause}
}

// NewViolationError creates a ValidationError carrying structural violations
func NewViolationError(schemaRef string, violations []Violation) *ValidationError {
	return &ValidationError{
		Reason:     ReasonStructuralViolation,
		Schema:     schemaRef,
		Violations: violations,
	}
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonSchemaRootMismatch:
		return fmt.Sprintf("validation failed: schema %q does not belong to the loaded document", e.Schema)
	case ReasonUnresolvedReference:
		return fmt.Sprintf("validation failed: schema %q could not be resolved", e.Schema)
	}

	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Violations), strings.Join(parts, "; "))
}

// Is matches the sentinel error for the failure reason
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrSchemaRootMismatch:
		return e.Reason == ReasonSchemaRootMismatch
	case ErrUnresolvedReference:
		return e.Reason == ReasonUnresolvedReference
	case ErrStructuralViolation:
		return e.Reason == ReasonStructuralViolation
	}
	return false
}

// Unwrap returns the underlying resolution error, if any
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// SchemaError reports every problem found in a schema document
type SchemaError struct {
	Issues []string `json:"issues"`
}

// Error implements the error interface for SchemaError
func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema document (%d issues): %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

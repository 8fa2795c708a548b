package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("root mismatch matches sentinel only", func(t *testing.T) {
		err := NewReferenceError(ReasonSchemaRootMismatch, "https://other/schema#/schemas/a/1.0", nil)

		assert.ErrorIs(t, err, ErrSchemaRootMismatch)
		assert.NotErrorIs(t, err, ErrUnresolvedReference)
		assert.NotErrorIs(t, err, ErrStructuralViolation)
		assert.Empty(t, err.Violations)
		assert.Contains(t, err.Error(), "does not belong")
	})

	t.Run("unresolved reference keeps cause", func(t *testing.T) {
		cause := errors.New("not found")
		err := NewReferenceError(ReasonUnresolvedReference, "ref", cause)

		assert.ErrorIs(t, err, ErrUnresolvedReference)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "could not be resolved")
	})

	t.Run("structural error lists every violation", func(t *testing.T) {
		err := NewViolationError("ref", []Violation{
			{Path: "/id", Keyword: "/properties/id/format", Message: "bad id"},
			{Path: "", Keyword: "/required", Message: "missing name"},
		})

		assert.ErrorIs(t, err, ErrStructuralViolation)
		assert.Equal(t, "validation failed with 2 errors: /id: bad id; /: missing name", err.Error())
	})

	t.Run("errors.As through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("message validation failed: %w", NewViolationError("ref", nil))

		var ve *ValidationError
		require.True(t, errors.As(wrapped, &ve))
		assert.Equal(t, ReasonStructuralViolation, ve.Reason)
	})
}

func TestSchemaError(t *testing.T) {
	err := &SchemaError{Issues: []string{"first", "second"}}

	assert.Equal(t, "invalid schema document (2 issues): first; second", err.Error())
}

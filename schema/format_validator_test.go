package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/hedwig-go/contracts"
)

func TestFormatValidator(t *testing.T) {
	validator, err := NewFormatValidator(WithLogger(quietLogger()))
	require.NoError(t, err)

	t.Run("well-formed message passes", func(t *testing.T) {
		msg := contracts.NewMessage("https://hedwig.example/schema#/schemas/user.created/1.0", map[string]interface{}{"name": "a"})
		msg.Metadata.Publisher = "user-service"
		msg.Metadata.Headers["request_id"] = "abc"

		assert.NoError(t, validator.Validate(msg))
	})

	t.Run("decoded documents pass", func(t *testing.T) {
		assert.NoError(t, validator.Validate([]byte(`{
			"id": "123e4567-e89b-12d3-a456-426614174000",
			"schema": "https://hedwig.example/schema#/schemas/user.created/1.0",
			"format_version": "1.0",
			"metadata": {"timestamp": 1700000000000, "headers": {}},
			"data": null
		}`)))
	})

	t.Run("every problem is reported", func(t *testing.T) {
		err := validator.Validate(map[string]interface{}{
			"id":             "123E4567-E89B-12D3-A456-426614174000",
			"schema":         "",
			"format_version": "2.0",
			"metadata":       map[string]interface{}{"timestamp": -1, "headers": map[string]interface{}{"n": 1}},
			"extra":          true,
		})

		require.ErrorIs(t, err, contracts.ErrStructuralViolation)
		assert.ElementsMatch(t, []string{
			"",
			"",
			"/id",
			"/schema",
			"/format_version",
			"/metadata/timestamp",
			"/metadata/headers/n",
		}, paths(Violations(err)))
	})

	t.Run("ValidateFormatDocument uses the bundled schema", func(t *testing.T) {
		assert.NoError(t, ValidateFormatDocument(contracts.NewMessage("ref", nil)))
		assert.ErrorIs(t, ValidateFormatDocument(map[string]interface{}{}), contracts.ErrStructuralViolation)
	})
}

func TestNewRawValidator(t *testing.T) {
	t.Run("validates against an arbitrary meta-schema", func(t *testing.T) {
		validator, err := NewRawValidator(map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"name"},
		}, WithLogger(quietLogger()))
		require.NoError(t, err)

		assert.NoError(t, validator.Validate(map[string]interface{}{"name": "x"}))
		assert.ErrorIs(t, validator.Validate(map[string]interface{}{}), contracts.ErrStructuralViolation)
	})

	t.Run("rejects non-mapping meta-schemas", func(t *testing.T) {
		_, err := NewRawValidator("string")

		assert.Error(t, err)
	})

	t.Run("rejects uncompilable meta-schemas", func(t *testing.T) {
		_, err := NewRawValidator(map[string]interface{}{"$ref": "#/definitions/missing"})

		assert.Error(t, err)
	})
}

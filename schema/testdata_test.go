package schema

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/serialization"
)

const testRoot = "https://hedwig.example/schema#"

const testSchemaYAML = `
id: https://hedwig.example/schema#
$schema: http://json-schema.org/draft-04/schema#
schemas:
  user.created:
    1.0:
      type: object
      required: [id, name, email]
      properties:
        id:
          type: string
          format: human-uuid
        name:
          type: string
        email:
          $ref: "#/definitions/email"
    2.1:
      type: object
      required: [user_id]
      properties:
        user_id:
          type: string
          format: human-uuid
        tags:
          type: array
          items:
            type: string
            enum: [admin, member]
  trip_created:
    1.0:
      type: object
      required: [vehicle_id, user_id]
      properties:
        vehicle_id:
          type: string
          pattern: "^V[0-9]+$"
        user_id:
          type: string
          format: human-uuid
        started_at:
          type: integer
          minimum: 0
definitions:
  email:
    type: string
    pattern: "^[^@]+@[^@]+$"
`

var testRoutes = contracts.RouteTable{
	{MessageType: "user.created", MajorVersion: 1, Topic: "user-created"},
	{MessageType: "user.created", MajorVersion: 2, Topic: "user-created-v2"},
	{MessageType: "trip_created", MajorVersion: 1, Topic: "trip-created"},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRaw(t *testing.T) interface{} {
	t.Helper()
	raw, err := serialization.Decode([]byte(testSchemaYAML))
	require.NoError(t, err)
	return raw
}

func testDocument(t *testing.T, opts ...ValidatorOption) *Document {
	t.Helper()
	opts = append([]ValidatorOption{WithLogger(quietLogger())}, opts...)
	doc, err := LoadDocument(testRaw(t), testRoutes, opts...)
	require.NoError(t, err)
	return doc
}

func testValidator(t *testing.T, opts ...ValidatorOption) *MessageValidator {
	t.Helper()
	v, err := NewMessageValidator(testDocument(t, opts...), WithLogger(quietLogger()))
	require.NoError(t, err)
	return v
}

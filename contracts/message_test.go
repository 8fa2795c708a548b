package contracts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	t.Run("NewMessage creates valid message", func(t *testing.T) {
		msg := NewMessage("https://hedwig.example/schema#/schemas/user.created/1.0", map[string]interface{}{"name": "a"})

		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, FormatVersion, msg.FormatVersion)
		assert.NotZero(t, msg.Metadata.Timestamp)
		assert.NotNil(t, msg.Metadata.Headers)

		// Verify ID is valid UUID
		_, err := uuid.Parse(msg.ID)
		assert.NoError(t, err)
	})

	t.Run("BaseMessage implements Message interface", func(t *testing.T) {
		var msg Message = NewMessage("https://hedwig.example/schema#/schemas/user.created/1.0", "payload")

		assert.Equal(t, "https://hedwig.example/schema#/schemas/user.created/1.0", msg.GetSchema())
		assert.Equal(t, "payload", msg.GetData())
		assert.Equal(t, "user.created", msg.GetMessageType())
		assert.Equal(t, "1.0", msg.GetVersion())
	})
}

func TestSplitSchemaRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		msgType string
		version string
		ok      bool
	}{
		{"pointer reference", "https://hedwig.example/schema#/schemas/trip_created/2.1", "trip_created", "2.1", true},
		{"short reference", "https://schemas.example/user.created/1.0", "user.created", "1.0", true},
		{"trailing slash", "https://schemas.example/user.created/1.0/", "user.created", "1.0", true},
		{"fragment only", "#/1.0", "", "", false},
		{"no separators", "user.created", "", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgType, version, ok := SplitSchemaRef(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.msgType, msgType)
			assert.Equal(t, tt.version, version)
		})
	}
}

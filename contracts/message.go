package contracts

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the envelope format version written by NewMessage
const FormatVersion = "1.0"

// Message is the base interface for all messages
type Message interface {
	GetID() string
	GetSchema() string
	GetData() interface{}
	GetMessageType() string
	GetVersion() string
}

// Metadata carries publisher information for a message
type Metadata struct {
	Timestamp int64             `json:"timestamp" yaml:"timestamp"`
	Publisher string            `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Headers   map[string]string `json:"headers" yaml:"headers"`
}

// BaseMessage is the wire representation of a hedwig message
type BaseMessage struct {
	ID            string      `json:"id" yaml:"id"`
	Schema        string      `json:"schema" yaml:"schema"`
	FormatVersion string      `json:"format_version" yaml:"format_version"`
	Metadata      Metadata    `json:"metadata" yaml:"metadata"`
	Data          interface{} `json:"data" yaml:"data"`
}

// NewMessage creates a new message with generated ID and current timestamp
func NewMessage(schemaRef string, data interface{}) *BaseMessage {
	return &BaseMessage{
		ID:            uuid.New().String(),
		Schema:        schemaRef,
		FormatVersion: FormatVersion,
		Metadata: Metadata{
			Timestamp: time.Now().UnixMilli(),
			Headers:   make(map[string]string),
		},
		Data: data,
	}
}

// GetID returns the message ID
func (m *BaseMessage) GetID() string {
	return m.ID
}

// GetSchema returns the schema reference the message claims to conform to
func (m *BaseMessage) GetSchema() string {
	return m.Schema
}

// GetData returns the message payload
func (m *BaseMessage) GetData() interface{} {
	return m.Data
}

// GetMessageType returns the message type encoded in the schema reference
func (m *BaseMessage) GetMessageType() string {
	msgType, _, _ := SplitSchemaRef(m.Schema)
	return msgType
}

// GetVersion returns the version encoded in the schema reference
func (m *BaseMessage) GetVersion() string {
	_, version, _ := SplitSchemaRef(m.Schema)
	return version
}

// SplitSchemaRef extracts the message type and version from the last two
// path segments of a schema reference such as
// "https://hedwig.example/schema#/schemas/user.created/1.0".
func SplitSchemaRef(ref string) (msgType, version string, ok bool) {
	ref = strings.TrimRight(ref, "/")
	i := strings.LastIndex(ref, "/")
	if i <= 0 {
		return "", "", false
	}
	version = ref[i+1:]
	rest := ref[:i]
	j := strings.LastIndexAny(rest, "/#")
	msgType = rest[j+1:]
	if msgType == "" || version == "" {
		return "", "", false
	}
	return msgType, version, true
}

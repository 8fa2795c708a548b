package schema

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/serialization"
)

//go:embed format_schema.yaml
var formatSchemaYAML []byte

// FormatValidator checks documents directly against a fixed meta-schema,
// without schema reference indirection.
type FormatValidator struct {
	schema *jsonschema.Schema
	id     string
	logger *slog.Logger
}

// NewFormatValidator creates a validator for the bundled message format schema
func NewFormatValidator(opts ...ValidatorOption) (*FormatValidator, error) {
	meta, err := serialization.DecodeYAML(formatSchemaYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundled format schema: %w", err)
	}
	return NewRawValidator(meta, opts...)
}

// NewRawValidator creates a validator for an arbitrary decoded meta-schema
func NewRawValidator(meta interface{}, opts ...ValidatorOption) (*FormatValidator, error) {
	config := newConfig(opts)

	root, ok := meta.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("meta-schema must be a mapping, got %T", meta)
	}

	id := documentID(root)
	if id == "" {
		id = "mem://format-schema"
	}
	base := baseURL(id)

	source, err := serialization.Encode(root)
	if err != nil {
		return nil, err
	}

	s, err := compileResource(config.Formats.engineFormats(), base, source, base)
	if err != nil {
		return nil, fmt.Errorf("failed to compile meta-schema %s: %w", id, err)
	}

	return &FormatValidator{schema: s, id: id, logger: config.Logger}, nil
}

// Validate checks data against the meta-schema and reports every violation
func (v *FormatValidator) Validate(data interface{}) error {
	if found := check(v.schema, data); len(found) > 0 {
		v.logger.Debug("document failed format validation", "schema", v.id, "errors", len(found))
		return contracts.NewViolationError(v.id, found)
	}
	return nil
}

var bundledFormat = sync.OnceValues(func() (*FormatValidator, error) {
	return NewFormatValidator()
})

// ValidateFormatDocument validates data against the bundled message format schema
func ValidateFormatDocument(data interface{}) error {
	v, err := bundledFormat()
	if err != nil {
		return err
	}
	return v.Validate(data)
}

package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/serialization"
)

var errRemoteRef = errors.New("references outside the loaded document are not followed")

// newCompiler creates a Draft-4 compiler that asserts the given formats and
// never reaches outside the in-memory resources.
func newCompiler(formats map[string]func(interface{}) bool) *jsonschema.Compiler {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft4
	c.AssertFormat = true
	c.LoadURL = func(s string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("%w: %s", errRemoteRef, s)
	}
	if c.Formats == nil {
		c.Formats = make(map[string]func(interface{}) bool, len(formats))
	}
	for name, fn := range formats {
		c.Formats[name] = fn
	}
	return c
}

// compileResource compiles url (optionally with a fragment) out of a JSON resource registered at base
func compileResource(formats map[string]func(interface{}) bool, base string, source []byte, ref string) (*jsonschema.Schema, error) {
	c := newCompiler(formats)
	if err := c.AddResource(base, bytes.NewReader(source)); err != nil {
		return nil, err
	}
	return c.Compile(ref)
}

// toInstance converts a payload into the engine's JSON value model.
// Raw JSON bytes are decoded as-is; anything else is encoded first.
func toInstance(payload interface{}) (interface{}, error) {
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	default:
		encoded, err := serialization.Encode(payload)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	// Numbers stay json.Number so integer constraints see the literal value
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// check validates an instance and materializes every violation
func check(s *jsonschema.Schema, payload interface{}) []contracts.Violation {
	instance, err := toInstance(payload)
	if err != nil {
		return []contracts.Violation{{Message: fmt.Sprintf("payload is not a JSON document: %v", err)}}
	}
	return slices.Collect(violations(s.Validate(instance)))
}

// violations yields the leaf failures of an engine error in document order
func violations(err error) iter.Seq[contracts.Violation] {
	return func(yield func(contracts.Violation) bool) {
		if err == nil {
			return
		}

		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			yield(contracts.Violation{Message: err.Error()})
			return
		}

		var walk func(e *jsonschema.ValidationError) bool
		walk = func(e *jsonschema.ValidationError) bool {
			if len(e.Causes) == 0 {
				return yield(contracts.Violation{
					Path:    strings.TrimPrefix(e.InstanceLocation, "#"),
					Keyword: strings.TrimPrefix(e.KeywordLocation, "#"),
					Message: e.Message,
				})
			}
			for _, cause := range e.Causes {
				if !walk(cause) {
					return false
				}
			}
			return true
		}
		walk(ve)
	}
}

func escapePointerToken(token string) string {
	token = strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
	return url.PathEscape(token)
}

func schemaPointer(msgType, version string) string {
	return "#/schemas/" + escapePointerToken(msgType) + "/" + escapePointerToken(version)
}

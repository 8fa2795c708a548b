package serialization

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when a source holds no document
var ErrEmptyDocument = errors.New("empty document")

// Decode decodes a JSON or YAML document into a generic value tree.
// Mapping keys are always kept as strings, so YAML version keys like 1.0 stay "1.0".
func Decode(data []byte) (interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var v interface{}
	jsonErr := json.Unmarshal(data, &v)
	if jsonErr == nil {
		return v, nil
	}

	v, err := DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("document is neither JSON (%v) nor YAML: %w", jsonErr, err)
	}
	return v, nil
}

// DecodeYAML decodes a YAML document into a generic value tree
func DecodeYAML(data []byte) (interface{}, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		return nil, ErrEmptyDocument
	}
	return fromNode(&root)
}

// DecodeFile reads and decodes a document from disk
func DecodeFile(path string) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	v, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return v, nil
}

// Encode encodes a value tree as JSON
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func fromNode(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			if key.ShortTag() == "!!merge" {
				merged, err := fromNode(val)
				if err != nil {
					return nil, err
				}
				if mm, ok := merged.(map[string]interface{}); ok {
					for k, v := range mm {
						if _, exists := m[k]; !exists {
							m[k] = v
						}
					}
				}
				continue
			}
			v, err := fromNode(val)
			if err != nil {
				return nil, err
			}
			m[key.Value] = v
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	default:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

// Convert re-encodes a decoded value tree into out, e.g. a message struct
func Convert(v interface{}, out interface{}) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to convert document to %T: %w", out, err)
	}
	return nil
}

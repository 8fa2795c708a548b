package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/serialization"
)

// Document is a loaded schema document that passed its load-time checks.
// It is immutable and safe for concurrent use.
type Document struct {
	rootID   string
	base     string
	source   []byte
	formats  map[string]func(interface{}) bool
	versions map[string][]string
	types    map[string]string
	compiled map[string]*jsonschema.Schema
}

var errNotMessageSchema = errors.New("reference does not address a message schema version")

// LoadDocument checks a decoded schema document against the routing table and
// compiles every message schema in it. All problems are reported together in a
// *contracts.SchemaError; a document is never partially accepted.
func LoadDocument(raw interface{}, routes contracts.RouteTable, opts ...ValidatorOption) (*Document, error) {
	config := newConfig(opts)
	logger := config.Logger

	root, ok := raw.(map[string]interface{})
	if !ok {
		err := &contracts.SchemaError{Issues: []string{
			fmt.Sprintf("invalid schema file: expected a mapping, got %T", raw),
		}}
		logger.Error("schema document rejected", "issues", err.Issues)
		return nil, err
	}

	rootID, entries, issues := checkDocument(root, routes.Coverage())

	doc := &Document{
		rootID:   rootID,
		base:     baseURL(rootID),
		formats:  config.Formats.engineFormats(),
		versions: make(map[string][]string),
		types:    make(map[string]string, len(entries)),
		compiled: make(map[string]*jsonschema.Schema, len(entries)),
	}

	if rootID != "" {
		issues = append(issues, doc.compile(root, entries)...)
	}

	if len(issues) > 0 {
		err := &contracts.SchemaError{Issues: issues}
		logger.Error("schema document rejected", "root", rootID, "issues", issues)
		return nil, err
	}

	logger.Info("schema document loaded",
		"root", rootID,
		"messageTypes", len(doc.versions),
		"schemas", len(doc.compiled),
	)

	return doc, nil
}

// LoadDocumentFile reads a JSON or YAML schema document from disk and loads it
func LoadDocumentFile(path string, routes contracts.RouteTable, opts ...ValidatorOption) (*Document, error) {
	raw, err := serialization.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return LoadDocument(raw, routes, opts...)
}

func (d *Document) compile(root map[string]interface{}, entries []entry) []string {
	source, err := serialization.Encode(root)
	if err != nil {
		return []string{fmt.Sprintf("invalid schema file: %v", err)}
	}
	d.source = source

	if _, err := compileResource(d.formats, d.base, d.source, d.base); err != nil {
		return []string{fmt.Sprintf("invalid schema file: %v", err)}
	}

	var issues []string
	for _, e := range entries {
		pointer := schemaPointer(e.msgType, e.version)
		s, err := compileResource(d.formats, d.base, d.source, d.base+pointer)
		if err != nil {
			issues = append(issues, fmt.Sprintf("invalid schema for message type '%s' version '%s': %v", e.msgType, e.version, err))
			continue
		}
		d.compiled[pointer] = s
		d.types[pointer] = e.msgType
		d.versions[e.msgType] = append(d.versions[e.msgType], e.version)
	}
	return issues
}

// RootID returns the identifier every schema reference must start with
func (d *Document) RootID() string {
	return d.rootID
}

// MessageTypes returns the message types in the document in sorted order
func (d *Document) MessageTypes() []string {
	types := make([]string, 0, len(d.versions))
	for t := range d.versions {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Versions returns the version strings defined for a message type
func (d *Document) Versions(msgType string) []string {
	return append([]string(nil), d.versions[msgType]...)
}

// SchemaRef builds the canonical reference for a message type and version
func (d *Document) SchemaRef(msgType, version string) string {
	return d.base + schemaPointer(msgType, version)
}

// Resolve maps a schema reference to the compiled sub-schema it addresses.
//
// References must start with the document's root id. The remainder is either the
// short form "<type>/<version>" or a JSON pointer. Pointers under /schemas must
// address exactly one message type version; other pointers ("#/definitions/...")
// are compiled on demand.
func (d *Document) Resolve(schemaRef string) (*jsonschema.Schema, error) {
	if !strings.HasPrefix(schemaRef, d.rootID) {
		return nil, contracts.NewReferenceError(contracts.ReasonSchemaRootMismatch, schemaRef, nil)
	}

	fragment, versioned := d.fragment(schemaRef)
	if s, ok := d.compiled[fragment]; ok {
		return s, nil
	}
	if versioned {
		return nil, contracts.NewReferenceError(contracts.ReasonUnresolvedReference, schemaRef,
			fmt.Errorf("%w: no message schema at %s", errNotMessageSchema, fragment))
	}

	s, err := compileResource(d.formats, d.base, d.source, d.base+fragment)
	if err != nil {
		return nil, contracts.NewReferenceError(contracts.ReasonUnresolvedReference, schemaRef, err)
	}
	return s, nil
}

// MessageType returns the message type a reference resolves to, if it
// addresses one of the document's message schema versions
func (d *Document) MessageType(schemaRef string) (string, bool) {
	if !strings.HasPrefix(schemaRef, d.rootID) {
		return "", false
	}
	fragment, _ := d.fragment(schemaRef)
	msgType, ok := d.types[fragment]
	return msgType, ok
}

// fragment turns the part of a reference after the root id into a "#"-prefixed
// JSON pointer. versioned reports whether the pointer must name a message
// schema version: the bare root, the short form and anything under /schemas.
func (d *Document) fragment(schemaRef string) (string, bool) {
	rest := strings.TrimPrefix(schemaRef[len(d.rootID):], "#")
	if rest == "" {
		return "#", true
	}
	if strings.HasPrefix(rest, "/") {
		return "#" + rest, rest == "/schemas" || strings.HasPrefix(rest, "/schemas/")
	}

	msgType, version, ok := strings.Cut(rest, "/")
	if !ok || msgType == "" || version == "" || strings.Contains(version, "/") {
		return "#/schemas/" + rest, true
	}
	return schemaPointer(msgType, version), true
}

func baseURL(rootID string) string {
	base, _, _ := strings.Cut(rootID, "#")
	return base
}

package schema

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// HumanUUIDFormat is the name of the built-in lowercase hyphenated UUID format
const HumanUUIDFormat = "human-uuid"

// FormatPredicate reports whether a value satisfies a named string format
type FormatPredicate func(v interface{}) bool

// FormatRegistry maps format names to predicates.
//
// The table is copy-on-write: Register publishes a new table atomically and
// Check reads the current one without locking, so a registration
// happens-before every Check that observes it. Predicates are bound into
// documents when they are loaded; register custom formats before LoadDocument.
type FormatRegistry struct {
	table atomic.Pointer[map[string]FormatPredicate]
	mu    sync.Mutex
}

// NewFormatRegistry creates a registry seeded with the built-in formats
func NewFormatRegistry() *FormatRegistry {
	r := &FormatRegistry{}
	table := map[string]FormatPredicate{
		HumanUUIDFormat: IsHumanUUID,
	}
	r.table.Store(&table)
	return r
}

var defaultFormats = NewFormatRegistry()

// DefaultFormats returns the process-wide registry used when no registry is configured
func DefaultFormats() *FormatRegistry {
	return defaultFormats
}

// RegisterFormat registers a predicate on the process-wide registry
func RegisterFormat(name string, predicate FormatPredicate) {
	defaultFormats.Register(name, predicate)
}

// Register adds or replaces the predicate for a format name. Nil predicates are ignored.
func (r *FormatRegistry) Register(name string, predicate FormatPredicate) {
	if predicate == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.snapshot()
	next := make(map[string]FormatPredicate, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[name] = predicate
	r.table.Store(&next)
}

// Check evaluates a format. Unknown formats and non-string values pass.
func (r *FormatRegistry) Check(name string, v interface{}) bool {
	predicate, ok := r.snapshot()[name]
	if !ok {
		return true
	}
	return predicate.check(v)
}

// Names returns the registered format names in sorted order
func (r *FormatRegistry) Names() []string {
	table := r.snapshot()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *FormatRegistry) snapshot() map[string]FormatPredicate {
	return *r.table.Load()
}

// engineFormats adapts the current table to the structural engine's format hooks
func (r *FormatRegistry) engineFormats() map[string]func(interface{}) bool {
	table := r.snapshot()
	formats := make(map[string]func(interface{}) bool, len(table))
	for name, predicate := range table {
		formats[name] = predicate.check
	}
	return formats
}

func (p FormatPredicate) check(v interface{}) bool {
	if _, ok := v.(string); !ok {
		return true
	}
	return p(v)
}

// IsHumanUUID matches the canonical lowercase 8-4-4-4-12 UUID text form
func IsHumanUUID(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	if len(s) != 36 || strings.ToLower(s) != s {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

package contracts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MessageRoute maps a message type and major version to a publish topic.
// The routing table is also the set of schemas a deployment must provide.
type MessageRoute struct {
	MessageType  string `json:"type" yaml:"type" mapstructure:"type"`
	MajorVersion uint64 `json:"major" yaml:"major" mapstructure:"major"`
	Topic        string `json:"topic,omitempty" yaml:"topic,omitempty" mapstructure:"topic"`
}

// CoverageKey identifies a (message type, major version) pair
type CoverageKey struct {
	MessageType  string
	MajorVersion uint64
}

// String renders the key the way schema issues refer to it
func (k CoverageKey) String() string {
	return fmt.Sprintf("'%s' v%d", k.MessageType, k.MajorVersion)
}

// KeyFor builds the coverage key for a message type and a parsed version
func KeyFor(messageType string, version *semver.Version) CoverageKey {
	return CoverageKey{MessageType: messageType, MajorVersion: version.Major()}
}

// Key returns the coverage key of the route
func (r MessageRoute) Key() CoverageKey {
	return CoverageKey{MessageType: r.MessageType, MajorVersion: r.MajorVersion}
}

// IsValid checks if the route is usable
func (r MessageRoute) IsValid() bool {
	return r.MessageType != ""
}

// Matches checks if a full message version belongs to the route's major version
func (r MessageRoute) Matches(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Major() == r.MajorVersion
}

// ParseRoute parses "type:major" or "type:major=topic"
func ParseRoute(s string) (MessageRoute, error) {
	head, topic, _ := strings.Cut(s, "=")
	msgType, major, ok := strings.Cut(head, ":")
	if !ok || msgType == "" {
		return MessageRoute{}, fmt.Errorf("invalid route %q: expected type:major", s)
	}

	n, err := strconv.ParseUint(strings.TrimPrefix(major, "v"), 10, 64)
	if err != nil {
		return MessageRoute{}, fmt.Errorf("invalid route %q: major version: %w", s, err)
	}

	return MessageRoute{MessageType: msgType, MajorVersion: n, Topic: topic}, nil
}

// RouteTable is an ordered list of routes
type RouteTable []MessageRoute

// Coverage returns the distinct coverage keys of the table in declaration order
func (t RouteTable) Coverage() []CoverageKey {
	seen := make(map[CoverageKey]bool, len(t))
	keys := make([]CoverageKey, 0, len(t))
	for _, r := range t {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Lookup finds the route for a message type and full version
func (t RouteTable) Lookup(messageType, version string) (MessageRoute, bool) {
	for _, r := range t {
		if r.MessageType == messageType && r.Matches(version) {
			return r, true
		}
	}
	return MessageRoute{}, false
}

// Validate returns an error describing every unusable route
func (t RouteTable) Validate() error {
	var bad []string
	for i, r := range t {
		if !r.IsValid() {
			bad = append(bad, fmt.Sprintf("route %d: message type cannot be empty", i))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid message routing: %s", strings.Join(bad, "; "))
	}
	return nil
}

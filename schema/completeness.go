package schema

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/glimte/hedwig-go/contracts"
)

// versionKey is major.minor with an optional patch; no prefix, pre-release or build metadata
var versionKey = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// entry is one (message type, version) sub-schema of a document
type entry struct {
	msgType string
	version string
}

// checkDocument runs the shape and coverage checks over a decoded document.
// It never stops at the first problem: every issue is returned.
func checkDocument(root map[string]interface{}, coverage []contracts.CoverageKey) (string, []entry, []string) {
	var issues []string

	rootID := documentID(root)
	if rootID == "" {
		issues = append(issues, "invalid schema file: expected key 'id' with a non-empty string value")
	}

	found := make(map[contracts.CoverageKey]bool, len(coverage))
	for _, key := range coverage {
		found[key] = false
	}

	var entries []entry
	schemas, ok := root["schemas"].(map[string]interface{})
	if !ok || len(schemas) == 0 {
		issues = append(issues, "invalid schema file: expected key 'schemas' with non-empty value")
	}

	for _, msgType := range sortedKeys(schemas) {
		versions, ok := schemas[msgType].(map[string]interface{})
		if !ok || len(versions) == 0 {
			issues = append(issues, fmt.Sprintf(
				"invalid definition for message type '%s': value must contain a map of valid versions", msgType))
			continue
		}

		for _, version := range sortedKeys(versions) {
			parsed, err := semver.NewVersion(version)
			if err != nil || !versionKey.MatchString(version) {
				issues = append(issues, fmt.Sprintf("invalid version '%s' for message type '%s'", version, msgType))
				continue
			}

			key := contracts.KeyFor(msgType, parsed)
			if _, required := found[key]; required {
				found[key] = true
			}
			entries = append(entries, entry{msgType: msgType, version: version})
		}
	}

	for _, key := range coverage {
		if !found[key] {
			issues = append(issues, fmt.Sprintf("schema not found for %s", key))
		}
	}

	return rootID, entries, issues
}

func documentID(root map[string]interface{}) string {
	for _, key := range []string{"id", "$id"} {
		if id, ok := root[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

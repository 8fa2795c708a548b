package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRoute_Matches(t *testing.T) {
	route := MessageRoute{MessageType: "trip_created", MajorVersion: 1}

	tests := []struct {
		name     string
		version  string
		expected bool
	}{
		{"major only", "1", true},
		{"major minor", "1.0", true},
		{"full version", "1.2.3", true},
		{"other major", "2.0", false},
		{"zero major", "0.9", false},
		{"invalid version", "alpha", false},
		{"empty version", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, route.Matches(tt.version), "Version %s should match=%v", tt.version, tt.expected)
		})
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MessageRoute
		wantErr bool
	}{
		{"type and major", "user.created:1", MessageRoute{MessageType: "user.created", MajorVersion: 1}, false},
		{"v prefix", "user.created:v2", MessageRoute{MessageType: "user.created", MajorVersion: 2}, false},
		{"with topic", "user.created:1=dev-user-created", MessageRoute{MessageType: "user.created", MajorVersion: 1, Topic: "dev-user-created"}, false},
		{"missing major", "user.created", MessageRoute{}, true},
		{"empty type", ":1", MessageRoute{}, true},
		{"non numeric major", "user.created:one", MessageRoute{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoute(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteTable(t *testing.T) {
	table := RouteTable{
		{MessageType: "trip_created", MajorVersion: 1, Topic: "trip-created"},
		{MessageType: "trip_created", MajorVersion: 2, Topic: "trip-created-v2"},
		{MessageType: "trip_created", MajorVersion: 1, Topic: "trip-created-dup"},
		{MessageType: "vehicle_created", MajorVersion: 1},
	}

	t.Run("Coverage deduplicates in order", func(t *testing.T) {
		assert.Equal(t, []CoverageKey{
			{MessageType: "trip_created", MajorVersion: 1},
			{MessageType: "trip_created", MajorVersion: 2},
			{MessageType: "vehicle_created", MajorVersion: 1},
		}, table.Coverage())
	})

	t.Run("Lookup uses major version", func(t *testing.T) {
		route, ok := table.Lookup("trip_created", "2.4")
		require.True(t, ok)
		assert.Equal(t, "trip-created-v2", route.Topic)

		_, ok = table.Lookup("trip_created", "3.0")
		assert.False(t, ok)
	})

	t.Run("Validate reports empty types", func(t *testing.T) {
		assert.NoError(t, table.Validate())

		err := RouteTable{{MajorVersion: 1}}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "message type cannot be empty")
	})

	t.Run("CoverageKey string", func(t *testing.T) {
		assert.Equal(t, "'trip_created' v1", table[0].Key().String())
	})
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{
			name:  "nil slice returns (none)",
			items: nil,
			want:  "(none)",
		},
		{
			name:  "empty slice returns (none)",
			items: []string{},
			want:  "(none)",
		},
		{
			name:  "single item returns item",
			items: []string{"cpu"},
			want:  "cpu",
		},
		{
			name:  "multiple items joined with comma",
			items: []string{"cpu", "memory", "disk"},
			want:  "cpu, memory, disk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinOrNone(tt.items)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		def   string
		want  string
	}{
		{
			name:  "empty slice returns default",
			items: []string{},
			def:   "N/A",
			want:  "N/A",
		},
		{
			name:  "empty slice with empty default",
			items: []string{},
			def:   "",
			want:  "",
		},
		{
			name:  "items returned regardless of default",
			items: []string{"eth0", "wlan0"},
			def:   "default",
			want:  "eth0, wlan0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinOrDefault(tt.items, tt.def)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "cpu", 3},
		{"cpu", "", 3},
		{"disk", "disk", 0},
		{"disk", "dsik", 2},      // transposition (2 edits)
		{"cpu", "cpus", 1},       // insertion
		{"disks", "disk", 1},     // deletion
		{"gpu", "Gpu", 1},        // case difference
		{"kitten", "sitting", 3}, // classic example
		{"cpu", "gpu", 1},        // substitution
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"cpu", "memory", "disk", "network", "gpu", "processes"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "typo suggests correct",
			input:    "memry",
			expected: []string{"memory"},
		},
		{
			name:     "swapped letters",
			input:    "dsik",
			expected: []string{"disk"},
		},
		{
			name:     "missing char",
			input:    "netwrk",
			expected: []string{"network"},
		},
		{
			name:     "near both suggests both in candidate order",
			input:    "gpus",
			expected: []string{"cpu", "gpu"},
		},
		{
			name:     "no close match returns nil",
			input:    "xyz",
			expected: nil,
		},
		{
			name:     "empty input returns nil",
			input:    "",
			expected: nil,
		},
		{
			name:     "case insensitive",
			input:    "MEMORY",
			expected: []string{"memory"},
		},
		{
			name:     "exact match returns it",
			input:    "disk",
			expected: []string{"disk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SuggestSimilar(tt.input, candidates, 3)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	result := SuggestSimilar("cpu", nil, 3)
	assert.Nil(t, result)

	result = SuggestSimilar("cpu", []string{}, 3)
	assert.Nil(t, result)
}

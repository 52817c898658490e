package resolver

import "testing"

func TestCleanWikipediaLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"piped wikilink keeps target", "[[Seattle, Washington|Seattle]]", "Seattle, Washington"},
		{"plain wikilink", "[[Manchester]]", "Manchester"},
		{"strips template", "{{nowrap|Los Angeles}}, California", ", California"},
		{"strips html tags", "<span>Tokyo</span>, Japan", "Tokyo, Japan"},
		{"nbsp becomes space", "New York", "New York"},
		{"collapses whitespace", "Paris,    France", "Paris, France"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanWikipediaLocation(tt.in); got != tt.want {
				t.Errorf("CleanWikipediaLocation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drops middle layers", "West Reading, Berks County, Pennsylvania, United States", "West Reading, United States"},
		{"two segments unchanged", "Perth, Australia", "Perth, Australia"},
		{"single segment passthrough", "Unknown", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDisplayName(tt.in); got != tt.want {
				t.Errorf("NormalizeDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

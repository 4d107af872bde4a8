package model

import "testing"

func TestFilter_Match(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name string
		want bool
	}{
		{"notes.md", true},
		{"README.md", true},
		{"draft.tmp", false},     // wrong extension
		{"old.bak", false},       // wrong extension
		{"script.py", false},     // not included
		{".hidden.md", false},    // matches ".*"
		{"notes.md.bak", false},  // matches "*.bak"
		{"meeting-2024.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Match(tt.name); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFilter_ExcludeBeatsInclude(t *testing.T) {
	f := Filter{
		IncludeExtensions: []string{".md", ".tmp"},
		ExcludePatterns:   []string{"*.tmp"},
	}

	if f.Match("draft.tmp") {
		t.Error("exclude pattern *.tmp should win over extension match")
	}
	if !f.Match("draft.md") {
		t.Error("draft.md should qualify")
	}
}

func TestFilter_GlobClasses(t *testing.T) {
	f := Filter{
		IncludeExtensions: []string{".md"},
		ExcludePatterns:   []string{"draft-[0-9].md", "wip?.md"},
	}

	if f.Match("draft-3.md") {
		t.Error("character class pattern should exclude draft-3.md")
	}
	if f.Match("wip1.md") {
		t.Error("? pattern should exclude wip1.md")
	}
	if !f.Match("draft-final.md") {
		t.Error("draft-final.md should qualify")
	}
}

func TestFilter_MalformedPatternIgnored(t *testing.T) {
	f := Filter{
		IncludeExtensions: []string{".md"},
		ExcludePatterns:   []string{"[", "*.tmp"},
	}

	if !f.Match("a.md") {
		t.Error("malformed exclude pattern must not exclude everything")
	}
}

func TestFilter_NoIncludesMatchesNothing(t *testing.T) {
	f := Filter{}
	if f.Match("a.md") {
		t.Error("empty include list should match nothing")
	}
}

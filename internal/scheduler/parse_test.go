package scheduler

import (
	"strings"
	"testing"
)

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"seconds", "add 45s tea", 45},
		{"minutes", "add 10m tea", 600},
		{"hours", "add 2h tea", 7200},
		{"days", "add 3d tea", 3 * 86400},
		{"combined", "add 1h30m tea", 5400},
		{"order independent", "add 30m 1h tea", 5400},
		{"all units", "add 1d2h3m4s x", 86400 + 7200 + 180 + 4},
		{"reversed units", "add 4s3m2h1d x", 86400 + 7200 + 180 + 4},
		{"mixed with words", "add 10m30s reminder", 630},
		{"no tokens", "add reminder", 0},
		{"empty", "", 0},
		{"two digit max", "add 99s x", 99},
		{"three digit seconds keeps last two", "add 123s x", 23},
		{"three digit days", "add 365d x", 365 * 86400},
		{"first match only", "add 5s 7s x", 5},
		{"zero", "add 0s label", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSeconds(tt.text); got != tt.want {
				t.Errorf("ParseSeconds(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseLabel_Offset(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"add 10m tea", "10m tea"},
		{"add ", ""},
		{"add", ""},
		{"", ""},
		{"xxxxhello", "hello"},
		{"add ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		if got := ParseLabel(tt.text, LabelOffset); got != tt.want {
			t.Errorf("ParseLabel(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseLabel_Truncated(t *testing.T) {
	long := "add " + strings.Repeat("a", 600)
	got := ParseLabel(long, LabelOffset)
	if len([]rune(got)) != MaxLabelLength {
		t.Fatalf("expected %d characters, got %d", MaxLabelLength, len([]rune(got)))
	}

	got = ParseLabel("1s "+strings.Repeat("b", 600), LabelStrip)
	if len([]rune(got)) != MaxLabelLength {
		t.Fatalf("expected %d characters in strip mode, got %d", MaxLabelLength, len([]rune(got)))
	}
}

func TestParseLabel_Strip(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"2s test", "test"},
		{"10m30s  make   tea", "make tea"},
		{"tea 1h", "tea"},
		{"no duration here", "no duration here"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseLabel(tt.text, LabelStrip); got != tt.want {
			t.Errorf("ParseLabel(%q, strip) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseLabelMode(t *testing.T) {
	for in, want := range map[string]LabelMode{
		"":        LabelOffset,
		"offset":  LabelOffset,
		"STRIP":   LabelStrip,
		" strip ": LabelStrip,
	} {
		got, err := ParseLabelMode(in)
		if err != nil {
			t.Fatalf("ParseLabelMode(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLabelMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLabelMode("tokens"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

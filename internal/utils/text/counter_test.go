package text_test

import (
	"testing"
	"unicode/utf8"

	"literary-analysis/internal/utils/text"
)

func TestCountRunes(t *testing.T) {
	for in, want := range map[string]int{
		"":             0,
		"hello world":  11,
		"canción":      7,
		"año":          3,
		"Hello👋":       6,
		"naïve café ∑": 12,
	} {
		if got := text.CountRunes(in); got != want {
			t.Errorf("CountRunes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"canción", 6, "canció"},
		{"👋👋👋", 2, "👋👋"},
		{"abc", 0, ""},
		{"abc", -1, ""},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := text.TruncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func FuzzTruncateRunes(f *testing.F) {
	f.Add("canción de cuna", 6)
	f.Add("👋 hi", 1)
	f.Add("", 4)
	f.Fuzz(func(t *testing.T, s string, n int) {
		if !utf8.ValidString(s) {
			t.Skip()
		}
		got := text.TruncateRunes(s, n)
		if !utf8.ValidString(got) {
			t.Fatalf("TruncateRunes(%q, %d) split a rune: %q", s, n, got)
		}
		want := min(max(n, 0), text.CountRunes(s))
		if c := text.CountRunes(got); c != want {
			t.Fatalf("TruncateRunes(%q, %d) kept %d runes, want %d", s, n, c, want)
		}
	})
}

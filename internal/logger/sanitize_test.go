package logger

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 10, want: ""},
		{name: "plain", input: "hello", maxLength: 10, want: "hello"},
		{name: "control characters removed", input: "a\x00b\x1bc", maxLength: 10, want: "abc"},
		{name: "newlines kept", input: "a\nb", maxLength: 10, want: "a\nb"},
		{name: "truncated", input: "abcdefghij", maxLength: 4, want: "abcd..."},
		{name: "invalid utf8 repaired", input: "a\xffb", maxLength: 10, want: "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizeString_DoesNotSplitRunes(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("é", 10) // two bytes per rune
	got := SanitizeString(input, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("Expected valid UTF-8, got %q", got)
	}
	if got != "éé..." {
		t.Errorf("Expected %q, got %q", "éé...", got)
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}
	if got := SanitizeError(errors.New("boom\x07")); got != "boom" {
		t.Errorf("Expected %q, got %q", "boom", got)
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "short", want: "****"},
		{input: "eyJhbGciOiJIUzI1NiJ9.payload.sig1234", want: "****1234"},
	}

	for _, tt := range tests {
		if got := MaskToken(tt.input); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package parser

import (
	"strings"
	"testing"
)

func TestNormalizeAltText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain text passes through",
			input:    "A dog playing in the park",
			expected: "A dog playing in the park",
		},
		{
			name:     "Surrounding whitespace is trimmed",
			input:    "  A sunset over the ocean \n",
			expected: "A sunset over the ocean",
		},
		{
			name:     "Empty input yields sentinel",
			input:    "",
			expected: EmptySentinel,
		},
		{
			name:     "Whitespace-only input yields sentinel",
			input:    " \t\n ",
			expected: EmptySentinel,
		},
		{
			name:     "Double quote pair is stripped",
			input:    `"A cat on a mat."`,
			expected: "A cat on a mat.",
		},
		{
			name:     "Single quote pair is stripped",
			input:    "'A red bicycle'",
			expected: "A red bicycle",
		},
		{
			name:     "Whitespace then quote pair",
			input:    ` "A cat on a mat." `,
			expected: "A cat on a mat.",
		},
		{
			name:     "Mismatched quotes stay",
			input:    `"A quote'`,
			expected: `"A quote'`,
		},
		{
			name:     "Only the outer pair is stripped",
			input:    `""nested""`,
			expected: `"nested"`,
		},
		{
			name:     "Interior quotes survive",
			input:    `A sign reading "open"`,
			expected: `A sign reading "open"`,
		},
		{
			name:     "Bare quote pair yields sentinel",
			input:    `""`,
			expected: EmptySentinel,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeAltText(tc.input)
			if got != tc.expected {
				t.Errorf("NormalizeAltText(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeAltTextTruncation(t *testing.T) {
	input := strings.Repeat("a", 140)
	got := NormalizeAltText(input)

	if len(got) != MaxAltTextLength {
		t.Errorf("normalized length = %d, want %d", len(got), MaxAltTextLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("normalized text %q does not end with ellipsis", got)
	}
	if got[:122] != input[:122] {
		t.Errorf("truncation did not keep the first 122 characters")
	}
}

func TestNormalizeAltTextBoundary(t *testing.T) {
	// Exactly at the ceiling: no truncation
	input := strings.Repeat("b", MaxAltTextLength)
	if got := NormalizeAltText(input); got != input {
		t.Errorf("text of exactly %d chars was modified", MaxAltTextLength)
	}

	// One over: truncated
	input = strings.Repeat("b", MaxAltTextLength+1)
	got := NormalizeAltText(input)
	if len(got) != MaxAltTextLength {
		t.Errorf("normalized length = %d, want %d", len(got), MaxAltTextLength)
	}
}

func TestNormalizeAltTextNeverEmptyNeverLong(t *testing.T) {
	inputs := []string{
		"", "   ", `""`, "''", "x", strings.Repeat("long ", 100),
		`"` + strings.Repeat("q", 200) + `"`,
	}
	for _, input := range inputs {
		got := NormalizeAltText(input)
		if got == "" {
			t.Errorf("NormalizeAltText(%q) returned empty string", input)
		}
		if n := len([]rune(got)); n > MaxAltTextLength {
			t.Errorf("NormalizeAltText(%q) returned %d chars, want <= %d", input, n, MaxAltTextLength)
		}
	}
}

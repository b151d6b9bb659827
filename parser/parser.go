package parser

import (
	"strings"
)

const (
	// MaxAltTextLength is the hard ceiling on a stored description.
	MaxAltTextLength = 125

	// truncateAt leaves room for the ellipsis marker.
	truncateAt = 122

	ellipsis = "..."

	// EmptySentinel substitutes for responses that contain nothing usable.
	EmptySentinel = "No alt text generated"
)

// NormalizeAltText turns a raw model response into a storable alt text.
// Steps, in order: trim surrounding whitespace, substitute a sentinel for
// empty output, strip one matching outer pair of straight quotes, and
// truncate to MaxAltTextLength characters with an ellipsis marker.
// The result is never empty and never longer than MaxAltTextLength.
func NormalizeAltText(raw string) string {
	altText := strings.TrimSpace(raw)
	if altText == "" {
		return EmptySentinel
	}

	if len(altText) >= 2 {
		first := altText[0]
		last := altText[len(altText)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			altText = altText[1 : len(altText)-1]
		}
	}
	if altText == "" {
		return EmptySentinel
	}

	if runes := []rune(altText); len(runes) > MaxAltTextLength {
		altText = string(runes[:truncateAt]) + ellipsis
	}

	return altText
}

package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

const keycapMark = '\u20E3'

// ValidateIcon requires exactly one emoji, counted as a single grapheme cluster so
// ZWJ sequences, skin tones, flags and keycaps are accepted.
func ValidateIcon(icon string) error {
	if icon == "" {
		return &Error{Field: "icon", Message: "icon is required"}
	}

	if uniseg.GraphemeClusterCount(icon) != 1 {
		return &Error{Field: "icon", Message: "icon must be a single emoji"}
	}

	if !isEmoji(icon) {
		return &Error{Field: "icon", Message: "icon must be an emoji"}
	}

	return nil
}

func isEmoji(cluster string) bool {
	if strings.ContainsRune(cluster, keycapMark) {
		return true
	}

	first, _ := utf8.DecodeRuneInString(cluster)
	return unicode.Is(unicode.So, first) || isRegionalIndicator(first)
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1F1E6 && r <= 0x1F1FF
}

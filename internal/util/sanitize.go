package util

import (
	"regexp"
	"strings"
)

var (
	nonAlphaNum  = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	sheetInvalid = regexp.MustCompile(`[\[\]:*?/\\]`)
)

// maxSheetName is Excel's limit on worksheet name length.
const maxSheetName = 31

// Slug converts a device or profile name into a lowercase token safe for
// file names, e.g. "Cart A / iPad 14" becomes "cart-a-ipad-14".
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = nonAlphaNum.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return "unknown"
	}
	return s
}

// SanitizeSheetName strips characters Excel rejects in worksheet names and
// truncates to 31 characters.
func SanitizeSheetName(s string) string {
	s = sheetInvalid.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), "'")
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

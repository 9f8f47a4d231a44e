package model

import "strings"

// PadAssetTag left-pads tag with zeros to width when it starts with prefix.
// Tags that do not match the prefix, or are already wide enough, are
// returned unchanged along with false.
func PadAssetTag(tag, prefix string, width int) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" || !strings.HasPrefix(tag, prefix) || len(tag) >= width {
		return tag, false
	}
	return strings.Repeat("0", width-len(tag)) + tag, true
}

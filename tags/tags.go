// Package tags scans text for inline "#label" tokens.
//
// A tag is a '#' followed by one or more CJK ideographs (U+4E00 to U+9FA5),
// ASCII letters or ASCII digits. Extract keeps every occurrence in scan order,
// including duplicates, with the leading '#'.
//
// Example usage:
//
//	tags.Extract("笔记 #工作 内容 #life2") // ["#工作", "#life2"]
package tags

import "regexp"

var tagPattern = regexp.MustCompile(`#[\x{4e00}-\x{9fa5}a-zA-Z0-9]+`)

// Extract returns every tag in source in order of appearance. The result is
// never nil.
func Extract(source string) []string {
	found := tagPattern.FindAllString(source, -1)
	if found == nil {
		return []string{}
	}
	return found
}

// Unique returns tags with later duplicates removed, keeping first-appearance
// order. Comparison is exact; no case folding.
func Unique(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

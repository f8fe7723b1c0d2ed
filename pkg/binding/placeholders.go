package binding

import "regexp"

// placeholderPattern matches <name> tokens non-greedily.
var placeholderPattern = regexp.MustCompile(`<(.+?)>`)

// wildcardGroup replaces every placeholder when an assignment pattern is built.
const wildcardGroup = `(.*?)`

// Placeholders returns the names found between '<' and the nearest following
// '>' in text, left to right. Repeated names are kept every time they appear.
func Placeholders(text string) []string {
	names := make([]string, 0)
	if text == "" {
		return names
	}

	for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		names = append(names, match[1])
	}

	return names
}

// AssignmentPattern rewrites every <name> placeholder of a declared pattern
// into a non-greedy capture group. The remaining text is left as a regular
// expression.
func AssignmentPattern(pattern string) string {
	return placeholderPattern.ReplaceAllLiteralString(pattern, wildcardGroup)
}

package rules

import (
	"regexp"
	"strings"
)

// fieldPattern matches a name/ps assignment followed by a quoted value.
// Groups: 1 prefix, 2 key, 3 separator, 4 double-quoted value, 5 single-quoted value.
// The key may itself be quoted ("ps": "...") and must start a record or follow
// a separator, so keys such as servername: are left alone.
var fieldPattern = regexp.MustCompile(`((?:^|[\s{,\[\-])"?)(name|ps)("?[ \t]*:[ \t]*)(?:"([^"\n]*)"|'([^'\n]*)')`)

// uniqueSuffix matches the _N the uniqueness rule appends; N never has a
// leading zero, so names such as US_Los_Angeles_01 keep their full length.
var uniqueSuffix = regexp.MustCompile(`_[1-9]\d*$`)

// fieldFunc receives the key and value of a field and returns the new value
// and whether it should replace the old one.
type fieldFunc func(key, value string) (string, bool)

// rewriteFields applies fn to every quoted name/ps value in text. Only the
// bytes between the quotes are replaced.
func rewriteFields(text string, fn fieldFunc) (string, int) {
	matches := fieldPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	last, hits := 0, 0
	for _, m := range matches {
		start, end := m[8], m[9]
		if start < 0 {
			start, end = m[10], m[11]
		}
		value := text[start:end]
		replaced, ok := fn(text[m[4]:m[5]], value)
		if !ok || replaced == value {
			continue
		}
		if hits == 0 {
			b.Grow(len(text))
		}
		b.WriteString(text[last:start])
		b.WriteString(replaced)
		last = end
		hits++
	}
	if hits == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), hits
}

// FieldValues returns the quoted name/ps values of text in order.
func FieldValues(text string) []string {
	var values []string
	for _, m := range fieldPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[8] >= 0 {
			values = append(values, text[m[8]:m[9]])
			continue
		}
		values = append(values, text[m[10]:m[11]])
	}
	return values
}

// stripUniqueSuffix removes a trailing _N added by the uniqueness rule.
func stripUniqueSuffix(value string) string {
	return uniqueSuffix.ReplaceAllString(value, "")
}

// isPlaceholder reports whether value is one of the placeholders, ignoring
// surrounding whitespace and a uniqueness suffix.
func isPlaceholder(value string, placeholders []string) bool {
	base := stripUniqueSuffix(strings.TrimSpace(value))
	for _, p := range placeholders {
		if base == p {
			return true
		}
	}
	return false
}

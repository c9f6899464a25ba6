package rules

import (
	"regexp"
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// tokenMatcher does case-insensitive substring matching against a denylist.
// Tokens and candidates go through the same folding normalizer.
type tokenMatcher struct {
	folder ports.Normalizer
	tokens []string
}

func newTokenMatcher(folder ports.Normalizer, tokens []string) tokenMatcher {
	tm := tokenMatcher{folder: folder}
	for _, t := range tokens {
		if f := tm.fold(t); f != "" {
			tm.tokens = append(tm.tokens, f)
		}
	}
	return tm
}

func (tm tokenMatcher) fold(s string) string {
	if tm.folder == nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return tm.folder.Normalize(strings.TrimSpace(s))
}

// match returns the first token found in value.
func (tm tokenMatcher) match(value string) (string, bool) {
	if len(tm.tokens) == 0 {
		return "", false
	}
	key := tm.fold(value)
	for _, t := range tm.tokens {
		if strings.Contains(key, t) {
			return t, true
		}
	}
	return "", false
}

// replaceSubmatchFunc is regexp.ReplaceAllStringFunc with access to the
// submatches. fn returns the replacement and whether the match was rewritten.
func replaceSubmatchFunc(re *regexp.Regexp, text string, fn func(groups []string) (string, bool)) (string, int) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	last, hits := 0, 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		replaced, ok := fn(groups)
		if !ok {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(replaced)
		last = m[1]
		hits++
	}
	if hits == 0 {
		return text, 0
	}
	b.WriteString(text[last:])
	return b.String(), hits
}

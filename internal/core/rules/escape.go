package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"
	"unicode/utf16"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// escapePattern prefers a high/low surrogate pair over single escapes so a
// pair is never split by a preceding escape.
// Groups: 1 high, 2 low, 3 single.
var escapePattern = regexp.MustCompile(`\\u([dD][89abAB][0-9a-fA-F]{2})\\u([dD][c-fC-F][0-9a-fA-F]{2})|\\u([0-9a-fA-F]{4})`)

// DecodeCodePoint decodes the 4 hex digits of a \uXXXX escape. It fails for
// malformed input, lone surrogates and runes that would change the syntax
// of a record: C0 controls, DEL, backslash and both quote characters.
func DecodeCodePoint(hex string) (rune, bool) {
	if len(hex) != 4 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, false
	}
	r := rune(v)
	if utf16.IsSurrogate(r) || !decodable(r) {
		return 0, false
	}
	return r, true
}

// DecodeSurrogatePair decodes a high/low surrogate escape pair.
func DecodeSurrogatePair(high, low string) (rune, bool) {
	hv, err := strconv.ParseUint(high, 16, 16)
	if err != nil {
		return 0, false
	}
	lv, err := strconv.ParseUint(low, 16, 16)
	if err != nil {
		return 0, false
	}
	r := utf16.DecodeRune(rune(hv), rune(lv))
	if r == unicode.ReplacementChar || !decodable(r) {
		return 0, false
	}
	return r, true
}

// EncodeCodePoint is the inverse of DecodeCodePoint for BMP runes.
func EncodeCodePoint(r rune) string {
	return fmt.Sprintf(`\u%04x`, r)
}

func decodable(r rune) bool {
	switch {
	case r < 0x20, r == 0x7f:
		return false
	case r == '\\', r == '"', r == '\'':
		return false
	}
	return true
}

// EscapeRule decodes \uXXXX escapes in place.
type EscapeRule struct{}

func NewEscapeRule() *EscapeRule {
	return &EscapeRule{}
}

func (r *EscapeRule) Name() string        { return "escape-decode" }
func (r *EscapeRule) Scope() domain.Scope { return domain.ScopeBuffer }

func (r *EscapeRule) Apply(text string, state *domain.State) (string, int) {
	return replaceSubmatchFunc(escapePattern, text, func(groups []string) (string, bool) {
		if groups[1] != "" {
			if cp, ok := DecodeSurrogatePair(groups[1], groups[2]); ok {
				return string(cp), true
			}
			state.RecordDecodeFailure()
			return "", false
		}
		return decodeOrKeep(groups[3], state)
	})
}

// decodeOrKeep returns the decoded rune, or the escape itself when it
// cannot be decoded.
func decodeOrKeep(hex string, state *domain.State) (string, bool) {
	cp, ok := DecodeCodePoint(hex)
	if !ok {
		state.RecordDecodeFailure()
		return `\u` + hex, false
	}
	return string(cp), true
}

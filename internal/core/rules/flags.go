package rules

import (
	"encoding/json"
	"regexp"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// Regional indicator symbols are U+1F1E6..U+1F1FF; two of them render as a flag.
const indicatorHex = `(?:[eE][6-9a-fA-F]|[fF][0-9a-fA-F])`

var (
	quotedFlagPattern  = regexp.MustCompile(`"(?:\\\\U0001[fF]1` + indicatorHex + `){2}"`)
	doubleFlagPattern  = regexp.MustCompile(`(?:\\\\U0001[fF]1` + indicatorHex + `){2}`)
	singleFlagPattern  = regexp.MustCompile(`(?:\\U0001[fF]1` + indicatorHex + `){2}`)
	utf16FlagPattern   = regexp.MustCompile(`(?:\\u[dD]83[cC]\\u[dD][dD]` + indicatorHex + `){2}`)
	literalFlagPattern = regexp.MustCompile(`[\x{1F1E6}-\x{1F1FF}]{2}`)
	singleFlagExact    = regexp.MustCompile(`^` + singleFlagPattern.String() + `$`)
)

// QuotedFlagRule replaces a quoted literal holding an escaped flag pair,
// such as "\\U0001F1FA\\U0001F1F8", with the quoted country marker.
type QuotedFlagRule struct {
	marker string
}

func NewQuotedFlagRule(marker string) *QuotedFlagRule {
	return &QuotedFlagRule{marker: marker}
}

func (r *QuotedFlagRule) Name() string        { return "flag-quoted" }
func (r *QuotedFlagRule) Scope() domain.Scope { return domain.ScopeBuffer }

// Apply decodes each literal first; literals that do not decode to an
// escaped flag pair are left as they are.
func (r *QuotedFlagRule) Apply(text string, state *domain.State) (string, int) {
	return replaceSubmatchFunc(quotedFlagPattern, text, func(groups []string) (string, bool) {
		var decoded string
		if err := json.Unmarshal([]byte(groups[0]), &decoded); err != nil {
			state.RecordDecodeFailure()
			return "", false
		}
		if !singleFlagExact.MatchString(decoded) {
			return "", false
		}
		return `"` + r.marker + `"`, true
	})
}

// FlagRule replaces every match of one flag encoding with the country marker.
type FlagRule struct {
	name    string
	pattern *regexp.Regexp
	marker  string
}

// NewEscapedFlagRules returns the flag rules for the doubly escaped, singly
// escaped, UTF-16 escaped and literal encodings, in that order.
func NewEscapedFlagRules(marker string) []*FlagRule {
	return []*FlagRule{
		{name: "flag-double-escaped", pattern: doubleFlagPattern, marker: marker},
		{name: "flag-escaped", pattern: singleFlagPattern, marker: marker},
		{name: "flag-utf16", pattern: utf16FlagPattern, marker: marker},
		{name: "flag-literal", pattern: literalFlagPattern, marker: marker},
	}
}

func (r *FlagRule) Name() string        { return r.name }
func (r *FlagRule) Scope() domain.Scope { return domain.ScopeBuffer }

func (r *FlagRule) Apply(text string, _ *domain.State) (string, int) {
	n := len(r.pattern.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return r.pattern.ReplaceAllLiteralString(text, r.marker), n
}

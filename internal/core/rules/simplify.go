package rules

import (
	"unicode/utf8"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// SimplifyRule replaces name/ps values that are too long or contain a
// simplify token with the placeholder.
type SimplifyRule struct {
	threshold    int
	placeholder  string
	placeholders []string
	tokens       tokenMatcher
}

func NewSimplifyRule(opts Options, tokens tokenMatcher) *SimplifyRule {
	return &SimplifyRule{
		threshold:    opts.Threshold,
		placeholder:  opts.Placeholder,
		placeholders: opts.placeholders(),
		tokens:       tokens,
	}
}

func (r *SimplifyRule) Name() string        { return "field-simplify" }
func (r *SimplifyRule) Scope() domain.Scope { return domain.ScopeField }

func (r *SimplifyRule) Apply(text string, _ *domain.State) (string, int) {
	return rewriteFields(text, func(_, value string) (string, bool) {
		if value == "" || isPlaceholder(value, r.placeholders) {
			return value, false
		}
		if utf8.RuneCountInString(stripUniqueSuffix(value)) > r.threshold {
			return r.placeholder, true
		}
		if _, ok := r.tokens.match(value); ok {
			return r.placeholder, true
		}
		return value, false
	})
}

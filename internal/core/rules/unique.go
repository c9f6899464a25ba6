package rules

import (
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// UniqueRule makes name/ps values unique within one run by appending _N to
// repeated values. name and ps share the counter held by the State.
type UniqueRule struct{}

func NewUniqueRule() *UniqueRule {
	return &UniqueRule{}
}

func (r *UniqueRule) Name() string        { return "field-unique" }
func (r *UniqueRule) Scope() domain.Scope { return domain.ScopeField }

func (r *UniqueRule) Apply(text string, state *domain.State) (string, int) {
	return rewriteFields(text, func(_, value string) (string, bool) {
		if strings.TrimSpace(value) == "" {
			return value, false
		}
		unique := state.Unique(value)
		return unique, unique != value
	})
}

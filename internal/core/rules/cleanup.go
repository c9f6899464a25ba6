package rules

import (
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// CleanupRule collapses whitespace in values holding a placeholder so a
// second run sees exactly the placeholder.
type CleanupRule struct {
	placeholders []string
}

func NewCleanupRule(opts Options) *CleanupRule {
	return &CleanupRule{placeholders: opts.placeholders()}
}

func (r *CleanupRule) Name() string        { return "placeholder-cleanup" }
func (r *CleanupRule) Scope() domain.Scope { return domain.ScopeField }

func (r *CleanupRule) Apply(text string, _ *domain.State) (string, int) {
	return rewriteFields(text, func(_, value string) (string, bool) {
		if !r.holdsPlaceholder(value) {
			return value, false
		}
		collapsed := strings.Join(strings.Fields(value), " ")
		return collapsed, collapsed != value
	})
}

func (r *CleanupRule) holdsPlaceholder(value string) bool {
	for _, p := range r.placeholders {
		if strings.Contains(value, p) {
			return true
		}
	}
	return false
}

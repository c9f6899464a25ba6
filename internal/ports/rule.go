package ports

import "github.com/baditaflorin/go_subs_normalize/internal/core/domain"

// Rule is a single rewrite step of the normalization pipeline.
type Rule interface {
	// Name identifies the rule in diagnostics.
	Name() string
	// Scope reports whether the rule sees the whole text or field values only.
	Scope() domain.Scope
	// Apply rewrites text and returns the result and the number of rewrites.
	Apply(text string, state *domain.State) (string, int)
}

// TextTransformer runs an ordered rule set over a buffer.
type TextTransformer interface {
	Transform(text string, state *domain.State) domain.Result
}

package normalizer

import (
	"github.com/baditaflorin/go_subs_normalize/internal/adapters/logger"
	"github.com/baditaflorin/go_subs_normalize/internal/core/pipeline"
	"github.com/baditaflorin/go_subs_normalize/internal/core/rules"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// DefaultNormalizer implements the default subscription normalization strategy.
type DefaultNormalizer struct {
	engine *pipeline.Engine
}

// NewDefaultNormalizer creates a normalizer running the canonical rule set.
func NewDefaultNormalizer(lg ports.Logger) (ports.Normalizer, error) {
	return NewRuleNormalizer(rules.DefaultOptions(), lg)
}

// NewRuleNormalizer creates a normalizer for the given rule options. A nil
// logger discards everything.
func NewRuleNormalizer(opts rules.Options, lg ports.Logger) (*DefaultNormalizer, error) {
	if lg == nil {
		lg = logger.NewNopLogger()
	}
	list, err := rules.Build(opts, NewFoldNormalizer())
	if err != nil {
		return nil, err
	}
	engine, err := pipeline.NewEngine(pipeline.EngineConfig{Rules: list}, lg)
	if err != nil {
		return nil, err
	}
	return &DefaultNormalizer{engine: engine}, nil
}

// Engine exposes the underlying rule engine.
func (n *DefaultNormalizer) Engine() *pipeline.Engine {
	return n.engine
}

// Normalize decodes escapes and rewrites noisy name/ps values.
func (n *DefaultNormalizer) Normalize(text string) string {
	return n.engine.Normalize(text)
}

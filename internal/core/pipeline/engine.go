package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// EngineConfig holds configuration for the rule engine.
type EngineConfig struct {
	Name  string
	Rules []ports.Rule
}

// Validate checks if the configuration is valid.
func (c EngineConfig) Validate() error {
	if len(c.Rules) == 0 {
		return errors.New("at least one rule is required")
	}
	seen := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if r == nil {
			return fmt.Errorf("rule %d is nil", i)
		}
		if seen[r.Name()] {
			return fmt.Errorf("duplicate rule name %q", r.Name())
		}
		seen[r.Name()] = true
	}
	return nil
}

// Engine applies an ordered rule list to a text buffer. Rules run one after
// another over the whole buffer; each rule sees the output of the previous.
type Engine struct {
	config EngineConfig
	logger ports.Logger
}

// NewEngine creates a new rule engine.
func NewEngine(config EngineConfig, logger ports.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.Name == "" {
		config.Name = "subs_normalize"
	}

	return &Engine{
		config: config,
		logger: logger,
	}, nil
}

// RuleNames returns the rule names in application order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.config.Rules))
	for i, r := range e.config.Rules {
		names[i] = r.Name()
	}
	return names
}

// Run normalizes text with a fresh State.
func (e *Engine) Run(ctx context.Context, text string) domain.Result {
	select {
	case <-ctx.Done():
		e.logger.Error("Normalization cancelled", "error", ctx.Err())
		return domain.Result{
			Name:        e.config.Name,
			Output:      text,
			InputBytes:  len(text),
			OutputBytes: len(text),
			Details:     map[string]interface{}{"error": "normalization cancelled"},
		}
	default:
	}
	return e.Transform(text, domain.NewState())
}

// Transform applies every rule to text using the given State. Callers
// processing one logical document in pieces pass the same State to every
// piece so uniqueness holds across the document.
func (e *Engine) Transform(text string, state *domain.State) domain.Result {
	start := time.Now()
	hits := make(map[string]int, len(e.config.Rules))
	failuresBefore := state.DecodeFailures()

	out := text
	for _, r := range e.config.Rules {
		next, n := r.Apply(out, state)
		if n > 0 {
			hits[r.Name()] += n
			e.logger.Debug("Rule applied",
				"rule", r.Name(),
				"scope", r.Scope().String(),
				"hits", n,
			)
		}
		out = next
	}

	result := domain.Result{
		Name:           e.config.Name,
		Output:         out,
		Changed:        out != text,
		InputBytes:     len(text),
		OutputBytes:    len(out),
		RuleHits:       hits,
		DecodeFailures: state.DecodeFailures() - failuresBefore,
		Duration:       time.Since(start),
		Details: map[string]interface{}{
			"rules":       strings.Join(e.RuleNames(), ","),
			"unique_seen": state.Emitted(),
		},
	}
	return result
}

// Normalize implements ports.Normalizer.
func (e *Engine) Normalize(text string) string {
	return e.Transform(text, domain.NewState()).Output
}

package domain

import "time"

// Scope tells the engine which part of the text a rule may touch.
type Scope int

const (
	// ScopeBuffer rules see the whole buffer (or line, when streaming).
	ScopeBuffer Scope = iota
	// ScopeField rules only see quoted name/ps values.
	ScopeField
)

// String returns the scope name used in logs.
func (s Scope) String() string {
	switch s {
	case ScopeBuffer:
		return "buffer"
	case ScopeField:
		return "field"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a normalization run.
type Result struct {
	Name           string
	Output         string
	Changed        bool
	InputBytes     int
	OutputBytes    int
	RuleHits       map[string]int
	DecodeFailures int
	Duration       time.Duration
	Details        map[string]interface{}
}

// Hits returns the total number of rewrites across all rules.
func (r Result) Hits() int {
	total := 0
	for _, n := range r.RuleHits {
		total += n
	}
	return total
}

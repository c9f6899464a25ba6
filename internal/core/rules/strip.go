package rules

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

var (
	ipv4Pattern       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	domainPattern     = regexp.MustCompile(`(?i)\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,24}\b`)
	ratePattern       = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*[KMG]B/s`)
	pipePrefixPattern = regexp.MustCompile(`^\s*\d+\s*\|[^|]*\|`)
)

// StripRule replaces name/ps values carrying provider tokens, addresses,
// domains, rate tokens, pipe-numbered prefixes or decorative symbols with
// the placeholder. Return tokens map to the return placeholder instead.
type StripRule struct {
	placeholder       string
	returnPlaceholder string
	placeholders      []string
	tokens            tokenMatcher
	returnTokens      tokenMatcher
	symbols           string
}

func NewStripRule(opts Options, tokens, returnTokens tokenMatcher) *StripRule {
	return &StripRule{
		placeholder:       opts.Placeholder,
		returnPlaceholder: opts.ReturnPlaceholder,
		placeholders:      opts.placeholders(),
		tokens:            tokens,
		returnTokens:      returnTokens,
		symbols:           opts.Symbols,
	}
}

func (r *StripRule) Name() string        { return "field-strip" }
func (r *StripRule) Scope() domain.Scope { return domain.ScopeField }

func (r *StripRule) Apply(text string, _ *domain.State) (string, int) {
	return rewriteFields(text, func(_, value string) (string, bool) {
		if value == "" || isPlaceholder(value, r.placeholders) {
			return value, false
		}
		if _, ok := r.returnTokens.match(value); ok {
			return r.returnPlaceholder, true
		}
		if r.Noisy(value) {
			return r.placeholder, true
		}
		return value, false
	})
}

// Noisy reports whether value carries any strip trigger.
func (r *StripRule) Noisy(value string) bool {
	if _, ok := r.tokens.match(value); ok {
		return true
	}
	if r.symbols != "" && strings.ContainsAny(value, r.symbols) {
		return true
	}
	return containsIP(value) ||
		domainPattern.MatchString(value) ||
		ratePattern.MatchString(value) ||
		pipePrefixPattern.MatchString(value)
}

// containsIP reports whether value holds a valid IPv4 dotted quad or an
// IPv6 literal.
func containsIP(value string) bool {
	for _, candidate := range ipv4Pattern.FindAllString(value, -1) {
		if addr, err := netip.ParseAddr(candidate); err == nil && addr.Is4() {
			return true
		}
	}
	fields := strings.FieldsFunc(value, func(c rune) bool {
		return !(c == ':' || c == '.' || c == '%' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'))
	})
	for _, f := range fields {
		if strings.Count(f, ":") < 2 {
			continue
		}
		if addr, err := netip.ParseAddr(strings.Trim(f, "[]")); err == nil && addr.Is6() {
			return true
		}
	}
	return false
}

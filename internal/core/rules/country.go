package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

// CountryNoiseRule removes the noise marker (国内) glued to or next to a
// recognized country name, after repairing known corruptions such as
// 挪国内 for 挪威.
type CountryNoiseRule struct {
	repairs *strings.Replacer
	before  *regexp.Regexp
	after   *regexp.Regexp
}

func NewCountryNoiseRule(noise string, countries []string, repairs map[string]string) (*CountryNoiseRule, error) {
	names := make([]string, 0, len(countries))
	for _, c := range countries {
		if c = strings.TrimSpace(c); c != "" {
			names = append(names, regexp.QuoteMeta(c))
		}
	}
	// longest first so 澳大利亚 wins over a shorter prefix
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	alt := "(" + strings.Join(names, "|") + ")"
	n := regexp.QuoteMeta(noise)

	before, err := regexp.Compile(`(?:` + n + `[ \t]*)+` + alt)
	if err != nil {
		return nil, err
	}
	after, err := regexp.Compile(alt + `(?:[ \t]*` + n + `)+`)
	if err != nil {
		return nil, err
	}

	pairs := make([]string, 0, 2*len(repairs))
	keys := make([]string, 0, len(repairs))
	for k := range repairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k, repairs[k])
	}

	return &CountryNoiseRule{
		repairs: strings.NewReplacer(pairs...),
		before:  before,
		after:   after,
	}, nil
}

func (r *CountryNoiseRule) Name() string        { return "country-noise" }
func (r *CountryNoiseRule) Scope() domain.Scope { return domain.ScopeBuffer }

func (r *CountryNoiseRule) Apply(text string, _ *domain.State) (string, int) {
	hits := 0
	if repaired := r.repairs.Replace(text); repaired != text {
		hits++
		text = repaired
	}
	for _, re := range []*regexp.Regexp{r.before, r.after} {
		if n := len(re.FindAllStringIndex(text, -1)); n > 0 {
			text = re.ReplaceAllString(text, "$1")
			hits += n
		}
	}
	return text, hits
}

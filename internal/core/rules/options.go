package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// Default values for the rule set.
const (
	DefaultThreshold         = 15
	DefaultPlaceholder       = "节点"
	DefaultReturnPlaceholder = "回国节点"
	DefaultCountryMarker     = "国家"
	DefaultNoiseMarker       = "国内"
	DefaultSymbols           = "★☆✦✧✨⭐🌟🔥⚡🚀💎👑🎉✈❤♥◆◇■□●○▲△▼▽【】〖〗『』「」"
)

// Options configures the rule set.
type Options struct {
	Threshold         int
	Placeholder       string
	ReturnPlaceholder string
	CountryMarker     string
	NoiseMarker       string
	Dedup             bool
	SimplifyTokens    []string
	StripTokens       []string
	ReturnTokens      []string
	Symbols           string
	Countries         []string
	Repairs           map[string]string
}

// DefaultOptions returns the canonical rule configuration.
func DefaultOptions() Options {
	return Options{
		Threshold:         DefaultThreshold,
		Placeholder:       DefaultPlaceholder,
		ReturnPlaceholder: DefaultReturnPlaceholder,
		CountryMarker:     DefaultCountryMarker,
		NoiseMarker:       DefaultNoiseMarker,
		Dedup:             true,
		SimplifyTokens:    []string{"权威商", "狸床床", "CloudFlare"},
		StripTokens: []string{
			"CloudFlare", "权威商", "狸床床", "官网", "剩余流量", "到期", "过期",
			"套餐", "订阅", "频道", "telegram", "t.me", "优选",
		},
		ReturnTokens: []string{"回国"},
		Symbols:      DefaultSymbols,
		Countries: []string{
			DefaultCountryMarker,
			"香港", "台湾", "澳门", "日本", "韩国", "新加坡", "美国", "加拿大", "英国",
			"德国", "法国", "荷兰", "俄罗斯", "挪威", "瑞典", "瑞士", "芬兰", "意大利",
			"西班牙", "土耳其", "印度", "越南", "泰国", "马来西亚", "菲律宾", "印尼",
			"澳大利亚", "新西兰", "巴西", "阿根廷", "墨西哥", "爱尔兰", "波兰",
		},
		Repairs: map[string]string{"挪国内": "挪威"},
	}
}

// Validate checks the options for values the rules cannot work with.
func (o Options) Validate() error {
	if o.Threshold < 1 {
		return errors.New("threshold must be at least 1")
	}
	if strings.TrimSpace(o.Placeholder) == "" {
		return errors.New("placeholder must not be empty")
	}
	if strings.TrimSpace(o.ReturnPlaceholder) == "" {
		return errors.New("return placeholder must not be empty")
	}
	if strings.TrimSpace(o.CountryMarker) == "" {
		return errors.New("country marker must not be empty")
	}
	if strings.TrimSpace(o.NoiseMarker) == "" {
		return errors.New("noise marker must not be empty")
	}
	if len(o.Countries) == 0 {
		return errors.New("at least one country name is required")
	}
	for _, p := range o.placeholders() {
		if strings.ContainsAny(p, "\"'\n") {
			return fmt.Errorf("placeholder %q must not contain quotes or newlines", p)
		}
	}
	return nil
}

func (o Options) placeholders() []string {
	return []string{o.Placeholder, o.ReturnPlaceholder}
}

// Build returns the ordered rule list. folder provides the case and width
// folding used for token matching; nil falls back to lower-casing.
func Build(opts Options, folder ports.Normalizer) ([]ports.Rule, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	country, err := NewCountryNoiseRule(opts.NoiseMarker, opts.Countries, opts.Repairs)
	if err != nil {
		return nil, fmt.Errorf("compile country rule: %w", err)
	}

	list := []ports.Rule{NewQuotedFlagRule(opts.CountryMarker)}
	for _, r := range NewEscapedFlagRules(opts.CountryMarker) {
		list = append(list, r)
	}
	list = append(list,
		NewEscapeRule(),
		NewSimplifyRule(opts, newTokenMatcher(folder, opts.SimplifyTokens)),
		country,
		NewStripRule(opts,
			newTokenMatcher(folder, opts.StripTokens),
			newTokenMatcher(folder, opts.ReturnTokens)),
		NewCleanupRule(opts),
	)
	if opts.Dedup {
		list = append(list, NewUniqueRule())
	}
	return list, nil
}

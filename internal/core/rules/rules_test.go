package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

func apply(t *testing.T, rule interface {
	Apply(string, *domain.State) (string, int)
}, input string) (string, int) {
	t.Helper()
	return rule.Apply(input, domain.NewState())
}

func TestQuotedFlagRule(t *testing.T) {
	rule := NewQuotedFlagRule(DefaultCountryMarker)

	out, hits := apply(t, rule, `name: "\\U0001F1FA\\U0001F1F8"`)
	assert.Equal(t, `name: "国家"`, out)
	assert.Equal(t, 1, hits)

	out, hits = apply(t, rule, `name: "\\U0001F1FA\\U0001F1F8 US"`)
	assert.Equal(t, `name: "\\U0001F1FA\\U0001F1F8 US"`, out)
	assert.Zero(t, hits)
}

func TestEscapedFlagRules(t *testing.T) {
	byName := make(map[string]*FlagRule)
	for _, r := range NewEscapedFlagRules(DefaultCountryMarker) {
		byName[r.Name()] = r
	}

	tests := []struct {
		rule  string
		input string
		want  string
	}{
		{"flag-double-escaped", `name: "\\U0001F1ED\\U0001F1F0 香港"`, `name: "国家 香港"`},
		{"flag-escaped", `name: "\U0001F1ED\U0001F1F0 香港"`, `name: "国家 香港"`},
		{"flag-escaped", `name: "\U0001f1ed\U0001f1f0"`, `name: "国家"`},
		{"flag-utf16", `"ps": "\uD83C\uDDED\uD83C\uDDF0 HK"`, `"ps": "国家 HK"`},
		{"flag-literal", "name: \"\U0001F1ED\U0001F1F0 香港\"", `name: "国家 香港"`},
		{"flag-escaped", `name: "\U0001F600\U0001F600"`, `name: "\U0001F600\U0001F600"`},
	}

	for _, tc := range tests {
		t.Run(tc.rule+"/"+tc.input, func(t *testing.T) {
			rule, ok := byName[tc.rule]
			require.True(t, ok)
			out, _ := apply(t, rule, tc.input)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestDecodeCodePoint(t *testing.T) {
	tests := []struct {
		hex  string
		want rune
		ok   bool
	}{
		{"9999", '香', true},
		{"0041", 'A', true},
		{"d800", 0, false},
		{"0022", 0, false},
		{"0027", 0, false},
		{"005c", 0, false},
		{"000a", 0, false},
		{"007f", 0, false},
		{"zzzz", 0, false},
		{"123", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.hex, func(t *testing.T) {
			r, ok := DecodeCodePoint(tc.hex)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, r)
			}
		})
	}
}

func TestDecodeSurrogatePair(t *testing.T) {
	r, ok := DecodeSurrogatePair("d83d", "de80")
	require.True(t, ok)
	assert.Equal(t, '🚀', r)

	_, ok = DecodeSurrogatePair("9999", "6e2f")
	assert.False(t, ok)
}

func TestEscapeRoundTrip(t *testing.T) {
	rule := NewEscapeRule()
	for r := rune(0); r <= 0xFFFF; r++ {
		if r >= 0xD800 && r <= 0xDFFF || !decodable(r) {
			continue
		}
		out, hits := rule.Apply(EncodeCodePoint(r), domain.NewState())
		if !assert.Equal(t, string(r), out, "rune %U", r) {
			return
		}
		assert.Equal(t, 1, hits)
	}
}

func TestEscapeRule(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		failures int
	}{
		{"bmp pair", `name: "\u9999\u6e2f 01"`, `name: "香港 01"`, 0},
		{"surrogate pair", `name: "\ud83d\ude80 fast"`, `name: "🚀 fast"`, 0},
		{"pair after odd escape", `name: "\u4e2d\ud83d\ude80"`, `name: "中🚀"`, 0},
		{"pair after even escapes", `name: "\u4e2d\u6587\uD83D\uDE80"`, `name: "中文🚀"`, 0},
		{"high surrogate before bmp", `\ud83d\u4e2d`, `\ud83d中`, 1},
		{"lone surrogate", `name: "\ud800 x"`, `name: "\ud800 x"`, 1},
		{"quote kept", `name: "a\u0022b"`, `name: "a\u0022b"`, 1},
		{"mixed", `\u65e5\u0022`, `日\u0022`, 1},
		{"no escapes", `name: "plain"`, `name: "plain"`, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state := domain.NewState()
			out, _ := NewEscapeRule().Apply(tc.input, state)
			assert.Equal(t, tc.want, out)
			assert.Equal(t, tc.failures, state.DecodeFailures())
		})
	}
}

func TestSimplifyRule(t *testing.T) {
	opts := DefaultOptions()
	rule := NewSimplifyRule(opts, newTokenMatcher(nil, opts.SimplifyTokens))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"long value", `name: "a very long node name here"`, `name: "节点"`},
		{"at threshold", `name: "abcdefghijklmno"`, `name: "abcdefghijklmno"`},
		{"over threshold", `name: "abcdefghijklmnop"`, `name: "节点"`},
		{"suffix not counted", `name: "abcdefghijklmn_3"`, `name: "abcdefghijklmn_3"`},
		{"zero padded number counted", `name: "US_Los_Angeles_01"`, `name: "节点"`},
		{"suffixed at threshold", `name: "abcdefghijklmno_12"`, `name: "abcdefghijklmno_12"`},
		{"runes not bytes", `name: "香港香港香港香港香港香港"`, `name: "香港香港香港香港香港香港"`},
		{"denylist token", `ps: 'cloudflare 01'`, `ps: '节点'`},
		{"short value", `name: "香港 01"`, `name: "香港 01"`},
		{"empty value", `name: ""`, `name: ""`},
		{"other key", `servername: "a very long node name here"`, `servername: "a very long node name here"`},
		{"quoted key", `{"ps": "a very long node name here"}`, `{"ps": "节点"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := apply(t, rule, tc.input)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestCountryNoiseRule(t *testing.T) {
	opts := DefaultOptions()
	rule, err := NewCountryNoiseRule(opts.NoiseMarker, opts.Countries, opts.Repairs)
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{`name: "挪国内"`, `name: "挪威"`},
		{`name: "香港国内"`, `name: "香港"`},
		{`name: "国内 日本"`, `name: "日本"`},
		{`name: "日本 国内 国内"`, `name: "日本"`},
		{`name: "国内线路"`, `name: "国内线路"`},
		{`name: "澳大利亚国内 01"`, `name: "澳大利亚 01"`},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			out, _ := apply(t, rule, tc.input)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestStripRule(t *testing.T) {
	opts := DefaultOptions()
	rule := NewStripRule(opts,
		newTokenMatcher(nil, opts.StripTokens),
		newTokenMatcher(nil, opts.ReturnTokens))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"provider and rate", `name: "CloudFlare-Pro|1|5.8MB/s"`, `name: "节点"`},
		{"ipv4", `ps: '192.168.1.1 fast'`, `ps: '节点'`},
		{"invalid ipv4", `name: "999.1.1.1"`, `name: "999.1.1.1"`},
		{"ipv6", `name: "2001:db8::1 HK"`, `name: "节点"`},
		{"domain", `name: "hk.example.com"`, `name: "节点"`},
		{"rate", `name: "HK 10MB/s"`, `name: "节点"`},
		{"pipe prefix", `name: "3|HK|x"`, `name: "节点"`},
		{"symbol", `name: "★ 美国"`, `name: "节点"`},
		{"return token", `name: "回国 上海"`, `name: "回国节点"`},
		{"placeholder kept", `name: "节点_2"`, `name: "节点_2"`},
		{"clean value", `name: "香港 01"`, `name: "香港 01"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _ := apply(t, rule, tc.input)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestCleanupRule(t *testing.T) {
	rule := NewCleanupRule(DefaultOptions())

	out, hits := apply(t, rule, `name: " 节点 "`)
	assert.Equal(t, `name: "节点"`, out)
	assert.Equal(t, 1, hits)

	out, hits = apply(t, rule, `name: " 香港 "`)
	assert.Equal(t, `name: " 香港 "`, out)
	assert.Zero(t, hits)
}

func TestUniqueRule(t *testing.T) {
	rule := NewUniqueRule()

	out, hits := apply(t, rule, "name: \"A\"\nname: \"A\"\nname: \"A_1\"\n")
	assert.Equal(t, "name: \"A\"\nname: \"A_1\"\nname: \"A_1_1\"\n", out)
	assert.Equal(t, 2, hits)

	out, _ = apply(t, rule, "name: \"x\"\nps: \"x\"\n")
	assert.Equal(t, "name: \"x\"\nps: \"x_1\"\n", out)

	out, _ = apply(t, rule, "name: \"\"\nname: \"\"\n")
	assert.Equal(t, "name: \"\"\nname: \"\"\n", out)
}

func TestFieldValues(t *testing.T) {
	text := "- {name: \"a\", type: ss}\n- {\"ps\": \"\", \"add\": \"x\"}\n  name: 'b'\nservername: \"c\"\n"
	assert.Equal(t, []string{"a", "", "b"}, FieldValues(text))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"threshold", func(o *Options) { o.Threshold = 0 }},
		{"placeholder", func(o *Options) { o.Placeholder = " " }},
		{"return placeholder", func(o *Options) { o.ReturnPlaceholder = "" }},
		{"country marker", func(o *Options) { o.CountryMarker = "" }},
		{"noise marker", func(o *Options) { o.NoiseMarker = "" }},
		{"countries", func(o *Options) { o.Countries = nil }},
		{"quoted placeholder", func(o *Options) { o.Placeholder = `a"b` }},
	}

	require.NoError(t, DefaultOptions().Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			assert.Error(t, opts.Validate())
			_, err := Build(opts, nil)
			assert.Error(t, err)
		})
	}
}

func TestBuildOrder(t *testing.T) {
	list, err := Build(DefaultOptions(), nil)
	require.NoError(t, err)

	names := make([]string, len(list))
	for i, r := range list {
		names[i] = r.Name()
	}
	assert.Equal(t, []string{
		"flag-quoted", "flag-double-escaped", "flag-escaped", "flag-utf16", "flag-literal",
		"escape-decode", "field-simplify", "country-noise", "field-strip",
		"placeholder-cleanup", "field-unique",
	}, names)

	opts := DefaultOptions()
	opts.Dedup = false
	list, err = Build(opts, nil)
	require.NoError(t, err)
	assert.Equal(t, "placeholder-cleanup", list[len(list)-1].Name())
}

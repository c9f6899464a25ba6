package subsnorm

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_subs_normalize/internal/adapters/logger"
	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
)

func newTestNormalizer(t *testing.T, opts ...Option) *Normalizer {
	t.Helper()
	opts = append([]Option{WithPortsLogger(logger.NewNopLogger())}, opts...)
	n, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })
	return n
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o640))
	return path
}

func TestNewOptions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		input string
		want  string
	}{
		{
			name:  "defaults",
			input: "name: \"CloudFlare\"\nname: \"CloudFlare\"\n",
			want:  "name: \"节点\"\nname: \"节点_1\"\n",
		},
		{
			name:  "no dedup",
			opts:  []Option{WithDedup(false)},
			input: "name: \"CloudFlare\"\nname: \"CloudFlare\"\n",
			want:  "name: \"节点\"\nname: \"节点\"\n",
		},
		{
			name:  "threshold",
			opts:  []Option{WithThreshold(3)},
			input: `name: "香港 01"`,
			want:  `name: "节点"`,
		},
		{
			name:  "placeholders",
			opts:  []Option{WithPlaceholder("node"), WithReturnPlaceholder("home")},
			input: "name: \"1.1.1.1\"\nname: \"回国\"\n",
			want:  "name: \"node\"\nname: \"home\"\n",
		},
		{
			name:  "tokens",
			opts:  []Option{WithSimplifyTokens("vip"), WithStripTokens("trial"), WithReturnTokens("back")},
			input: "name: \"VIP 1\"\nname: \"Trial\"\nname: \"go back\"\nname: \"CloudFlare\"\n",
			want:  "name: \"节点\"\nname: \"节点_1\"\nname: \"回国节点\"\nname: \"CloudFlare\"\n",
		},
		{
			name:  "symbols",
			opts:  []Option{WithSymbols("#")},
			input: "name: \"#1\"\nname: \"★\"\n",
			want:  "name: \"节点\"\nname: \"★\"\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := newTestNormalizer(t, tc.opts...)
			assert.Equal(t, tc.want, n.Normalize(tc.input))
		})
	}
}

func TestNewInvalidOptions(t *testing.T) {
	_, err := New(WithPortsLogger(logger.NewNopLogger()), WithThreshold(0))
	assert.Error(t, err)
}

func TestFixFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sub.yaml", "proxies:\n  - {name: \"CloudFlare-Pro|1|5.8MB/s\", type: ss}\n")
	n := newTestNormalizer(t)

	fr, err := n.FixFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, fr.Written)
	assert.True(t, fr.Result.Changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "proxies:\n  - {name: \"节点\", type: ss}\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// second run finds nothing to do
	fr, err = n.FixFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, fr.Written)
}

func TestFixFileErrors(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.FixFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	var fe *domain.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeFile(t, t.TempDir(), "sub.yaml", "name: \"CloudFlare\"\n")
	_, err = n.FixFile(ctx, path)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "normalize", fe.Op)
}

type failingStore struct {
	data []byte
}

func (s failingStore) Read(string) ([]byte, os.FileMode, error) { return s.data, 0o644, nil }
func (s failingStore) Write(string, []byte, os.FileMode) error  { return errors.New("read-only") }

func TestFixFileWriteError(t *testing.T) {
	n := newTestNormalizer(t, WithStore(failingStore{data: []byte("name: \"CloudFlare\"\n")}))

	fr, err := n.FixFile(context.Background(), "sub.yaml")
	var fe *domain.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "write", fe.Op)
	assert.False(t, fr.Written)
}

func TestFixFileVerifyYAML(t *testing.T) {
	input := "proxies:\n  - name: \"CloudFlare\"\n"
	n := newTestNormalizer(t, WithVerifyYAML(true))

	path := writeFile(t, t.TempDir(), "sub.yaml", input)
	fr, err := n.FixFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, fr.Written)
}

func TestFixFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.yaml", "name: \"CloudFlare\"\nname: \"CloudFlare\"\n"),
		filepath.Join(dir, "missing.yaml"),
		writeFile(t, dir, "b.yaml", "name: \"CloudFlare\"\n"),
		writeFile(t, dir, "c.yaml", "name: \"香港\"\n"),
	}
	n := newTestNormalizer(t, WithWorkers(2))

	results := n.FixFiles(context.Background(), paths)
	require.Len(t, results, len(paths))
	for i, fr := range results {
		assert.Equal(t, paths[i], fr.Path)
	}
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.False(t, results[3].Written)

	// every file gets its own uniqueness counter
	data, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "name: \"节点\"\n", string(data))
}

func TestStream(t *testing.T) {
	n := newTestNormalizer(t)

	var out bytes.Buffer
	stats, err := n.Stream(context.Background(), strings.NewReader("name: \"挪国内\"\nps: '10.0.0.1'\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "name: \"挪威\"\nps: '节点'\n", out.String())
	assert.Equal(t, 2, stats.Lines)
}

func TestRun(t *testing.T) {
	n := newTestNormalizer(t)

	result := n.Run(context.Background(), `name: "\u9999\u6e2f\ud800"`)
	assert.Equal(t, `name: "香港\ud800"`, result.Output)
	assert.Equal(t, 1, result.DecodeFailures)
	assert.Equal(t, 1, result.RuleHits["escape-decode"])
	assert.NotEmpty(t, n.Engine().RuleNames())
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/version"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootNoArgs(t *testing.T) {
	out, _, err := run(t, "")
	assert.ErrorIs(t, err, domain.ErrNoInput)
	assert.Contains(t, out, "Usage:")
}

func TestRootFixesFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", "proxies:\n  - name: \"CloudFlare-Pro|1|5.8MB/s\"\n")
	missing := filepath.Join(dir, "missing.yaml")

	out, errOut, err := run(t, "", good, missing)
	assert.ErrorIs(t, err, errFilesFailed)
	assert.Contains(t, out, "processed file: "+good)
	assert.Contains(t, errOut, "failed to process file: "+missing)

	data, err := os.ReadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "proxies:\n  - name: \"节点\"\n", string(data))
}

func TestRootStdout(t *testing.T) {
	input := "name: \"挪国内\"\n"
	path := writeFile(t, t.TempDir(), "sub.yaml", input)

	out, _, err := run(t, "", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, "name: \"挪威\"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, input, string(data))
}

func TestRootStdin(t *testing.T) {
	out, _, err := run(t, "ps: '192.168.1.1 high-speed'\nps: 'CloudFlare'\n", "-")
	require.NoError(t, err)
	assert.Equal(t, "ps: '节点'\nps: '节点_1'\n", out)
}

func TestRootFlags(t *testing.T) {
	out, _, err := run(t, "name: \"CloudFlare\"\nname: \"CloudFlare\"\n", "--dedup=false", "-")
	require.NoError(t, err)
	assert.Equal(t, "name: \"节点\"\nname: \"节点\"\n", out)

	_, _, err = run(t, "", "--threshold", "0", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
}

func TestRootConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "custom.yaml", "normalize:\n  placeholder: node\n")

	out, _, err := run(t, "name: \"CloudFlare\"\n", "--config", cfg, "-")
	require.NoError(t, err)
	assert.Equal(t, "name: \"node\"\n", out)

	_, _, err = run(t, "", "--config", filepath.Join(dir, "missing.yaml"), "-")
	assert.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	out, _, err := run(t, "", "rules")
	require.NoError(t, err)
	assert.Contains(t, out, " 1  flag-quoted")
	assert.Contains(t, out, "field-unique")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)

	out, _, err = run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "subsnorm "+version.Version)
}

func TestWatchRequiresPath(t *testing.T) {
	_, _, err := run(t, "", "watch")
	assert.Error(t, err)
}

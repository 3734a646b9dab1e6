package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fn := filepath.Join(dir, "cacheadapter.yaml")
	doc := "stores:\n" +
		"  - name: db\n" +
		"    type: sqlite\n" +
		"    namespace: app\n" +
		"    path: " + filepath.Join(dir, "cache.db") + "\n"
	require.NoError(t, os.WriteFile(fn, []byte(doc), 0o600))
	return fn
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfg, "--log-level", "none"}, args...))
	err := root.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Fields(s)
}

func TestCommands(t *testing.T) {
	cfg := writeConfig(t)

	for _, kv := range [][2]string{{"user:1", "ann"}, {"user:2", "bob"}, {"session:1", "s"}} {
		_, err := run(t, cfg, "set", "--ttl", "1h", kv[0], kv[1])
		require.NoError(t, err)
	}

	out, err := run(t, cfg, "keys", "user:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user:1", "user:2"}, lines(out))

	out, err = run(t, cfg, "get", "user:1")
	require.NoError(t, err)
	assert.Equal(t, "ann\n", out)

	_, err = run(t, cfg, "invalidate", "user:%")
	require.NoError(t, err)
	out, err = run(t, cfg, "keys", "*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:1"}, lines(out))

	_, err = run(t, cfg, "del", "session:1")
	require.NoError(t, err)
	out, err = run(t, cfg, "keys", "*")
	require.NoError(t, err)
	assert.Empty(t, lines(out))
}

func TestGetMissing(t *testing.T) {
	_, err := run(t, writeConfig(t), "get", "absent")
	assert.Error(t, err)
}

func TestSetBadTTL(t *testing.T) {
	_, err := run(t, writeConfig(t), "set", "--ttl", "soon", "k", "v")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "none.yaml"), "keys", "*")
	assert.Error(t, err)
}

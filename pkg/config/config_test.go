package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("org-budget", pflag.ContinueOnError)
	RegisterFlags(f)
	require.NoError(t, f.Parse(args))
	return f
}

func TestLoadDefaultsAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(newFlags(t, "--input", "org.tsv", "-b", "E1", "-b", "E2", "-v"))
	require.NoError(t, err)

	assert.Equal(t, "org.tsv", cfg.Input)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, []string{"E1", "E2"}, cfg.Budgets)
	assert.Equal(t, 1, cfg.VerboseCnt)
	assert.False(t, cfg.CaseInsensitive)
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
input = "from-file.tsv"
port = 9000
case-insensitive = true
format = "json"
`), 0o644))

	t.Setenv("ORG_BUDGET_PORT", "9100")

	cfg, err := Load(newFlags(t, "--config", path, "--web", "--format", "text"))
	require.NoError(t, err)

	assert.Equal(t, "from-file.tsv", cfg.Input, "file beats defaults")
	assert.Equal(t, 9100, cfg.Port, "env beats file")
	assert.Equal(t, "text", cfg.Format, "flags beat file")
	assert.True(t, cfg.CaseInsensitive)
	assert.True(t, cfg.WebMode)
}

func TestLoadEnvWithDash(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ORG_BUDGET_INPUT", "env.tsv")
	t.Setenv("ORG_BUDGET_CASE_INSENSITIVE", "true")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "env.tsv", cfg.Input)
	assert.True(t, cfg.CaseInsensitive)
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "--input", "x"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Input: "x", Format: "text"}, true},
		{"no input", Config{Format: "text"}, false},
		{"bad format", Config{Input: "x", Format: "xml"}, false},
		{"bad port", Config{Input: "x", Format: "json", WebMode: true, Port: 70000}, false},
		{"watch without web", Config{Input: "x", Format: "text", Watch: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

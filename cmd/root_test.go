package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/selection"
)

const scenarioText = "a foo b bar c foo d"

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cliEnv struct {
	dir        string
	configPath string
}

func newCLIEnv(t *testing.T, configBody string) cliEnv {
	t.Helper()
	t.Setenv(log.EnvDebug, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if configBody == "" {
		require.NoError(t, config.WriteDefaultConfig(path))
	} else {
		require.NoError(t, os.WriteFile(path, []byte(configBody), 0o600))
	}
	return cliEnv{dir: dir, configPath: path}
}

func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func (e cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, "", args...)
	require.NoError(t, err, errOut)
	return out
}

func (e cliEnv) writeText(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(e.dir, "text.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestCLI_AddAndListJSON(t *testing.T) {
	env := newCLIEnv(t, "")

	out := env.mustRun(t, "add", "todo", "--regex", "TODO|FIXME", "--placement", "start")
	require.Contains(t, out, "added todo")
	env.mustRun(t, "add", "kw", "-l", "func", "-l", "return")

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "list", "--json")), &got))
	require.Len(t, got, 2)
	require.Equal(t, "todo", got[0]["name"])
	require.Equal(t, "TODO|FIXME", got[0]["regex"])
	require.Equal(t, "start", got[0]["placement"])
	require.Equal(t, []any{"func", "return"}, got[1]["literals"])

	data, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# Hopper Configuration", "comments survive saving")
}

func TestCLI_AddRejects(t *testing.T) {
	env := newCLIEnv(t, "")
	env.mustRun(t, "add", "todo", "--regex", "TODO")

	_, _, err := env.run(t, "", "add", "todo", "--regex", "other")
	require.ErrorIs(t, err, instance.ErrDuplicateName)

	_, _, err = env.run(t, "", "add", "broken", "--regex", "(")
	require.ErrorIs(t, err, instance.ErrInvalidPattern)

	_, _, err = env.run(t, "", "add", "x", "--regex", "x", "--literal", "x")
	require.Error(t, err, "regex and literal are mutually exclusive")

	_, _, err = env.run(t, "", "add", "x", "--regex", "x", "--placement", "middle")
	require.Error(t, err)
}

func TestCLI_AddInteractive(t *testing.T) {
	env := newCLIEnv(t, "")

	_, errOut, err := env.run(t, "\n\nfoo\nbar\n\n", "add", "kw")
	require.NoError(t, err)
	require.Contains(t, errOut, "at least one literal is required")

	_, _, err = env.run(t, `\bx\b`+"\n", "add", "word")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "list", "--json")), &got))
	require.Equal(t, []any{"foo", "bar"}, got[0]["literals"])
	require.Equal(t, `\bx\b`, got[1]["regex"])
}

func TestCLI_Edit(t *testing.T) {
	env := newCLIEnv(t, "")
	env.mustRun(t, "add", "a", "--regex", "a")
	env.mustRun(t, "add", "todo", "--regex", "TODO", "--placement", "end")
	env.mustRun(t, "add", "z", "--regex", "z")

	env.mustRun(t, "edit", "todo", "--rename", "tasks", "--literal", "TODO", "--literal", "XXX")

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "list", "--json")), &got))
	require.Equal(t, "tasks", got[1]["name"], "rename keeps position")
	require.Equal(t, "end", got[1]["placement"], "placement kept when not given")
	require.Equal(t, []any{"TODO", "XXX"}, got[1]["literals"])

	_, _, err := env.run(t, "", "edit", "tasks", "--rename", "a")
	require.ErrorIs(t, err, instance.ErrDuplicateName)

	_, _, err = env.run(t, "", "edit", "missing", "--placement", "start")
	require.ErrorIs(t, err, instance.ErrNotFound)
}

func TestCLI_DeleteConfirmation(t *testing.T) {
	env := newCLIEnv(t, "")
	env.mustRun(t, "add", "todo", "--regex", "TODO")

	out, _, err := env.run(t, "n\n", "delete", "todo")
	require.NoError(t, err)
	require.Contains(t, out, "aborted")
	require.Contains(t, env.mustRun(t, "list"), "todo")

	out, errOut, err := env.run(t, "y\n", "delete", "todo")
	require.NoError(t, err)
	require.Contains(t, errOut, `Delete instance "todo"? [y/N]`)
	require.Contains(t, out, "deleted todo")

	_, _, err = env.run(t, "", "delete", "todo", "--yes")
	require.ErrorIs(t, err, instance.ErrNotFound)
}

func TestCLI_HopScenario(t *testing.T) {
	env := newCLIEnv(t, "")
	file := env.writeText(t, scenarioText)
	env.mustRun(t, "add", "foo", "--regex", "foo")

	out := env.mustRun(t, "hop", file, "--instance", "foo")
	require.Equal(t, "foo: match 1 of 2 (offset 5, line 1, col 6)\n", out)

	out = env.mustRun(t, "hop", file, "--instance", "foo", "--offset", "5")
	require.Contains(t, out, "match 2 of 2 (offset 17")

	out = env.mustRun(t, "hop", file, "--instance", "foo", "--offset", "17")
	require.Contains(t, out, "this is the last instance (2/2) (offset 17")

	out = env.mustRun(t, "hop", file, "--instance", "foo", "--offset", "17", "--backward", "--count", "2")
	require.Contains(t, out, "match 1 of 2 (offset 2")
}

func TestCLI_HopJSON(t *testing.T) {
	env := newCLIEnv(t, "")
	file := env.writeText(t, "one\ntwo bar\n")
	env.mustRun(t, "add", "bar", "--literal", "bar", "--placement", "end")

	var got struct {
		Instance string `json:"instance"`
		Position int    `json:"position"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Report   struct {
			Kind  string `json:"kind"`
			Index int    `json:"index"`
			Total int    `json:"total"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "hop", file, "-i", "bar", "--json")), &got))
	require.Equal(t, "bar", got.Instance)
	require.Equal(t, 11, got.Position)
	require.Equal(t, 2, got.Line)
	require.Equal(t, 8, got.Column)
	require.Equal(t, "found", got.Report.Kind)
	require.Equal(t, 1, got.Report.Total)
}

func TestCLI_HopPromptChooser(t *testing.T) {
	env := newCLIEnv(t, "")
	file := env.writeText(t, scenarioText)
	env.mustRun(t, "add", "foo", "--regex", "foo")
	env.mustRun(t, "add", "bar", "--regex", "bar", "--placement", "start")

	out, errOut, err := env.run(t, "2\n", "hop", file)

	require.NoError(t, err)
	require.Contains(t, errOut, "  2) bar")
	require.Contains(t, out, "bar: match 1 of 1 (offset 8")
}

func TestCLI_HopErrors(t *testing.T) {
	env := newCLIEnv(t, "")
	file := env.writeText(t, scenarioText)

	_, _, err := env.run(t, "", "hop", file)
	require.ErrorIs(t, err, selection.ErrNoInstancesDefined)

	env.mustRun(t, "add", "foo", "--regex", "foo")

	_, _, err = env.run(t, "", "hop", file, "--instance", "nope")
	require.ErrorIs(t, err, instance.ErrNotFound)

	_, _, err = env.run(t, scenarioText, "hop", "-")
	require.ErrorIs(t, err, selection.ErrCancelled)

	out, _, err := env.run(t, scenarioText, "hop", "-", "-i", "foo")
	require.NoError(t, err)
	require.Contains(t, out, "match 1 of 2")

	_, _, err = env.run(t, "", "hop", filepath.Join(env.dir, "missing.txt"), "-i", "foo")
	require.Error(t, err)
}

func TestCLI_SQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "instances.db")
	env := newCLIEnv(t, "registry:\n  backend: sqlite\n  path: "+dbPath+"\n")

	env.mustRun(t, "add", "todo", "--regex", "TODO", "--placement", "end")
	require.Contains(t, env.mustRun(t, "list"), "todo")

	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	data, err := os.ReadFile(env.configPath)
	require.NoError(t, err)
	require.NotContains(t, string(data), "todo", "sqlite backend leaves the config file alone")
}

func TestCLI_SessionRejectsStdin(t *testing.T) {
	env := newCLIEnv(t, "")

	_, _, err := env.run(t, "", "session", "-")
	require.ErrorContains(t, err, "pass a file")
}

func TestCLI_Session(t *testing.T) {
	env := newCLIEnv(t, "flags:\n  watch-registry: false\ninstances: []\n")
	file := env.writeText(t, scenarioText)

	out, _, err := env.run(t, "add foo regex natural foo\nselect foo\nn\nn\nn\nquit\n", "session", file)

	require.NoError(t, err)
	require.Contains(t, out, "match 1 of 2")
	require.Contains(t, out, "match 2 of 2")
	require.Contains(t, out, "this is the last instance (2/2)")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.in), &out, "Sure?")
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "input %q", tt.in)
		require.Equal(t, "Sure? [y/N] ", out.String())
	}
}

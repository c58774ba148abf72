package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/domain/instance"
	"github.com/zjrosen/hopper/internal/flags"
	"github.com/zjrosen/hopper/internal/navigation"
	"github.com/zjrosen/hopper/internal/selection"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(configPath))

	cfg := config.Defaults()
	cfg.Tracing.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(context.Background(), cfg, configPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestNew_YAMLBackendUsesConfigFile(t *testing.T) {
	a := newTestApp(t, nil)

	require.Equal(t, a.ConfigPath(), a.RegistryPath())
	require.Empty(t, a.Service().Names())
	require.True(t, a.Flags().Enabled(flags.FlagWatchRegistry))
}

func TestNew_SQLiteBackend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "instances.db")
	a := newTestApp(t, func(c *config.Config) {
		c.Registry.Backend = config.BackendSQLite
		c.Registry.Path = dbPath
	})

	require.Equal(t, dbPath, a.RegistryPath())
	require.NoError(t, a.Service().Add(context.Background(), "todo", instance.Regex("TODO"), instance.PlacementStart))

	_, err := os.Stat(dbPath)
	require.NoError(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Registry.Backend = "postgres"

	_, err := New(context.Background(), cfg, filepath.Join(t.TempDir(), "config.yaml"))
	require.ErrorContains(t, err, "registry.backend")
}

func TestNew_ValidatorFollowsFlag(t *testing.T) {
	ctx := context.Background()

	strict := newTestApp(t, nil)
	err := strict.Service().Add(ctx, "broken", instance.Regex("(unclosed"), instance.PlacementNatural)
	require.ErrorIs(t, err, instance.ErrInvalidPattern)

	lax := newTestApp(t, func(c *config.Config) {
		c.Flags = map[string]bool{flags.FlagValidatePatterns: false}
	})
	require.NoError(t, lax.Service().Add(ctx, "broken", instance.Regex("(unclosed"), instance.PlacementNatural))
}

func TestValidatePattern(t *testing.T) {
	require.NoError(t, ValidatePattern(instance.Regex(`\bfoo\b`)))
	require.NoError(t, ValidatePattern(instance.Literals("(", "[")), "literals are quoted before compiling")
	require.Error(t, ValidatePattern(instance.Regex("[")))
}

func TestApp_EngineHopsOverBuffer(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)
	require.NoError(t, a.Service().Add(ctx, "foo", instance.Regex("foo"), instance.PlacementNatural))
	require.NoError(t, a.State().Set("foo", a.Service()))

	buf := a.NewBuffer("a foo b bar c foo d")
	engine := a.Engine(selection.ChooserFunc(func(context.Context, []string) (string, error) {
		t.Fatal("chooser must not run with a valid selection")
		return "", nil
	}))

	res, err := engine.Hop(ctx, buf, navigation.Forward, 1)
	require.NoError(t, err)
	require.Equal(t, 5, res.Position)
	require.Equal(t, "match 1 of 2", res.Report.Message())
}

func TestApp_ReloadSeesFileEdits(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	require.NoError(t, config.SaveInstances(a.RegistryPath(), []config.InstanceConfig{
		{Name: "note", Literals: []string{"NOTE"}, Placement: "end"},
	}))
	require.NoError(t, a.Service().Reload(ctx))

	require.Equal(t, []string{"note"}, a.Service().Names())
}

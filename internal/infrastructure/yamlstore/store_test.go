package yamlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/hopper/internal/config"
	"github.com/zjrosen/hopper/internal/domain/instance"
)

func TestStore_LoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "config.yaml"))

	list, err := s.Load(context.Background())

	require.NoError(t, err)
	require.Empty(t, list)
}

func TestStore_LoadFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
registry:
  backend: yaml
instances:
  - name: todo
    regex: 'TODO\(\w+\)'
    placement: start
  - name: kw
    literals: [foo, "", bar, foo]
    placement: end
  - name: plain
    regex: x
`), 0o600))

	list, err := New(path).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "todo", list[0].Name())
	require.Equal(t, instance.PlacementStart, list[0].Placement())
	require.Equal(t, []string{"foo", "bar"}, list[1].Pattern().Strings())
	require.Equal(t, instance.PlacementEnd, list[1].Placement())
	require.Equal(t, instance.PlacementNatural, list[2].Placement())
}

func TestStore_LoadRejectsBadEntries(t *testing.T) {
	tests := map[string]string{
		"both kinds":    "instances:\n  - name: a\n    regex: x\n    literals: [y]\n",
		"empty literal": "instances:\n  - name: a\n    literals: ['']\n",
		"bad placement": "instances:\n  - name: a\n    regex: x\n    placement: left\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

			_, err := New(path).Load(context.Background())
			require.Error(t, err)
		})
	}
}

func TestStore_SaveKeepsOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	s := New(path)
	inst, err := instance.NewBuilder("todo").Regex("TODO").Build()
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), []*instance.Instance{inst}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "lookback_window: 100")
	require.Contains(t, string(data), "# Hopper Configuration")
}

func TestToConfig(t *testing.T) {
	natural, _ := instance.NewBuilder("a").Regex("x").Build()
	end, _ := instance.NewBuilder("b").Literals("p", "q").Placement(instance.PlacementEnd).Build()

	require.Equal(t, config.InstanceConfig{Name: "a", Regex: "x"}, ToConfig(natural))
	require.Equal(t, config.InstanceConfig{Name: "b", Literals: []string{"p", "q"}, Placement: "end"}, ToConfig(end))
}

func TestStore_Property_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		path := filepath.Join(dir, rapid.StringMatching(`[a-z]{8}`).Draw(rt, "file")+".yaml")
		defer os.Remove(path)

		n := rapid.IntRange(0, 6).Draw(rt, "n")
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Za-z][A-Za-z0-9 _-]{0,10}`), n, n, rapid.ID[string]).Draw(rt, "names")
		placements := []instance.Placement{instance.PlacementNatural, instance.PlacementStart, instance.PlacementEnd}

		var want []*instance.Instance
		for _, name := range names {
			b := instance.NewBuilder(name).Placement(rapid.SampledFrom(placements).Draw(rt, "placement"))
			if rapid.Bool().Draw(rt, "regex") {
				b.Regex(rapid.StringMatching(`[a-z\\.+*()|: #'"]{1,12}`).Draw(rt, "expr"))
			} else {
				b.Literals(rapid.SliceOfN(rapid.StringMatching(`[a-z:#'" -]{1,6}`), 1, 4).Draw(rt, "lits")...)
			}
			inst, err := b.Build()
			require.NoError(rt, err)
			want = append(want, inst)
		}

		s := New(path)
		require.NoError(rt, s.Save(context.Background(), want))
		got, err := s.Load(context.Background())
		require.NoError(rt, err)

		require.Len(rt, got, len(want))
		for i := range want {
			require.True(rt, want[i].Equal(got[i]), "instance %d: want %v got %v", i, want[i], got[i])
		}
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftahirops/ptop/collector"
	"github.com/ftahirops/ptop/engine"
)

func TestPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	assert.Equal(t, "/tmp/cfg/ptop/config.yaml", Path())
}

func TestDefaultMatchesEngine(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Windows, engine.NumWindows)
	assert.Equal(t, 3.0, cfg.Delay)
	assert.Equal(t, 1, cfg.Current)
	assert.Equal(t, "Def", cfg.Windows[0].Name)
	assert.Equal(t, "%CPU", cfg.Windows[0].Sort)
	assert.Equal(t, "PID", cfg.Windows[0].Fields[0])
	assert.Contains(t, cfg.Windows[0].Fields, "-WCHAN")
	assert.Len(t, cfg.Windows[0].Fields, int(engine.NumFields))

	s, msgs := cfg.Settings(engine.DefaultSettings())
	assert.Empty(t, msgs)
	assert.Equal(t, 3*time.Second, s.Delay)
	w := engine.NewWindow(1, s.Windows[0])
	assert.Equal(t, engine.NewWindow(1, engine.DefaultWindows[0]).Enabled(), w.Enabled())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptop", "config.yaml")

	cfg := Default()
	cfg.Delay = 1.5
	cfg.MultiWindow = true
	cfg.Current = 3
	cfg.TaskScale = "MiB"
	cfg.Widths = map[string]int{"USER": 12}
	cfg.Windows[2].Name = "Big"
	cfg.Windows[2].Sort = "RES"
	cfg.Windows[2].MaxTasks = 10
	cfg.Windows[2].Fields = []string{"COMMAND", "-PID", "RES"}
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got := Load(path)
	assert.Equal(t, cfg, got)

	s, msgs := got.Settings(engine.DefaultSettings())
	require.Empty(t, msgs)
	assert.Equal(t, 1500*time.Millisecond, s.Delay)
	assert.True(t, s.MultiWindow)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, engine.ScaleMiB, s.TaskScale)
	assert.Equal(t, 12, s.Widths[engine.FieldUser])

	w := engine.NewWindow(3, s.Windows[2])
	assert.Equal(t, "Big", w.Name)
	assert.Equal(t, engine.FieldRes, w.SortField)
	assert.Equal(t, 10, w.MaxTasks)
	assert.Equal(t, []engine.FieldID{engine.FieldCommand, engine.FieldRes}, w.Enabled())
	assert.Equal(t, engine.FieldSlot{ID: engine.FieldPID}, w.Fields[1])
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, Default(), Load(filepath.Join(dir, "missing.yaml")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("delay: [1, 2"), 0o600))
	assert.Equal(t, Default(), Load(bad))
}

func TestSettingsReportsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Delay = -1
	cfg.Current = 9
	cfg.TaskScale = "EiB"
	cfg.SummaryScale = "bogus"
	cfg.Widths = map[string]int{"NOPE": 3}
	cfg.Windows[1].Sort = "NOPE"
	cfg.Windows[3].Fields = []string{"PID", "-BOGUS"}

	base := engine.DefaultSettings()
	s, msgs := cfg.Settings(base)
	assert.Len(t, msgs, 7)
	assert.Equal(t, base.Delay, s.Delay)
	assert.Equal(t, 0, s.Current)
	assert.Equal(t, engine.ScaleKiB, s.TaskScale)
	assert.Equal(t, engine.DefaultWindows[1].Name, s.Windows[1].Name)
	assert.Equal(t, engine.DefaultWindows[3].Sort, s.Windows[3].Sort)
	assert.Empty(t, s.Widths)
}

func TestFromEngine(t *testing.T) {
	e, err := engine.New(collector.Sources{}, engine.DefaultSettings())
	require.NoError(t, err)
	e.MultiWindow = true
	e.Current = 1
	e.Catalog.SetWidth(engine.FieldUser, 11)
	e.Catalog.SetWidth(engine.FieldPID, 9)
	e.Windows[1].Options.Forest = true
	e.Windows[1].ToggleField(engine.FieldPPID)

	cfg := FromEngine(e)
	assert.True(t, cfg.MultiWindow)
	assert.Equal(t, 2, cfg.Current)
	assert.Equal(t, map[string]int{"USER": 11}, cfg.Widths)
	assert.True(t, cfg.Windows[1].Options.Forest)
	assert.Equal(t, "-PPID", cfg.Windows[1].Fields[1])
	assert.Equal(t, "PID", cfg.Windows[1].Sort)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	got, err := GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestLoadConfig_WritesDefaultsOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg := LoadConfig()
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, filepath.Join(dir, configFileName))
}

func TestLoadConfig_RoundTripAndNormalize(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	cfg := DefaultConfig()
	cfg.DefaultBranch = "trunk"
	cfg.SetShowHints(false)
	require.NoError(t, SaveConfig(cfg))
	assert.Equal(t, cfg, LoadConfig())

	// Zero fields from an older file fall back to defaults.
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(`{"default_branch":"dev"}`), 0600))
	loaded := LoadConfig()
	assert.Equal(t, "dev", loaded.DefaultBranch)
	assert.Equal(t, 800, loaded.PlaybackDelayMs)
	assert.Equal(t, "dark", loaded.MarkdownStyle)
	assert.True(t, loaded.AreHintsShown())
}

func TestLoadConfig_InvalidDefaultBranch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	for _, name := range []string{"has space", "a..b", "-x", "HEAD", "end/"} {
		data := []byte(`{"default_branch":"` + name + `"}`)
		require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), data, 0600))
		assert.Equal(t, "main", LoadConfig().DefaultBranch, name)
	}
}

func TestLoadConfig_CorruptFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("{not json"), 0600))

	assert.Equal(t, DefaultConfig(), LoadConfig())
}

func TestResolveLessonsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"default", "", filepath.Join(dir, "lessons")},
		{"relative", "mine", filepath.Join(dir, "mine")},
		{"absolute", "/srv/lessons", "/srv/lessons"},
		{"home", "~/git-lessons", filepath.Join(home, "git-lessons")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LessonsDir: tt.input}
			got, err := cfg.ResolveLessonsDir()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	state, err := LoadState()
	require.NoError(t, err)
	assert.Empty(t, state.Progress)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	state.CurrentLesson = "basics"
	state.Record("basics", 2, false, now)
	state.Record("basics", 1, false, now.Add(time.Minute))
	state.Record("branching", 3, true, now)
	require.NoError(t, SaveState(state))

	loaded, err := LoadState()
	require.NoError(t, err)
	assert.Equal(t, "basics", loaded.CurrentLesson)
	assert.Equal(t, 2, loaded.Progress["basics"].Step, "progress never moves backwards")
	assert.True(t, loaded.Progress["branching"].Completed)
	assert.Equal(t, 1, loaded.CompletedCount())

	loaded.Clear("basics")
	assert.Empty(t, loaded.CurrentLesson)
	assert.NotContains(t, loaded.Progress, "basics")
	loaded.Clear("")
	assert.Empty(t, loaded.Progress)
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "file.json")
	require.NoError(t, AtomicWriteFile(path, []byte("one"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("two"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:8793", cfg.Listen)
	assert.Equal(t, time.Second, cfg.Sample.Interval)
	assert.Equal(t, 5*time.Second, cfg.Sample.Timeout)
	assert.Equal(t, 30, cfg.Sample.GPURetryTicks)
	assert.Equal(t, 60, cfg.History.Points)
	assert.Equal(t, 15, cfg.History.CorePoints)
	assert.Equal(t, 8, cfg.Hub.Queue)
	assert.Equal(t, 0, cfg.Process.Limit)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
listen: "0.0.0.0:9000"
sample:
  interval: 2s
  timeout: 10s
  gpu_retry_ticks: 5
history:
  points: 120
  core_points: 30
hub:
  queue: 16
process:
  limit: 25
`
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, 2*time.Second, cfg.Sample.Interval)
	assert.Equal(t, 10*time.Second, cfg.Sample.Timeout)
	assert.Equal(t, 5, cfg.Sample.GPURetryTicks)
	assert.Equal(t, 120, cfg.History.Points)
	assert.Equal(t, 30, cfg.History.CorePoints)
	assert.Equal(t, 16, cfg.Hub.Queue)
	assert.Equal(t, 25, cfg.Process.Limit)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
listen: "127.0.0.1:9999"
history:
  points: 300
`
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, 300, cfg.History.Points)

	// Everything else stays at the defaults.
	assert.Equal(t, time.Second, cfg.Sample.Interval)
	assert.Equal(t, 5*time.Second, cfg.Sample.Timeout)
	assert.Equal(t, 30, cfg.Sample.GPURetryTicks)
	assert.Equal(t, 15, cfg.History.CorePoints)
	assert.Equal(t, 8, cfg.Hub.Queue)
	assert.Equal(t, 0, cfg.Process.Limit)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/sysmonify.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Config file not found")
}

func TestLoadBadYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	err := os.WriteFile(configPath, []byte("listen: [unclosed"), 0644)
	require.NoError(t, err)

	_, err = Load(configPath)
	assert.Error(t, err)
}

func TestFind(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) (string, func())
		wantErr  bool
		wantNone bool
	}{
		{
			name: "explicit path exists",
			setup: func(t *testing.T) (string, func()) {
				dir := t.TempDir()
				path := filepath.Join(dir, "custom.yaml")
				err := os.WriteFile(path, []byte("listen: 127.0.0.1:8793"), 0644)
				require.NoError(t, err)
				return path, func() {}
			},
		},
		{
			name: "explicit path not found",
			setup: func(t *testing.T) (string, func()) {
				return "/nonexistent/config.yaml", func() {}
			},
			wantErr: true,
		},
		{
			name: "current directory has config",
			setup: func(t *testing.T) (string, func()) {
				dir := t.TempDir()
				path := filepath.Join(dir, ConfigFileName)
				err := os.WriteFile(path, []byte("listen: 127.0.0.1:8793"), 0644)
				require.NoError(t, err)

				oldWd, _ := os.Getwd()
				err = os.Chdir(dir)
				require.NoError(t, err)

				return "", func() { os.Chdir(oldWd) }
			},
		},
		{
			name: "parent directory has config",
			setup: func(t *testing.T) (string, func()) {
				dir := t.TempDir()
				path := filepath.Join(dir, ConfigFileName)
				err := os.WriteFile(path, []byte("listen: 127.0.0.1:8793"), 0644)
				require.NoError(t, err)

				sub := filepath.Join(dir, "deeper")
				require.NoError(t, os.Mkdir(sub, 0755))

				oldWd, _ := os.Getwd()
				err = os.Chdir(sub)
				require.NoError(t, err)

				return "", func() { os.Chdir(oldWd) }
			},
		},
		{
			name: "nothing found anywhere",
			setup: func(t *testing.T) (string, func()) {
				dir := t.TempDir()

				oldWd, _ := os.Getwd()
				err := os.Chdir(dir)
				require.NoError(t, err)

				return "", func() { os.Chdir(oldWd) }
			},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Keep the walk and the global fallback inside the sandbox.
			t.Setenv("HOME", t.TempDir())

			explicit, cleanup := tt.setup(t)
			defer cleanup()

			path, err := Find(explicit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNone {
				assert.Empty(t, path)
			} else {
				assert.NotEmpty(t, path)
			}
		})
	}
}

func TestFindGlobalConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	globalDir := filepath.Join(home, GlobalConfigDir)
	require.NoError(t, os.MkdirAll(globalDir, 0755))
	globalPath := filepath.Join(globalDir, GlobalConfigFile)
	require.NoError(t, os.WriteFile(globalPath, []byte("listen: 127.0.0.1:8793"), 0644))

	cwd := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(cwd))
	defer os.Chdir(oldWd)

	path, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, globalPath, path)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(oldWd)

	// No config anywhere: defaults, no error.
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// Drop a config in cwd and it gets picked up.
	content := "listen: \"127.0.0.1:7000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	err := Write(path, DefaultConfig(), false)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Header comment and human-readable durations.
	assert.Contains(t, string(data), "# sysmonify configuration")
	assert.Contains(t, string(data), "interval: 1s")
	assert.Contains(t, string(data), "timeout: 5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, Validate(cfg))
}

func TestWriteRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	require.NoError(t, Write(path, DefaultConfig(), false))

	err := Write(path, DefaultConfig(), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// Overwrite flag forces it through.
	assert.NoError(t, Write(path, DefaultConfig(), true))
}

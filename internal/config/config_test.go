package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Graphics defaults
	g := cfg.Graphics
	if g.Width != 1280 || g.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", g.Width, g.Height)
	}
	if g.WindowX != 700 || g.WindowY != 100 {
		t.Errorf("expected window at 700,100, got %d,%d", g.WindowX, g.WindowY)
	}
	if g.VBlank {
		t.Error("expected vblank to be off by default")
	}
	if !g.GLFinishHack {
		t.Error("expected glFinish hack to be on by default")
	}
	if g.DebugGL {
		t.Error("expected debug GL to be off by default")
	}

	// Model defaults
	m := cfg.Models
	if m.Dir != ".." || m.Extension != ".model" {
		t.Errorf("expected ../*.model, got %s/*%s", m.Dir, m.Extension)
	}
	if m.VertexBufferBytes != 40740000 || m.IndexBufferBytes != 19012000 {
		t.Errorf("unexpected buffer sizes %d/%d", m.VertexBufferBytes, m.IndexBufferBytes)
	}
	if m.UseWorkaround {
		t.Error("expected workaround to be off by default")
	}
	if m.DrawReplicas != 1 {
		t.Errorf("expected 1 draw replica, got %d", m.DrawReplicas)
	}
	if name, ok := m.Slots.ModelFor(1); !ok || name != "vr_controller_vive_1_5" {
		t.Errorf("expected controller model for slot 1, got %q", name)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if !cfg.Logging.Console {
		t.Error("expected console logging by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  vblank: true
  gl_finish_hack: false

models:
  dir: /opt/models
  vertex_buffer_bytes: 1000000
  use_workaround: true
  draw_replicas: 4
  slots:
    - first: 1
      last: 1
      model: quad

logging:
  level: "debug"
  log_file: "hellovr.log"
  console: false
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.VBlank || cfg.Graphics.GLFinishHack {
		t.Error("expected vblank on and glFinish hack off")
	}
	if cfg.Graphics.WindowX != 700 {
		t.Errorf("unset window_x should keep its default, got %d", cfg.Graphics.WindowX)
	}

	opts := cfg.Models.Options()
	if opts.VertexBufferBytes != 1000000 || opts.IndexBufferBytes != 19012000 {
		t.Errorf("unexpected buffer sizes %d/%d", opts.VertexBufferBytes, opts.IndexBufferBytes)
	}
	if !opts.UseWorkaround || opts.DrawReplicas != 4 || !opts.TimeDraws {
		t.Errorf("unexpected options %+v", opts)
	}
	if len(cfg.Models.Slots) != 1 {
		t.Fatalf("slots should be replaced, got %d ranges", len(cfg.Models.Slots))
	}
	if name, ok := cfg.Models.Slots.ModelFor(1); !ok || name != "quad" {
		t.Errorf("expected quad for slot 1, got %q", name)
	}
	if _, ok := cfg.Models.Slots.ModelFor(2); ok {
		t.Error("slot 2 should be unmapped")
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "hellovr.log" || cfg.Logging.Console {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr int
	}{
		{"default", func(*Config) {}, 0},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, 1},
		{"zero height", func(c *Config) { c.Graphics.Height = 0 }, 1},
		{"no index buffer", func(c *Config) { c.Models.IndexBufferBytes = 0 }, 1},
		{"zero draw replicas", func(c *Config) { c.Models.DrawReplicas = 0 }, 1},
		{"bad slot range", func(c *Config) { c.Models.Slots[0].Last = -1 }, 1},
		{"several", func(c *Config) {
			c.Graphics.Height = -1
			c.Models.DrawReplicas = 0
			c.Models.Slots[1].Model = ""
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if got := len(multierr.Errors(err)); got != tt.wantErr {
				t.Errorf("expected %d errors, got %d: %v", tt.wantErr, got, err)
			}
		})
	}
}

func TestResolveDir(t *testing.T) {
	m := Default().Models
	if got := m.ResolveDir("/opt/hellovr/bin"); got != "/opt/hellovr" {
		t.Errorf("relative dir: got %s", got)
	}
	m.Dir = "/srv/models"
	if got := m.ResolveDir("/opt/hellovr/bin"); got != "/srv/models" {
		t.Errorf("absolute dir: got %s", got)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestExecutableDir(t *testing.T) {
	if dir := ExecutableDir(); !filepath.IsAbs(dir) {
		t.Errorf("ExecutableDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "gldebug flag",
			setup: func() { *flagGLDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.DebugGL {
					t.Error("expected debug GL context")
				}
			},
			teardown: func() { *flagGLDebug = false },
		},
		{
			name:  "verbose flag",
			setup: func() { *flagVerbose = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagVerbose = false },
		},
		{
			name: "novblank wins over vblank",
			setup: func() {
				*flagVBlank = true
				*flagNoVBlank = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.VBlank {
					t.Error("expected vblank off")
				}
			},
			teardown: func() {
				*flagVBlank = false
				*flagNoVBlank = false
			},
		},
		{
			name:  "vblank flag",
			setup: func() { *flagVBlank = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.VBlank {
					t.Error("expected vblank on")
				}
			},
			teardown: func() { *flagVBlank = false },
		},
		{
			name:  "noglfinishhack flag",
			setup: func() { *flagNoGLFinishHack = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.GLFinishHack {
					t.Error("expected glFinish hack off")
				}
			},
			teardown: func() { *flagNoGLFinishHack = false },
		},
		{
			name:  "noprintf flag",
			setup: func() { *flagNoPrintf = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Console {
					t.Error("expected console logging off")
				}
			},
			teardown: func() { *flagNoPrintf = false },
		},
		{
			name: "models and workaround flags",
			setup: func() {
				*flagModels = "/data/models"
				*flagWorkaround = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Models.Dir != "/data/models" {
					t.Errorf("expected models dir /data/models, got %s", cfg.Models.Dir)
				}
				if !cfg.Models.UseWorkaround {
					t.Error("expected workaround on")
				}
			},
			teardown: func() {
				*flagModels = ""
				*flagWorkaround = false
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("models:\n  draw_replicas: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error, got nil")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Models.UseWorkaround = true
	cfg.Graphics.VBlank = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !loaded.Models.UseWorkaround || !loaded.Graphics.VBlank {
		t.Error("saved settings were not reloaded")
	}
	if len(loaded.Models.Slots) != len(cfg.Models.Slots) {
		t.Errorf("slot ranges: got %d, want %d", len(loaded.Models.Slots), len(cfg.Models.Slots))
	}

	// Every saved key must be one the application reads.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(data), "clip") {
		t.Errorf("saved config has clip plane keys:\n%s", data)
	}
}

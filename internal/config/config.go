// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/Faultbox/hellovr/internal/engine/rendermodel"
)

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Models   ModelsConfig   `yaml:"models"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds window and rendering settings.
type GraphicsConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	WindowX int `yaml:"window_x"`
	WindowY int `yaml:"window_y"`

	VBlank       bool `yaml:"vblank"`
	GLFinishHack bool `yaml:"gl_finish_hack"`
	DebugGL      bool `yaml:"debug_gl"`
}

// ModelsConfig holds render model loading and GPU layout settings.
type ModelsConfig struct {
	// Dir is resolved against the executable directory when relative.
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`

	VertexBufferBytes int  `yaml:"vertex_buffer_bytes"`
	IndexBufferBytes  int  `yaml:"index_buffer_bytes"`
	UseWorkaround     bool `yaml:"use_workaround"`
	DrawReplicas      int  `yaml:"draw_replicas"`
	TimeDraws         bool `yaml:"time_draws"`

	Slots rendermodel.SlotMap `yaml:"slots"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Console bool   `yaml:"console"`
}

// Default returns a Config with the reference demo settings.
func Default() *Config {
	opts := rendermodel.DefaultOptions()
	return &Config{
		Graphics: GraphicsConfig{
			Width:        1280,
			Height:       720,
			WindowX:      700,
			WindowY:      100,
			VBlank:       false,
			GLFinishHack: true,
			DebugGL:      false,
		},
		Models: ModelsConfig{
			Dir:               "..",
			Extension:         ".model",
			VertexBufferBytes: opts.VertexBufferBytes,
			IndexBufferBytes:  opts.IndexBufferBytes,
			UseWorkaround:     false,
			DrawReplicas:      opts.DrawReplicas,
			TimeDraws:         true,
			Slots:             rendermodel.DefaultSlotMap(),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Console: true,
		},
	}
}

// Options returns the GPU upload options described by the models section.
func (m ModelsConfig) Options() rendermodel.Options {
	return rendermodel.Options{
		VertexBufferBytes: m.VertexBufferBytes,
		IndexBufferBytes:  m.IndexBufferBytes,
		UseWorkaround:     m.UseWorkaround,
		DrawReplicas:      m.DrawReplicas,
		TimeDraws:         m.TimeDraws,
	}
}

// ResolveDir returns the model directory, joining a relative Dir onto base.
func (m ModelsConfig) ResolveDir(base string) string {
	if filepath.IsAbs(m.Dir) {
		return m.Dir
	}
	return filepath.Join(base, m.Dir)
}

// Validate reports settings the application cannot run with.
func (c *Config) Validate() error {
	var errs error
	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("graphics: invalid window size %dx%d", g.Width, g.Height))
	}

	m := c.Models
	if m.VertexBufferBytes <= 0 || m.IndexBufferBytes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("models: buffer sizes must be positive (vertex %d, index %d)",
			m.VertexBufferBytes, m.IndexBufferBytes))
	}
	if m.DrawReplicas < 1 {
		errs = multierr.Append(errs, fmt.Errorf("models: draw_replicas must be at least 1, got %d", m.DrawReplicas))
	}
	for i, r := range m.Slots {
		if r.First > r.Last || r.Model == "" {
			errs = multierr.Append(errs, fmt.Errorf("models: slot range %d (%d-%d %q) is invalid", i, r.First, r.Last, r.Model))
		}
	}
	return errs
}

package config

import "flag"

var (
	flagConfig         = flag.String("config", "", "Path to config file")
	flagGLDebug        = flag.Bool("gldebug", false, "Create a debug OpenGL context")
	flagVerbose        = flag.Bool("verbose", false, "Enable debug logging")
	flagNoVBlank       = flag.Bool("novblank", false, "Disable vertical sync")
	flagVBlank         = flag.Bool("vblank", false, "Enable vertical sync")
	flagNoGLFinishHack = flag.Bool("noglfinishhack", false, "Skip glFinish after presenting")
	flagNoPrintf       = flag.Bool("noprintf", false, "Disable console logging")
	flagModels         = flag.String("models", "", "Directory containing .model files")
	flagWorkaround     = flag.Bool("workaround", false, "Declare the auxiliary vertex attribute with two components")
	flagWidth          = flag.Int("width", 0, "Window width")
	flagHeight         = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagGLDebug {
		cfg.Graphics.DebugGL = true
	}
	if *flagVerbose {
		cfg.Logging.Level = "debug"
	}
	if *flagVBlank {
		cfg.Graphics.VBlank = true
	}
	if *flagNoVBlank {
		cfg.Graphics.VBlank = false
	}
	if *flagNoGLFinishHack {
		cfg.Graphics.GLFinishHack = false
	}
	if *flagNoPrintf {
		cfg.Logging.Console = false
	}
	if *flagModels != "" {
		cfg.Models.Dir = *flagModels
	}
	if *flagWorkaround {
		cfg.Models.UseWorkaround = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}

// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the daemon configuration
type Config struct {
	// Compositor pipeline settings
	Compositor CompositorConfig `mapstructure:"compositor"`

	// Presenter/driver settings
	Display DisplayConfig `mapstructure:"display"`

	// Post-composition effect stack
	Effects map[string]EffectConfig `mapstructure:"effects"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CompositorConfig contains frame pipeline settings
type CompositorConfig struct {
	Width       int32  `mapstructure:"width"`
	Height      int32  `mapstructure:"height"`
	Background  string `mapstructure:"background"` // hex RGB, e.g. "#1e1e2e"
	FrameLimit  bool   `mapstructure:"frame_limit"`
	TargetFPS   int    `mapstructure:"target_fps"` // 0 = follow display refresh
	TileColumns int    `mapstructure:"tile_columns"`
	TileGap     int32  `mapstructure:"tile_gap"`
}

// DisplayConfig contains presenter backend settings
type DisplayConfig struct {
	Backend         string `mapstructure:"backend"` // "null" or "png"
	OutputDir       string `mapstructure:"output_dir"`
	FrameCap        int    `mapstructure:"frame_cap"`
	RefreshHz       int    `mapstructure:"refresh_hz"`
	HDR             bool   `mapstructure:"hdr"`
	VariableRefresh bool   `mapstructure:"variable_refresh"`
}

// EffectConfig holds one effect's switch and parameter list
type EffectConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	Params  []float64 `mapstructure:"params"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Compositor: CompositorConfig{
			Width:       1920,
			Height:      1080,
			Background:  "#1e1e2e",
			FrameLimit:  true,
			TargetFPS:   0,
			TileColumns: 0, // auto
			TileGap:     8,
		},
		Display: DisplayConfig{
			Backend:   "null",
			OutputDir: "",
			RefreshHz: 60,
		},
		Effects: map[string]EffectConfig{},
		Logging: LoggingConfig{
			LogLevel: "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("prism")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/prism")
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "prism"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetDefault("compositor.width", DefaultConfig.Compositor.Width)
	viper.SetDefault("compositor.height", DefaultConfig.Compositor.Height)
	viper.SetDefault("compositor.background", DefaultConfig.Compositor.Background)
	viper.SetDefault("compositor.frame_limit", DefaultConfig.Compositor.FrameLimit)
	viper.SetDefault("compositor.target_fps", DefaultConfig.Compositor.TargetFPS)
	viper.SetDefault("compositor.tile_columns", DefaultConfig.Compositor.TileColumns)
	viper.SetDefault("compositor.tile_gap", DefaultConfig.Compositor.TileGap)

	viper.SetDefault("display.backend", DefaultConfig.Display.Backend)
	viper.SetDefault("display.output_dir", DefaultConfig.Display.OutputDir)
	viper.SetDefault("display.frame_cap", DefaultConfig.Display.FrameCap)
	viper.SetDefault("display.refresh_hz", DefaultConfig.Display.RefreshHz)
	viper.SetDefault("display.hdr", DefaultConfig.Display.HDR)
	viper.SetDefault("display.variable_refresh", DefaultConfig.Display.VariableRefresh)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/prism/prism.toml"
	}

	return filepath.Join(home, ".config", "prism", "prism.toml")
}

// ParseHexColor parses a "#rrggbb" background color string.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid color %q, want #rrggbb", s)
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint8(rv), uint8(gv), uint8(bv), nil
}

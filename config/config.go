// Package config loads and saves fv1c's compile configuration: TOML on
// disk, in-process defaults, per-OS config/log paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every knob spec.md §6 "Configuration" names.
type Config struct {
	Compile struct {
		ProgSize      int  `toml:"prog_size"`
		RegCount      int  `toml:"reg_count"`
		DelaySize     int  `toml:"delay_size"`
		SpinAsmMemBug bool `toml:"spin_asm_mem_bug"`
		ClampReals    bool `toml:"clamp_reals"`
		Verbose       int  `toml:"verbose"`
	} `toml:"compile"`
}

// DefaultConfig returns the baseline compile defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Compile.ProgSize = 128
	cfg.Compile.RegCount = 32
	cfg.Compile.DelaySize = 32768
	cfg.Compile.SpinAsmMemBug = true
	cfg.Compile.ClampReals = true
	cfg.Compile.Verbose = 0
	return cfg
}

// Override carries per-compile field overrides (spec.md §6: "any of these
// may be overridden per compile"). A nil field leaves the base Config
// value untouched.
type Override struct {
	ProgSize      *int  `json:"prog_size,omitempty" toml:"prog_size,omitempty"`
	RegCount      *int  `json:"reg_count,omitempty" toml:"reg_count,omitempty"`
	DelaySize     *int  `json:"delay_size,omitempty" toml:"delay_size,omitempty"`
	SpinAsmMemBug *bool `json:"spin_asm_mem_bug,omitempty" toml:"spin_asm_mem_bug,omitempty"`
	ClampReals    *bool `json:"clamp_reals,omitempty" toml:"clamp_reals,omitempty"`
	Verbose       *int  `json:"verbose,omitempty" toml:"verbose,omitempty"`
}

// WithOverride returns a copy of c with every non-nil field in o applied.
func (c Config) WithOverride(o Override) Config {
	out := c
	if o.ProgSize != nil {
		out.Compile.ProgSize = *o.ProgSize
	}
	if o.RegCount != nil {
		out.Compile.RegCount = *o.RegCount
	}
	if o.DelaySize != nil {
		out.Compile.DelaySize = *o.DelaySize
	}
	if o.SpinAsmMemBug != nil {
		out.Compile.SpinAsmMemBug = *o.SpinAsmMemBug
	}
	if o.ClampReals != nil {
		out.Compile.ClampReals = *o.ClampReals
	}
	if o.Verbose != nil {
		out.Compile.Verbose = *o.Verbose
	}
	return out
}

// GetConfigPath returns the platform-specific config file path, under an
// XDG/AppData "fv1c" app directory.
func GetConfigPath() string {
	return appPath("config.toml", func(base string) string { return filepath.Join(base, "fv1c") })
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	dir := appPath("", func(base string) string { return filepath.Join(base, "fv1c", "logs") })
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "logs"
	}
	return dir
}

func appPath(leaf string, join func(base string) string) string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = join(configDir)
	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			if leaf == "" {
				return "."
			}
			return leaf
		}
		configDir = join(filepath.Join(homeDir, ".config"))
	default:
		if leaf == "" {
			return "."
		}
		return leaf
	}

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		if leaf == "" {
			return "."
		}
		return leaf
	}
	if leaf == "" {
		return configDir
	}
	return filepath.Join(configDir, leaf)
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: it yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

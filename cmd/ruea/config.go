package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix prefixes every environment variable read as configuration.
const envPrefix = "RUEA_"

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = "ruea.yaml"

// Config is the resolved configuration of a command.
type Config struct {
	Root           string    `koanf:"root"`
	Region         string    `koanf:"region"`
	InputDir       string    `koanf:"input_dir"`
	OutputDir      string    `koanf:"output_dir"`
	OutPrefix      string    `koanf:"out_prefix"`
	Only           string    `koanf:"only"`
	DiagnosticFile string    `koanf:"diagnostic_file"`
	AliasesFile    string    `koanf:"aliases_file"`
	Workers        int       `koanf:"workers"`
	Log            LogConfig `koanf:"log"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var defaults = map[string]interface{}{
	"root":            ".",
	"region":          "Metropolitana de Santiago",
	"input_dir":       filepath.Join("data", "raw", "descargas_retc"),
	"output_dir":      filepath.Join("data", "interim", "filtrados_region"),
	"out_prefix":      "",
	"only":            "",
	"diagnostic_file": filepath.Join("data", "interim", "diagnostico_archivos_originales", "diagnostico_headers.csv"),
	"aliases_file":    "",
	"workers":         1,
	"log.level":       "info",
	"log.format":      "console",
}

// configKey maps a flag or environment variable name to its config key.
//
//	log-level, LOG_LEVEL -> log.level
//	input-dir, INPUT_DIR -> input_dir
func configKey(name string) string {
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// LoadConfig loads configuration from defaults, the YAML file, the
// environment and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults. A .env file in the working directory is loaded
// into the environment first without overriding variables already set.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			cfgFile = defaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return configKey(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return configKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.InputDir = resolvePathRelativeTo(cfg.InputDir, cfg.Root)
	cfg.OutputDir = resolvePathRelativeTo(cfg.OutputDir, cfg.Root)
	cfg.DiagnosticFile = resolvePathRelativeTo(cfg.DiagnosticFile, cfg.Root)
	cfg.AliasesFile = resolvePathRelativeTo(cfg.AliasesFile, cfg.Root)
	return &cfg, nil
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

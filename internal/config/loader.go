package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "tabula"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "TABULA"
)

// Loader resolves the configuration from files, environment variables, and
// bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

// LoadWithFile resolves configuration from a specific file path; an empty
// path falls back to the search paths.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

// LoadWithoutValidation resolves the configuration but skips validation,
// for commands that inspect partial configs.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("", false)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file is fine, defaults and env vars apply
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return &cfg, nil
}

// Set sets a value in the configuration, overriding all other sources.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/tabula")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "tabula"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "tabula"))
	}
}

// setupEnvironmentVariables configures TABULA_* environment handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every default so env vars and files can override
// individual keys.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("engine.options.max_file_size", defaults.Engine.Options.MaxFileSize)
	l.v.SetDefault("engine.options.min_text_chars", defaults.Engine.Options.MinTextChars)

	l.v.SetDefault("engine.table.text_tolerance", defaults.Engine.Table.TextTolerance)
	l.v.SetDefault("engine.table.ocr_tolerance", defaults.Engine.Table.OCRTolerance)
	l.v.SetDefault("engine.table.column_tolerance", defaults.Engine.Table.ColumnTolerance)
	l.v.SetDefault("engine.table.max_length_drift", defaults.Engine.Table.MaxLengthDrift)
	l.v.SetDefault("engine.table.min_match_ratio", defaults.Engine.Table.MinMatchRatio)
	l.v.SetDefault("engine.table.last_column_width", defaults.Engine.Table.LastColumnWidth)

	l.v.SetDefault("engine.ocr.language", defaults.Engine.OCR.Language)
	l.v.SetDefault("engine.ocr.whitelist", defaults.Engine.OCR.Whitelist)
	l.v.SetDefault("engine.ocr.max_init_attempts", defaults.Engine.OCR.MaxInitAttempts)
	l.v.SetDefault("engine.ocr.init_retry_delay", defaults.Engine.OCR.InitRetryDelay)
	l.v.SetDefault("engine.ocr.recognize_timeout", defaults.Engine.OCR.RecognizeTimeout)
	l.v.SetDefault("engine.ocr.retry_timeout", defaults.Engine.OCR.RetryTimeout)
	l.v.SetDefault("engine.ocr.max_page_retries", defaults.Engine.OCR.MaxPageRetries)
	l.v.SetDefault("engine.ocr.page_retry_delay", defaults.Engine.OCR.PageRetryDelay)
	l.v.SetDefault("engine.ocr.terminate_timeout", defaults.Engine.OCR.TerminateTimeout)
	l.v.SetDefault("engine.ocr.min_word_confidence", defaults.Engine.OCR.MinWordConfidence)

	l.v.SetDefault("engine.raster.dpi", defaults.Engine.Raster.DPI)

	l.v.SetDefault("engine.classify.min_matches", defaults.Engine.Classify.MinMatches)
}

// GetConfigSearchPaths returns the paths where configuration files are
// searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "tabula"))
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "tabula"))
	}
	paths = append(paths, "/etc/tabula")
	return paths
}

// GenerateDefaultConfigFile writes the default configuration to a file.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = "tabula.yaml"
	}
	cfg := DefaultConfig()
	return cfg.SaveYAML(filename)
}

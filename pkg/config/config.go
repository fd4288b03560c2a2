package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BOXWALK_VIEWPORT_WIDTH.
const EnvPrefix = "BOXWALK"

// Text measurers.
const (
	MeasurerCanvas    = "canvas"
	MeasurerHeuristic = "heuristic"
)

type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Text     TextConfig     `mapstructure:"text" yaml:"text"`
	Scripts  ScriptsConfig  `mapstructure:"scripts" yaml:"scripts"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

type TextConfig struct {
	Measurer string      `mapstructure:"measurer" yaml:"measurer"`
	Fonts    FontsConfig `mapstructure:"fonts" yaml:"fonts"`
}

// FontsConfig holds TrueType paths. Empty paths select the embedded Go fonts.
type FontsConfig struct {
	Regular    string `mapstructure:"regular" yaml:"regular"`
	Bold       string `mapstructure:"bold" yaml:"bold"`
	Italic     string `mapstructure:"italic" yaml:"italic"`
	BoldItalic string `mapstructure:"bold_italic" yaml:"bold_italic"`
	Mono       string `mapstructure:"mono" yaml:"mono"`
	MonoBold   string `mapstructure:"mono_bold" yaml:"mono_bold"`
}

type ScriptsConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	// -- Viewport --
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)

	// -- Text --
	v.SetDefault("text.measurer", MeasurerCanvas)
	v.SetDefault("text.fonts.regular", "")
	v.SetDefault("text.fonts.bold", "")
	v.SetDefault("text.fonts.italic", "")
	v.SetDefault("text.fonts.bold_italic", "")
	v.SetDefault("text.fonts.mono", "")
	v.SetDefault("text.fonts.mono_bold", "")

	// -- Scripts --
	v.SetDefault("scripts.enabled", true)
	v.SetDefault("scripts.timeout", "2s")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "boxwalk")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
}

// NewDefaultConfig returns the configuration made of defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

// Bind wires environment overrides and, when path is non-empty, the config
// file into v. Defaults must already be set.
func Bind(v *viper.Viper, path string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Text.Measurer = strings.ToLower(strings.TrimSpace(cfg.Text.Measurer))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	var errs []error
	if c.Viewport.Width <= 0 {
		errs = append(errs, errors.New("viewport.width must be a positive integer"))
	}
	if c.Viewport.Height <= 0 {
		errs = append(errs, errors.New("viewport.height must be a positive integer"))
	}
	switch c.Text.Measurer {
	case MeasurerCanvas, MeasurerHeuristic:
	default:
		errs = append(errs, fmt.Errorf("text.measurer must be %q or %q, got %q",
			MeasurerCanvas, MeasurerHeuristic, c.Text.Measurer))
	}
	if c.Scripts.Timeout < 0 {
		errs = append(errs, errors.New("scripts.timeout must not be negative"))
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}

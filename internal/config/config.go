// Package config loads docgen-converter settings from TOML files and
// DOCGEN_ environment variables.
//
// Precedence, lowest to highest: defaults, config file, environment,
// command-line flags (applied by the CLI).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"docgen-converter/internal/convert"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/report"
)

const (
	// FileName is the config file name searched for without an explicit path.
	FileName = "docgen-converter.toml"
	// EnvPrefix prefixes environment overrides, e.g. DOCGEN_RESOLUTION_STRICT.
	EnvPrefix = "DOCGEN"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Config is the complete configuration.
type Config struct {
	Resolution ResolutionConfig `mapstructure:"resolution" toml:"resolution" json:"resolution" yaml:"resolution"`
	Output     OutputConfig     `mapstructure:"output" toml:"output" json:"output" yaml:"output"`
	Store      StoreConfig      `mapstructure:"store" toml:"store" json:"store" yaml:"store"`
	Log        LogConfig        `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ResolutionConfig tunes merge field resolution.
type ResolutionConfig struct {
	MinConfidence      float64 `mapstructure:"min_confidence" toml:"min_confidence" json:"min_confidence" yaml:"min_confidence"`
	MinGap             float64 `mapstructure:"min_gap" toml:"min_gap" json:"min_gap" yaml:"min_gap"`
	AmbiguityThreshold float64 `mapstructure:"ambiguity_threshold" toml:"ambiguity_threshold" json:"ambiguity_threshold" yaml:"ambiguity_threshold"`
	MaxSuggestions     int     `mapstructure:"max_suggestions" toml:"max_suggestions" json:"max_suggestions" yaml:"max_suggestions"`
	AutoMatch          bool    `mapstructure:"auto_match" toml:"auto_match" json:"auto_match" yaml:"auto_match"`
	Strict             bool    `mapstructure:"strict" toml:"strict" json:"strict" yaml:"strict"`
}

// OutputConfig selects the shape of the produced files.
type OutputConfig struct {
	BlockStyle   string `mapstructure:"block_style" toml:"block_style" json:"block_style" yaml:"block_style"`
	ReportFormat string `mapstructure:"report_format" toml:"report_format" json:"report_format" yaml:"report_format"`
}

// StoreConfig locates the override and history database.
type StoreConfig struct {
	Path    string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Level string `mapstructure:"level" toml:"level" json:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	cc := convert.DefaultConfig()

	return Config{
		Resolution: ResolutionConfig{
			MinConfidence:      cc.MinConfidence,
			MinGap:             cc.MinGap,
			AmbiguityThreshold: cc.AmbiguityThreshold,
			MaxSuggestions:     cc.MaxSuggestions,
			AutoMatch:          cc.AutoMatch,
			Strict:             cc.StrictMode,
		},
		Output: OutputConfig{
			BlockStyle:   cc.BlockStyle.String(),
			ReportFormat: report.FormatJSON.String(),
		},
		Store: StoreConfig{
			Path:    "docgen-converter.db",
			Enabled: true,
		},
		Log: LogConfig{
			JSON:  false,
			Level: "info",
		},
	}
}

// SetDefaults registers every key with its default so environment
// overrides apply even without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("resolution.min_confidence", d.Resolution.MinConfidence)
	v.SetDefault("resolution.min_gap", d.Resolution.MinGap)
	v.SetDefault("resolution.ambiguity_threshold", d.Resolution.AmbiguityThreshold)
	v.SetDefault("resolution.max_suggestions", d.Resolution.MaxSuggestions)
	v.SetDefault("resolution.auto_match", d.Resolution.AutoMatch)
	v.SetDefault("resolution.strict", d.Resolution.Strict)

	v.SetDefault("output.block_style", d.Output.BlockStyle)
	v.SetDefault("output.report_format", d.Output.ReportFormat)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.enabled", d.Store.Enabled)

	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.level", d.Log.Level)
}

// NewViper returns a viper instance with defaults and environment binding.
// An explicit path is read as is; otherwise FileName is searched in the
// working directory and then in the user config directory.
func NewViper(path string) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")

		return v
	}

	v.SetConfigName(strings.TrimSuffix(FileName, ".toml"))
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "docgen-converter"))
	}

	return v
}

// Load reads the configuration. A missing file is not an error unless path
// was given explicitly. The returned string is the file used, if any.
func Load(path string) (*Config, string, error) {
	v := NewViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, "", errors.WithHint(
				errors.Wrap(err, "failed to read config"),
				"run 'docgen-converter config init' to write a fresh config file",
			)
		}
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, "", err
	}

	return cfg, v.ConfigFileUsed(), nil
}

// LoadWithViper unmarshals and validates a prepared viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and enum names.
func (c *Config) Validate() error {
	r := c.Resolution

	for name, val := range map[string]float64{
		"resolution.min_confidence":      r.MinConfidence,
		"resolution.min_gap":             r.MinGap,
		"resolution.ambiguity_threshold": r.AmbiguityThreshold,
	} {
		if val < 0 || val > 1 {
			return errors.Newf("%s must be within [0, 1], got %g", name, val)
		}
	}

	if r.MaxSuggestions < 0 {
		return errors.Newf("resolution.max_suggestions must be >= 0, got %d", r.MaxSuggestions)
	}

	if _, err := convert.ParseBlockStyle(c.Output.BlockStyle); err != nil {
		return errors.Wrap(err, "output.block_style")
	}

	if _, err := report.ParseFormat(c.Output.ReportFormat); err != nil {
		return errors.Wrap(err, "output.report_format")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path cannot be empty when the store is enabled")
	}

	return nil
}

// ConvertConfig returns the converter settings.
func (c *Config) ConvertConfig() convert.Config {
	style, _ := convert.ParseBlockStyle(c.Output.BlockStyle)

	return convert.Config{
		MinConfidence:      c.Resolution.MinConfidence,
		MinGap:             c.Resolution.MinGap,
		AmbiguityThreshold: c.Resolution.AmbiguityThreshold,
		MaxSuggestions:     c.Resolution.MaxSuggestions,
		AutoMatch:          c.Resolution.AutoMatch,
		StrictMode:         c.Resolution.Strict,
		BlockStyle:         style,
	}
}

// ReportFormat returns the configured report format.
func (c *Config) ReportFormat() report.Format {
	f, _ := report.ParseFormat(c.Output.ReportFormat)

	return f
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// WriteDefaults writes the default configuration to path. An existing file
// is kept unless force is set.
func WriteDefaults(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(errors.Newf("config file %s already exists", path), "pass --force to overwrite it")
	}

	d := Default()

	data, err := d.Marshal()
	if err != nil {
		return errors.Wrap(err, "failed to marshal default config")
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}

	return nil
}

// Package config loads notion2csv settings from .env, an optional YAML file,
// the environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/takak2166/notion2csv/internal/groups"
	"github.com/takak2166/notion2csv/internal/rows"
	"github.com/takak2166/notion2csv/internal/sheet"
	"github.com/takak2166/notion2csv/internal/source"
)

const (
	configFileName = "notion2csv"
	configFileType = "yaml"
	envPrefix      = "NOTION2CSV"

	DefaultPropertyName = "Kurzus"
	DefaultOutputDir    = "output"
	checkpointFileName  = "notion2csv.db"
)

var (
	ErrMissingToken    = errors.New("NOTION_API_KEY is not set")
	ErrMissingDatabase = errors.New("NOTION_DATABASE_ID is not set")
	ErrInvalidProbe    = errors.New("probe must be union or first")
	ErrInvalidRetry    = errors.New("retry.attempts must be at least 1")
)

// Alias renames a grouping option
type Alias struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Retry is the group and request retry policy
type Retry struct {
	Attempts        int           `mapstructure:"attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

// Config holds every setting of the exporter
type Config struct {
	Token          string  `mapstructure:"token"`
	DatabaseID     string  `mapstructure:"database_id"`
	PropertyName   string  `mapstructure:"property_name"`
	TitleFallback  string  `mapstructure:"title_fallback"`
	Aliases        []Alias `mapstructure:"aliases"`
	MaxCellLength  int     `mapstructure:"max_cell_length"`
	Probe          string  `mapstructure:"probe"`
	Retry          Retry   `mapstructure:"retry"`
	CheckpointPath string  `mapstructure:"checkpoint_path"`
	OutputDir      string  `mapstructure:"output_dir"`
	LogLevel       string  `mapstructure:"log_level"`
	LogFormat      string  `mapstructure:"log_format"`
}

// envAliases are the plain variable names accepted next to NOTION2CSV_*.
var envAliases = map[string]string{
	"token":         "NOTION_API_KEY",
	"database_id":   "NOTION_DATABASE_ID",
	"property_name": "NOTION_PROPERTY_NAME",
	"log_level":     "LOG_LEVEL",
	"output_dir":    "OUTPUT_DIR",
}

// Load reads the configuration. configFile may be empty, in which case
// notion2csv.yaml is looked up in the working directory and its absence is
// not an error.
func Load(configFile string) (*Config, error) {
	// A missing .env is fine; variables may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !v.IsSet("aliases") {
		cfg.Aliases = defaultAliases()
	}
	if cfg.CheckpointPath == "" {
		cfg.CheckpointPath = filepath.Join(cfg.OutputDir, checkpointFileName)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("property_name", DefaultPropertyName)
	v.SetDefault("title_fallback", "")
	v.SetDefault("max_cell_length", sheet.DefaultMaxCellLength)
	v.SetDefault("probe", string(rows.ProbeUnion))
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.initial_interval", time.Second)
	v.SetDefault("checkpoint_path", "")
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func defaultAliases() []Alias {
	out := make([]Alias, 0, len(groups.DefaultAliases))
	for from, to := range groups.DefaultAliases {
		out = append(out, Alias{From: from, To: to})
	}
	return out
}

// Validate checks the settings needed to talk to Notion and run an export.
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.DatabaseID == "" {
		return ErrMissingDatabase
	}
	if !rows.ProbePolicy(c.Probe).Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProbe, c.Probe)
	}
	if c.Retry.Attempts < 1 {
		return ErrInvalidRetry
	}
	return nil
}

// AliasMap returns the aliases in the form the group index expects
func (c *Config) AliasMap() groups.Aliases {
	out := make(groups.Aliases, len(c.Aliases))
	for _, a := range c.Aliases {
		if a.From != "" && a.To != "" {
			out[a.From] = a.To
		}
	}
	return out
}

// RetryPolicy converts the retry settings
func (c *Config) RetryPolicy() source.RetryPolicy {
	p := source.DefaultRetryPolicy()
	p.Attempts = c.Retry.Attempts
	if c.Retry.InitialInterval > 0 {
		p.InitialInterval = c.Retry.InitialInterval
	}
	return p
}

// RowOptions returns the row builder options
func (c *Config) RowOptions() rows.Options {
	return rows.Options{
		TitleFallback: c.TitleFallback,
		Probe:         rows.ProbePolicy(c.Probe),
	}
}

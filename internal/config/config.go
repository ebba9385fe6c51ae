package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. MORTSTAT_CLUSTERS.
const EnvPrefix = "MORTSTAT"

// Global configuration structure.
type Global struct {
	// Analysis
	Predictors     []string `mapstructure:"predictors" yaml:"predictors"`
	Clusters       int      `mapstructure:"clusters" yaml:"clusters"`
	ClusterSeed    int64    `mapstructure:"cluster_seed" yaml:"cluster_seed"`
	ForecastYears  int      `mapstructure:"forecast_years" yaml:"forecast_years"`
	ForecastMethod string   `mapstructure:"forecast_method" yaml:"forecast_method"`
	TopN           int      `mapstructure:"top_n" yaml:"top_n"`
	IncludeRegions bool     `mapstructure:"include_regions" yaml:"include_regions"`

	// Ingestion
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal    string `mapstructure:"decimal" yaml:"decimal"`
	Thousands  string `mapstructure:"thousands" yaml:"thousands"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP API
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("predictors", analysis.DefaultPredictors())
	v.SetDefault("clusters", 3)
	v.SetDefault("cluster_seed", 0)
	v.SetDefault("forecast_years", 5)
	v.SetDefault("forecast_method", "arima")
	v.SetDefault("top_n", 10)
	v.SetDefault("include_regions", false)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", "")
	v.SetDefault("thousands", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("server_addr", ":8080")
}

// Defaults returns the configuration used when no file or env overrides exist.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// DefaultPath returns ~/.mortstat/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".mortstat", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.mortstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine; a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// comma-separated env values arrive as a single element
	if len(c.Predictors) == 1 && strings.Contains(c.Predictors[0], ",") {
		c.Predictors = splitList(c.Predictors[0])
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges that the analyses would reject later.
func (c *Global) Validate() error {
	if c.Clusters < 1 || c.Clusters > analysis.MaxClusters {
		return fmt.Errorf("clusters must be in 1..%d, got %d", analysis.MaxClusters, c.Clusters)
	}
	if c.ForecastYears < 0 || c.ForecastYears > analysis.MaxForecastYears {
		return fmt.Errorf("forecast_years must be in 0..%d, got %d", analysis.MaxForecastYears, c.ForecastYears)
	}
	if c.SheetIndex < 0 {
		return fmt.Errorf("sheet_index must be >= 0, got %d", c.SheetIndex)
	}
	for key, s := range map[string]string{"delimiter": c.Delimiter, "decimal": c.Decimal, "thousands": c.Thousands} {
		if _, err := ParseRune(s); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	keys := []string{
		"predictors", "clusters", "cluster_seed", "forecast_years", "forecast_method",
		"top_n", "include_regions", "delimiter", "decimal", "thousands", "sheet_name",
		"sheet_index", "log_level", "log_format", "server_addr",
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a single key from its string form. c is left unchanged when the
// value does not parse or the result fails Validate.
func (c *Global) Set(key, val string) error {
	next := *c
	if err := next.assign(key, val); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Global) assign(key, val string) error {
	var err error
	switch key {
	case "predictors":
		c.Predictors = splitList(val)
	case "clusters":
		c.Clusters, err = cast.ToIntE(val)
	case "cluster_seed":
		c.ClusterSeed, err = cast.ToInt64E(val)
	case "forecast_years":
		c.ForecastYears, err = cast.ToIntE(val)
	case "forecast_method":
		c.ForecastMethod = strings.ToLower(strings.TrimSpace(val))
	case "top_n":
		c.TopN, err = cast.ToIntE(val)
	case "include_regions":
		c.IncludeRegions, err = cast.ToBoolE(val)
	case "delimiter":
		c.Delimiter = val
	case "decimal":
		c.Decimal = val
	case "thousands":
		c.Thousands = val
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		c.SheetIndex, err = cast.ToIntE(val)
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	case "server_addr":
		c.ServerAddr = val
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// ParseRune reads a single separator character. "tab" and `\t` name a tab;
// empty input yields 0.
func ParseRune(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

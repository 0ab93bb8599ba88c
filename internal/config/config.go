// Package config loads slack-history settings from defaults, an optional
// YAML file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (SLACK_HISTORY_TIMEZONE, ...).
const EnvPrefix = "SLACK_HISTORY"

// TokenEnvVars are read, in order, for the bot token.
var TokenEnvVars = []string{"SLACK_BOT_TOKEN", "DFAB_BOT"}

// Output formats understood by the exporter.
var Formats = []string{"json", "text", "ndjson", "csv"}

// Config holds application configuration.
type Config struct {
	Channels []string `yaml:"channels" mapstructure:"channels"`
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`
	Timezone string   `yaml:"timezone" mapstructure:"timezone"`
	Format   string   `yaml:"format" mapstructure:"format"`
	APIURL   string   `yaml:"api_url" mapstructure:"api_url"`

	// Token only ever comes from the environment, never from the file.
	Token string `yaml:"-" mapstructure:"-"`
}

// DefaultConfigPath returns ~/.config/slack-history/slack-history.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "slack-history", "slack-history.yaml")
	}
	return filepath.Join(home, ".config", "slack-history", "slack-history.yaml")
}

// Load reads configuration. An explicit path must exist; with an empty path
// the default location is used if present. Environment variables override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("channels", []string{"daily-logs"})
	v.SetDefault("exclude", []string{})
	v.SetDefault("timezone", "Local")
	v.SetDefault("format", "json")
	v.SetDefault("api_url", "https://slack.com/api/")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if def := DefaultConfigPath(); fileExists(def) {
		v.SetConfigFile(def)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", def)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	token, err := envToken()
	if err != nil {
		return nil, err
	}
	cfg.Token = token

	// A comma separated SLACK_HISTORY_CHANNELS arrives as a single element.
	cfg.Channels = splitList(cfg.Channels)
	cfg.Exclude = splitList(cfg.Exclude)
	return &cfg, nil
}

// envToken reads the bot token from TokenEnvVars only.
func envToken() (string, error) {
	env := viper.New()
	if err := env.BindEnv(append([]string{"token"}, TokenEnvVars...)...); err != nil {
		return "", errors.Wrap(err, "bind token env")
	}
	return env.GetString("token"), nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return errors.New("at least one channel is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if !validFormat(c.Format) {
		return errors.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Token == "" {
		return errors.Errorf("bot token is not set (export %s)", TokenEnvVars[0])
	}
	return nil
}

// Location returns the configured time zone. "Local" and "" mean the
// process's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

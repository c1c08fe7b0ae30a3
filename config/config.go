// Package config loads settings from flags, WANDERER_ environment variables
// and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigPortalURL       = "portal-url"
	ConfigFeatureLayerURL = "feature-layer-url"
	ConfigUsername        = "username"
	ConfigPollInterval    = "poll-interval"
	ConfigMaxUnknownPolls = "max-unknown-polls"
	ConfigHTTPTimeout     = "http-timeout"
	ConfigHTTPRetries     = "http-retries"
	ConfigSampleMaxRounds = "sample-max-rounds"
	ConfigEndOnArrival    = "end-on-arrival"
	ConfigSaveBackend     = "save-backend"
	ConfigSqlitePath      = "sqlite-path"
	ConfigNatsURL         = "nats-url"
	ConfigNatsSubject     = "nats-subject"
	ConfigHistoryFile     = "history-file"
	ConfigDebug           = "debug"
	ConfigConfigFile      = "config"
)

const (
	SaveBackendArcGIS = "arcgis"
	SaveBackendSqlite = "sqlite"
	SaveBackendNone   = "none"
)

// Config wraps viper with the game's keys.
type Config struct {
	*viper.Viper
}

// Load reads the settings. Flags win over the environment, which wins over
// the config file.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("wanderer", pflag.ContinueOnError)
	fs.String(ConfigPortalURL, "https://www.arcgis.com/sharing/rest", "portal REST endpoint")
	fs.String(ConfigFeatureLayerURL,
		"https://services7.arcgis.com/iYTqAIgyDcVSpgzf/arcgis/rest/services/World_Cities/FeatureServer/0",
		"cities feature layer")
	fs.String(ConfigUsername, "", "portal user name; prompted for if empty")
	fs.Duration(ConfigPollInterval, 5*time.Second, "wait between job status checks")
	fs.Int(ConfigMaxUnknownPolls, 60, "status checks in a row without a known status before a move fails; 0 is unbounded")
	fs.Duration(ConfigHTTPTimeout, 30*time.Second, "timeout of a single HTTP request")
	fs.Int(ConfigHTTPRetries, 3, "attempts for idempotent reads while the backend is unavailable")
	fs.Int(ConfigSampleMaxRounds, 1000, "most id batches drawn when picking cities; 0 is unbounded")
	fs.Bool(ConfigEndOnArrival, false, "end the game when the destination is reached")
	fs.String(ConfigSaveBackend, SaveBackendArcGIS, "where saved games go: arcgis, sqlite or none")
	fs.String(ConfigSqlitePath, "./wanderer.db", "sqlite archive of saved games")
	fs.String(ConfigNatsURL, "", "NATS server for game events; empty disables them")
	fs.String(ConfigNatsSubject, "wanderer.events", "subject prefix for game events")
	fs.String(ConfigHistoryFile, "/tmp/wanderer_readline.tmp", "readline history file")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigConfigFile, "", "optional config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix("wanderer")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	if f := c.GetString(ConfigConfigFile); f != "" {
		c.SetConfigFile(f)
		if err := c.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch b := c.GetString(ConfigSaveBackend); b {
	case SaveBackendArcGIS, SaveBackendSqlite, SaveBackendNone:
	default:
		return fmt.Errorf("unknown save backend %q", b)
	}
	if c.GetInt(ConfigHTTPRetries) < 1 {
		return fmt.Errorf("%s must be at least 1", ConfigHTTPRetries)
	}
	if c.GetDuration(ConfigPollInterval) <= 0 {
		return fmt.Errorf("%s must be positive", ConfigPollInterval)
	}
	return nil
}

// SanitizedSettings returns every setting fit for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

// AdjustRelativePaths makes file paths relative to basepath, the
// directory of the executable.
func (c *Config) AdjustRelativePaths(basepath string) {
	for _, key := range []string{ConfigSqlitePath, ConfigHistoryFile} {
		p := c.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			continue
		}
		c.Set(key, filepath.Join(basepath, p))
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/battwarn/internal/errors"
	"codeberg.org/mutker/battwarn/internal/warning"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultInterval  = 60
	DefaultLogLevel  = string(LogLevelInfo)
	DefaultUrgency   = string(UrgencyCritical)
	DefaultSound     = "battery-low"
	DefaultIcon      = "battery-caution"
	DefaultMetricsDB = "/var/lib/battwarn/metrics.db"
	defaultPrefix    = "BATTWARN"
	configName       = "battwarn"
)

type Config struct {
	Low       *int
	Critical  *int
	Interval  int
	LogLevel  string
	Urgency   string
	Sound     string
	Icon      string
	Timeout   int
	Metrics   bool
	MetricsDB string
}

// flag name -> viper key
var flagKeys = map[string]string{
	"low":        "low",
	"critical":   "critical",
	"interval":   "interval",
	"log-level":  "log_level",
	"urgency":    "urgency",
	"sound":      "sound",
	"icon":       "icon",
	"timeout":    "timeout",
	"metrics":    "metrics",
	"metrics-db": "metrics_db",
}

// Load reads configuration from defaults, the config file, the environment
// and command line flags, in increasing order of precedence, and validates it.
func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: defaultPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}
	if !o.argsSet {
		o.args = os.Args[1:]
	}

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("urgency", DefaultUrgency)
	v.SetDefault("sound", DefaultSound)
	v.SetDefault("icon", DefaultIcon)
	v.SetDefault("timeout", 0)
	v.SetDefault("metrics", false)
	v.SetDefault("metrics_db", DefaultMetricsDB)

	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	flags.Int("low", 0, "The battery percentage at which to warn the user about low battery")
	flags.Int("critical", 0, "The battery percentage at which to warn the user about critical battery")
	flags.Int("interval", DefaultInterval, "Check battery level at this interval (seconds)")
	flags.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	flags.String("urgency", DefaultUrgency, "Notification urgency (low, normal, critical)")
	flags.String("sound", DefaultSound, "Notification sound name")
	flags.String("icon", DefaultIcon, "Notification icon name")
	flags.Int("timeout", 0, "Notification timeout in seconds, 0 keeps it until dismissed")
	flags.Bool("metrics", false, "Record battery samples and alerts to a SQLite database")
	flags.String("metrics-db", DefaultMetricsDB, "Path to the metrics database")
	configFlag := flags.String("config", "", "Path to the configuration file")

	if err := flags.Parse(o.args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath := o.configPath
	if *configFlag != "" {
		configPath = *configFlag
	}
	if configPath == "" {
		configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	cfg := &Config{
		Interval:  v.GetInt("interval"),
		LogLevel:  v.GetString("log_level"),
		Urgency:   v.GetString("urgency"),
		Sound:     v.GetString("sound"),
		Icon:      v.GetString("icon"),
		Timeout:   v.GetInt("timeout"),
		Metrics:   v.GetBool("metrics"),
		MetricsDB: v.GetString("metrics_db"),
	}
	if v.IsSet("low") {
		low := v.GetInt("low")
		cfg.Low = &low
	}
	if v.IsSet("critical") {
		critical := v.GetInt("critical")
		cfg.Critical = &critical
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	errFactory := errors.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, configName))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	return nil
}

// Validate checks the configuration before any polling starts.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if !Urgency(c.Urgency).IsValid() {
		return errFactory.WithData(errors.ErrInvalidUrgency, c.Urgency)
	}

	if c.Timeout < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("timeout=%d", c.Timeout))
	}

	if _, err := c.Thresholds(); err != nil {
		return err
	}

	return nil
}

// Thresholds converts the configured percentages into warning thresholds.
func (c *Config) Thresholds() (warning.Thresholds, error) {
	return warning.NewThresholds(c.Low, c.Critical)
}

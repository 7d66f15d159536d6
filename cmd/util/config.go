package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of configuration files.
	ConfigFileName = "featureviz"

	// EnvPrefix is the prefix of environment variables, e.g.,
	// FEATUREVIZ_LOG_LEVEL or FEATUREVIZ_SERVER_ADDR.
	EnvPrefix = "FEATUREVIZ"
)

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultFormat      = "text"
	DefaultOrientation = "rotate y 0;"
	DefaultAddr        = "localhost:8085"
	DefaultPosesFile   = "poses.yaml"
)

// Config holds everything the featureviz commands can be configured with.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Output format of commands printing results.
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// Molecules (0 or 1) that must not be moved.
	Lock []int `mapstructure:"lock" yaml:"lock" json:"lock"`

	// Score cutoff, empty to use the alignment file's default.
	Cutoff string `mapstructure:"cutoff" yaml:"cutoff" json:"cutoff"`

	// Orientation reported for the fixed viewer when no real viewer is
	// connected.
	Orientation string `mapstructure:"orientation" yaml:"orientation" json:"orientation"`

	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr" json:"addr"`
	PosesFile string `mapstructure:"poses_file" yaml:"poses_file" json:"poses_file"`
}

// Validate checks the values that can't be checked by their type.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format '%s'", c.LogFormat)
	}
	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format '%s'", c.Format)
	}
	for _, i := range c.Lock {
		if i != 0 && i != 1 {
			return fmt.Errorf("cannot lock molecule %d: there are only "+
				"molecules 0 and 1", i)
		}
	}
	if _, _, err := c.CutoffValue(); err != nil {
		return err
	}
	if len(c.Server.Addr) == 0 {
		return errors.New("server address is empty")
	}
	return nil
}

// Locked returns which molecules are locked.
func (c *Config) Locked() [2]bool {
	var locked [2]bool
	for _, i := range c.Lock {
		if i == 0 || i == 1 {
			locked[i] = true
		}
	}
	return locked
}

// CutoffValue returns the configured score cutoff. ok is false when none
// was configured.
func (c *Config) CutoffValue() (cutoff float64, ok bool, err error) {
	s := strings.TrimSpace(c.Cutoff)
	if len(s) == 0 {
		return 0, false, nil
	}
	cutoff, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid cutoff '%s': %w", c.Cutoff, err)
	}
	return cutoff, true, nil
}

// Loader reads a Config from a file, the environment and any flags bound to
// its viper instance.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on v. A nil v uses a fresh viper instance.
func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Viper returns the loader's viper instance, for binding flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the configuration. If configFile is empty, a file named
// featureviz.yaml is searched for in the usual places and it is not an error
// if there is none.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setDefaults()
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()

	if len(configFile) > 0 {
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file '%s': %w",
				configFile, err)
		}
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("log_level", DefaultLogLevel)
	l.v.SetDefault("log_format", DefaultLogFormat)
	l.v.SetDefault("verbose", false)
	l.v.SetDefault("format", DefaultFormat)
	l.v.SetDefault("lock", []int{})
	l.v.SetDefault("cutoff", "")
	l.v.SetDefault("orientation", DefaultOrientation)
	l.v.SetDefault("server.addr", DefaultAddr)
	l.v.SetDefault("server.poses_file", DefaultPosesFile)
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "featureviz"))
	}
	l.v.AddConfigPath("/etc/featureviz")
}

// Package config loads wikiword settings from an optional YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "WIKIWORD_CONFIG"

// defaultPath is read when present and no path was given explicitly
const defaultPath = "./wikiword.yaml"

// Config is the root configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Random RandomConfig `yaml:"random"`
}

// APIConfig holds MediaWiki API client settings.
type APIConfig struct {
	Endpoint  string        `yaml:"endpoint"   env:"WIKIWORD_API_ENDPOINT" env-default:"https://en.wiktionary.org/w/api.php"`
	UserAgent string        `yaml:"user_agent" env:"WIKIWORD_USER_AGENT"   env-default:"wikiword/0.1 (https://github.com/chriscorrea/wikiword)"`
	Timeout   time.Duration `yaml:"timeout"    env:"WIKIWORD_API_TIMEOUT"  env-default:"30s"`
}

// RandomConfig holds word-of-the-day settings.
//
// ArchiveTitle receives (year, month name) and DayTitle receives
// (month name, day of month); both use explicit argument indexes so they
// can be reordered for other wikis. An empty EntryPattern keeps the
// picker's built-in pattern.
type RandomConfig struct {
	MaxTries     int      `yaml:"max_tries"     env:"WIKIWORD_MAX_TRIES"     env-default:"5"`
	ArchiveTitle string   `yaml:"archive_title" env:"WIKIWORD_ARCHIVE_TITLE" env-default:"Wiktionary:Word of the day/Archive/%[1]d/%[2]s"`
	DayTitle     string   `yaml:"day_title"     env:"WIKIWORD_DAY_TITLE"     env-default:"Wiktionary:Word of the day/%[1]s %[2]d"`
	EntryPattern string   `yaml:"entry_pattern" env:"WIKIWORD_ENTRY_PATTERN"`
	MonthNames   []string `yaml:"month_names"   env:"WIKIWORD_MONTH_NAMES"   env-separator:"," env-default:"January,February,March,April,May,June,July,August,September,October,November,December"`
}

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The file path is path if non-empty, else $WIKIWORD_CONFIG, else
// ./wikiword.yaml. A missing default file is not an error; configuration
// then comes from ENV + defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv(EnvPath)
	}
	explicitPath := path != ""
	if !explicitPath {
		path = defaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that tags cannot express.
func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint must be set")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be > 0 (got %s)", c.API.Timeout)
	}
	if c.Random.MaxTries < 1 {
		return fmt.Errorf("random.max_tries must be >= 1 (got %d)", c.Random.MaxTries)
	}
	if n := len(c.Random.MonthNames); n != 12 {
		return fmt.Errorf("random.month_names must list 12 months (got %d)", n)
	}
	return nil
}

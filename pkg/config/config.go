package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/user/paywall-reader/internal/extractor"
)

const (
	envPrefix       = "PAYWALL"
	defaultFileName = "paywall-reader"

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds the application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Output    OutputConfig    `mapstructure:"output"`
	Selectors extractor.Rules `mapstructure:"selectors"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is json or console. Empty lets the command pick.
	Format string `mapstructure:"format"`
}

type BrowserConfig struct {
	Headless           bool          `mapstructure:"headless"`
	UserAgent          string        `mapstructure:"user_agent"`
	UserAgents         []string      `mapstructure:"user_agents"`
	Proxies            []string      `mapstructure:"proxies"`
	AcceptLanguage     string        `mapstructure:"accept_language"`
	WindowWidth        int           `mapstructure:"window_width"`
	WindowHeight       int           `mapstructure:"window_height"`
	PageLoadTimeout    time.Duration `mapstructure:"page_load_timeout"`
	SettleTimeout      time.Duration `mapstructure:"settle_timeout"`
	SettlePollInterval time.Duration `mapstructure:"settle_poll_interval"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig enables the result cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// PostgresConfig enables the article archive when URL is set.
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type OutputConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agent", DefaultUserAgent)
	v.SetDefault("browser.user_agents", []string{})
	v.SetDefault("browser.proxies", []string{})
	v.SetDefault("browser.accept_language", "en-US,en;q=0.9")
	v.SetDefault("browser.window_width", 1366)
	v.SetDefault("browser.window_height", 900)
	v.SetDefault("browser.page_load_timeout", 60*time.Second)
	v.SetDefault("browser.settle_timeout", 15*time.Second)
	v.SetDefault("browser.settle_poll_interval", 500*time.Millisecond)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 5*time.Second)
	// try_all can run six full browser sessions
	v.SetDefault("server.write_timeout", 10*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 24*time.Hour)

	v.SetDefault("postgres.url", "")

	v.SetDefault("output.file", "article.txt")

	v.SetDefault("selectors.title", []string{})
	v.SetDefault("selectors.author", []string{})
	v.SetDefault("selectors.date", []string{})
	v.SetDefault("selectors.body", []string{})
}

// Load reads configuration from defaults, an optional config file and
// PAYWALL_* environment variables, in increasing order of precedence.
// When path is empty a paywall-reader.{yaml,json,toml} in the working
// directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultFileName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late inside a browser session.
func (c *Config) Validate() error {
	if c.Browser.PageLoadTimeout <= 0 {
		return errors.New("browser.page_load_timeout must be positive")
	}
	if c.Browser.SettleTimeout < 0 {
		return errors.New("browser.settle_timeout must not be negative")
	}
	if c.Browser.SettlePollInterval <= 0 {
		return errors.New("browser.settle_poll_interval must be positive")
	}
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return errors.New("browser window size must be positive")
	}
	if c.Redis.Addr != "" && c.Redis.CacheTTL <= 0 {
		return errors.New("redis.cache_ttl must be positive when redis is enabled")
	}
	return nil
}

// CacheEnabled reports whether the Redis result cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// ArchiveEnabled reports whether the PostgreSQL archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Postgres.URL != ""
}

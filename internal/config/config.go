package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite or postgres
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost      int `mapstructure:"bcrypt_cost"`
	MaxLoginAttempt int `mapstructure:"max_login_attempts"`
	LockMinutes     int `mapstructure:"lock_minutes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CurrencyConfig is the display fallback for users without a default currency.
type CurrencyConfig struct {
	DefaultCode   string `mapstructure:"default_code"`
	DefaultSymbol string `mapstructure:"default_symbol"`
}

type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RenewalCron string `mapstructure:"renewal_cron"`
}

type AppSubConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	Log       LogConfig       `mapstructure:"log"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	App       AppSubConfig    `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml") once.
// A missing file is fine as long as the environment supplies what Validate
// needs. An optional .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		_ = godotenv.Load()
		appConfig, err = Read(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Read builds a Config from path and FT_* environment variables without
// touching the global instance.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FT_SERVER_PORT=9000
	v.SetEnvPrefix("FT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/finance.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "finance-tracker")
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.max_login_attempts", 5)
	v.SetDefault("security.lock_minutes", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("currency.default_code", "USD")
	v.SetDefault("currency.default_symbol", "$")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.renewal_cron", "0 6 * * *")
	v.SetDefault("app.page_size", 10)
	v.SetDefault("app.max_page_size", 100)
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 1 and 65535", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid server mode '%s': must be debug, release or test", c.Server.Mode))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database path cannot be empty when using sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			problems = append(problems, "database dsn cannot be empty when using postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver '%s': must be sqlite or postgres", c.Database.Driver))
	}

	if len(c.JWT.Secret) < 16 {
		problems = append(problems, "jwt secret must be at least 16 characters")
	}
	if c.JWT.ExpireHours <= 0 {
		problems = append(problems, "jwt expire_hours must be positive")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Log.Format))
	}

	if c.Currency.DefaultCode == "" || c.Currency.DefaultSymbol == "" {
		problems = append(problems, "currency default_code and default_symbol are required")
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.RenewalCron); err != nil {
			problems = append(problems, fmt.Sprintf("invalid scheduler renewal_cron '%s': %v", c.Scheduler.RenewalCron, err))
		}
	}

	if c.App.PageSize <= 0 || c.App.MaxPageSize < c.App.PageSize {
		problems = append(problems, "app page_size must be positive and not exceed max_page_size")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

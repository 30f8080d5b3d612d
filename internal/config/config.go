package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownStorageDriver        = errors.New("unknown storage driver")
	ErrInvalidConfig               = errors.New("invalid config")
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`         // current application environment (local, dev, production etc)
	TelegramAPIToken string  `mapstructure:"-"`           // Telegram API token loaded from environment
	LessonsDir       string  `mapstructure:"lessons_dir"` // directory with lesson JSON files
	Storage          Storage `mapstructure:"storage"`     // review data storage section
	Review           Review  `mapstructure:"review"`      // review sessions and reminders section
}

// Storage contains review data storage parameters.
type Storage struct {
	Driver          string        `mapstructure:"driver"`            // file, postgres or sqlite
	Dir             string        `mapstructure:"dir"`               // root directory of the file store
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file of the sqlite store
	URL             string        `mapstructure:"-"`                 // postgres connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Review contains review session and reminder parameters.
type Review struct {
	SaveTimeout        time.Duration `mapstructure:"save_timeout"`         // bound on a single save, 0 disables it
	ReminderSchedule   string        `mapstructure:"reminder_schedule"`    // cron spec of the reminder run
	RemindersPerSecond float64       `mapstructure:"reminders_per_second"` // outgoing reminder rate
}

// DSN returns the database connection string if it is configured.
func (s Storage) DSN() (string, error) {
	if s.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return s.URL, nil
}

// Validate checks values that viper cannot check by itself.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("%w: storage.dir is empty", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("%w: storage.sqlite_path is empty", ErrInvalidConfig)
		}
	case DriverPostgres:
		if _, err := c.Storage.DSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}

	if c.LessonsDir == "" {
		return fmt.Errorf("%w: lessons_dir is empty", ErrInvalidConfig)
	}
	if c.Review.SaveTimeout < 0 {
		return fmt.Errorf("%w: review.save_timeout is negative", ErrInvalidConfig)
	}
	if c.Review.RemindersPerSecond <= 0 {
		return fmt.Errorf("%w: review.reminders_per_second must be positive", ErrInvalidConfig)
	}

	return nil
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	return load("./config")
}

func load(configPaths ...string) (*Config, error) {
	// A missing .env file is fine: variables may come from the environment.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("lessons_dir", "assets/lessons")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dir", "data/reviews")
	v.SetDefault("storage.sqlite_path", "data/reviews.db")
	v.SetDefault("storage.max_connections", 20)
	v.SetDefault("storage.max_conn_lifetime", "30s")
	v.SetDefault("review.save_timeout", "10s")
	v.SetDefault("review.reminder_schedule", "0 * * * *")
	v.SetDefault("review.reminders_per_second", 25)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.Storage.URL = v.GetString("database_url")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// RequireToken reports an error when the Telegram token is not set.
func (c *Config) RequireToken() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	return nil
}

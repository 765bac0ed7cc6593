// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Marketplace rules
	SuperAdminEmails       []string `mapstructure:"-"`
	ContactUnlockCost      int      `mapstructure:"CONTACT_UNLOCK_COST"`
	SignupBonusCredits     int      `mapstructure:"SIGNUP_BONUS_CREDITS"`
	DefaultJobLifespanDays int      `mapstructure:"DEFAULT_JOB_LIFESPAN_DAYS"`
	SearchMaxResults       int      `mapstructure:"SEARCH_MAX_RESULTS"`

	// Cron Jobs
	JobExpirySchedule string `mapstructure:"JOB_EXPIRY_SCHEDULE"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Elasticsearch Configuration. Empty URL disables the candidate index mirror.
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SuperAdminEmails = splitList(v.GetString("SUPER_ADMIN_EMAILS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "mybench_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SUPER_ADMIN_EMAILS", "")
	v.SetDefault("CONTACT_UNLOCK_COST", 1)
	v.SetDefault("SIGNUP_BONUS_CREDITS", 5)
	v.SetDefault("DEFAULT_JOB_LIFESPAN_DAYS", 30)
	v.SetDefault("SEARCH_MAX_RESULTS", 500)
	v.SetDefault("JOB_EXPIRY_SCHEDULE", "@hourly")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")

	v.SetDefault("ELASTICSEARCH_URL", "")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.ContactUnlockCost < 0 {
		return fmt.Errorf("CONTACT_UNLOCK_COST must not be negative, got %d", c.ContactUnlockCost)
	}
	if c.SignupBonusCredits < 0 {
		return fmt.Errorf("SIGNUP_BONUS_CREDITS must not be negative, got %d", c.SignupBonusCredits)
	}
	if c.DefaultJobLifespanDays <= 0 {
		return fmt.Errorf("DEFAULT_JOB_LIFESPAN_DAYS must be positive, got %d", c.DefaultJobLifespanDays)
	}
	if strings.TrimSpace(c.FirebaseServiceAccountKeyPath) == "" {
		return fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_KEY_PATH is not set. This is required for Firebase Admin SDK initialization")
	}
	if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
	}
	return nil
}

// DSN builds the Postgres connection string from the individual DB_* settings.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

// IsSuperAdminEmail reports whether the email is configured as a platform super admin.
func (c *Config) IsSuperAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range c.SuperAdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

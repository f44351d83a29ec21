package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	App        AppConfig
	Kafka      KafkaConfig
	Summarizer SummarizerConfig
	Reminders  RemindersConfig
	Logging    LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  uint64
}

// DSN returns the data source name for the configured driver
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// AuthConfig holds the settings used to verify tokens issued by the auth provider
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// SMTPConfig holds outbound mail settings
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	// TemplatesPath is a directory of HTML overrides for the built-in email templates
	TemplatesPath string
}

// AppConfig holds settings used when building links inside emails
type AppConfig struct {
	BaseURL            string
	DefaultLandingPath string
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topics   TopicsConfig
}

// TopicsConfig names the topics domain events are published to
type TopicsConfig struct {
	Audit         string
	Notifications string
}

// SummarizerConfig holds settings for the report summarization endpoint
type SummarizerConfig struct {
	Enabled bool
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RemindersConfig holds cron specs for the reminder jobs
type RemindersConfig struct {
	Enabled          bool
	EvaluationSpec   string
	TermEndingSpec   string
	TermEndingWindow time.Duration
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Read from environment variables, e.g. SMTP_HOST overrides smtp.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka enabled but no brokers configured")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "internship")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "internship.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.connectRetries", 5)

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")

	// SMTP defaults
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.fromEmail", "no-reply@localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.fromName", "Internship Portal")
	v.SetDefault("smtp.useTLS", true)
	v.SetDefault("smtp.templatesPath", "templates")

	// Link defaults
	v.SetDefault("app.baseURL", "http://localhost:3000")
	v.SetDefault("app.defaultLandingPath", "/dashboard")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.clientID", "internship-platform")
	v.SetDefault("kafka.topics.audit", "audit-events")
	v.SetDefault("kafka.topics.notifications", "notification-events")

	// Summarizer defaults
	v.SetDefault("summarizer.enabled", false)
	v.SetDefault("summarizer.url", "")
	v.SetDefault("summarizer.apiKey", "")
	v.SetDefault("summarizer.model", "")
	v.SetDefault("summarizer.timeout", "20s")

	// Reminder defaults
	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.evaluationSpec", "0 8 * * 1")
	v.SetDefault("reminders.termEndingSpec", "0 9 * * *")
	v.SetDefault("reminders.termEndingWindow", "168h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

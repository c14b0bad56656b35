package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	AppPort    string `env:"APP_PORT" envDefault:"8080"`
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	MySQLHost        string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort        string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB          string `env:"MYSQL_DB" envDefault:"devices"`
	MySQLUser        string `env:"MYSQL_USER" envDefault:"devices"`
	MySQLPass        string `env:"MYSQL_PASS" envDefault:"devices"`
	DBMigrateOnStart bool   `env:"DB_MIGRATE_ON_START" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"redis:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	IdempTTLSecs int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	SMTP SMTP `envPrefix:"SMTP_"`

	NotifyQueueBuffer int           `env:"NOTIFY_QUEUE_BUFFER" envDefault:"256"`
	NotifyMaxRetries  int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	NotifyRetryDelay  time.Duration `env:"NOTIFY_RETRY_DELAY" envDefault:"2s"`
}

// SMTP is optional; an empty host disables outgoing mail.
type SMTP struct {
	Host       string `env:"HOST"`
	Port       string `env:"PORT" envDefault:"587"`
	User       string `env:"USER"`
	Password   string `env:"PASSWORD"`
	From       string `env:"FROM"`
	TLSEnabled bool   `env:"TLS_ENABLED" envDefault:"false"`
}

// Load reads the optional env files first; real environment variables win.
func Load(envFiles ...string) (*Config, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, errors.Wrap(err, "load env files")
		}
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	if c.NotifyQueueBuffer <= 0 {
		return fmt.Errorf("NOTIFY_QUEUE_BUFFER must be positive, got %d", c.NotifyQueueBuffer)
	}
	if c.NotifyMaxRetries < 0 {
		return fmt.Errorf("NOTIFY_MAX_RETRIES must not be negative, got %d", c.NotifyMaxRetries)
	}
	if c.SMTP.Host != "" && c.SMTP.User == "" {
		return errors.New("SMTP_USER is required when SMTP_HOST is set")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Ingest struct {
		Workers int    `envconfig:"INGEST_WORKERS" default:"4"`
		DryRun  bool   `envconfig:"INGEST_DRY_RUN" default:"false"`
		SMSFile string `envconfig:"INGEST_SMS_FILE"`
		MailDir string `envconfig:"INGEST_MAIL_DIR"`
	}

	Gmail struct {
		Enabled         bool   `envconfig:"GMAIL_ENABLED" default:"false"`
		CredentialsFile string `envconfig:"GMAIL_CREDENTIALS_FILE" default:"credentials.json"`
		TokenFile       string `envconfig:"GMAIL_TOKEN_FILE" default:"token.json"`
		Query           string `envconfig:"GMAIL_QUERY" default:"is:unread in:inbox"`
		MaxResults      int64  `envconfig:"GMAIL_MAX_RESULTS" default:"100"`
		MarkRead        bool   `envconfig:"GMAIL_MARK_READ" default:"false"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

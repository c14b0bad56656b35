package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.AppPort != "8080" || c.IdempTTLSecs != 300 || c.NotifyRetryDelay != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "MYSQL_HOST=filehost\nSMTP_HOST=smtp.example.com\nSMTP_USER=noreply\nNOTIFY_MAX_RETRIES=5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MYSQL_HOST", "envhost")
	// godotenv only sets variables that are not already present
	t.Setenv("SMTP_HOST", "")
	os.Unsetenv("SMTP_HOST")
	t.Setenv("SMTP_USER", "")
	os.Unsetenv("SMTP_USER")
	t.Setenv("NOTIFY_MAX_RETRIES", "")
	os.Unsetenv("NOTIFY_MAX_RETRIES")

	c, err := Load(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.MySQLHost != "envhost" {
		t.Fatalf("MySQLHost = %q, want envhost", c.MySQLHost)
	}
	if c.SMTP.Host != "smtp.example.com" || c.SMTP.User != "noreply" || c.NotifyMaxRetries != 5 {
		t.Fatalf("file values not applied: %+v", c)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "d", MySQLUser: "u",
			IdempTTLSecs: 60, NotifyQueueBuffer: 1,
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "missing host", mutate: func(c *Config) { c.MySQLHost = "" }, wantErr: "missing MySQL"},
		{name: "bad port", mutate: func(c *Config) { c.MySQLPort = "notaport" }, wantErr: "MYSQL_PORT"},
		{name: "missing app port", mutate: func(c *Config) { c.AppPort = "" }, wantErr: "APP_PORT"},
		{name: "zero ttl", mutate: func(c *Config) { c.IdempTTLSecs = 0 }, wantErr: "IDEMPOTENCY_TTL_SECONDS"},
		{name: "smtp without user", mutate: func(c *Config) { c.SMTP.Host = "smtp" }, wantErr: "SMTP_USER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "devices"}
	want := "u:p@tcp(db:3306)/devices?multiStatements=true&parseTime=true&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Outbox  OutboxConfig
	Sheets  SheetsConfig
	Jobs    JobsConfig
	MongoDB MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// AuthConfig carries the signing material for session tokens.
type AuthConfig struct {
	JWTSecret string
}

// OutboxConfig locates the local queue used while the store is unreachable.
type OutboxConfig struct {
	Path string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Both fields empty means the export feature is disabled.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// JobsConfig holds scheduler-related settings.
type JobsConfig struct {
	SyncCron   string
	ExportCron string
	Timezone   string
	PingURL    string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
		Outbox: OutboxConfig{
			Path: getenvWithDefault("OUTBOX_PATH", "data/outbox.db"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Jobs: JobsConfig{
			SyncCron:   getenvWithDefault("SYNC_CRON_SCHEDULE", "*/5 * * * *"),
			ExportCron: getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:   getenvWithDefault("TIMEZONE", "America/Bogota"),
			PingURL:    getenvWithDefault("PING_URL", "https://www.google.com/generate_204"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "avicola"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Outbox.Path == "" {
		return errors.New("OUTBOX_PATH must be provided")
	}

	// Sheets export is optional, but partial credentials indicate a broken
	// deployment rather than a disabled feature.
	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_DATABASE_ID is set")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided when GOOGLE_SHEETS_CREDENTIALS_PATH is set")
		}
	}

	if c.Jobs.SyncCron == "" {
		return errors.New("SYNC_CRON_SCHEDULE must be provided")
	}

	if c.Jobs.ExportCron == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}

	if c.Jobs.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	return nil
}

// Enabled reports whether at least one of the sheets fields was configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" || s.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	IdentityBackendAppwrite = "appwrite"
	IdentityBackendPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	TLS        TLSConfig
	Database   DatabaseConfig
	Identity   IdentityConfig
	Plaid      PlaidConfig
	Dwolla     DwollaConfig
	Encryption EncryptionConfig
	Firebase   FirebaseConfig
	Telemetry  TelemetryConfig
	Logging    LoggingConfig
	Messages   MessagesConfig
	Scheduler  SchedulerConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Environment    string
	AllowedOrigins []string
	// AllowedHosts limits the hosts the HTTPS redirect server answers for.
	AllowedHosts   []string
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// IdentityConfig selects and configures the identity/database backend.
// DatabaseID and the collection ids only apply to the appwrite backend.
type IdentityConfig struct {
	Backend          string
	Endpoint         string
	ProjectID        string
	APIKey           string
	DatabaseID       string
	UserCollectionID string
	BankCollectionID string
}

type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string
}

type DwollaConfig struct {
	Key         string
	Secret      string
	Environment string
}

type EncryptionConfig struct {
	Key string
}

type FirebaseConfig struct {
	Enabled         bool
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MessagesConfig struct {
	Path string
}

// SchedulerConfig sizes the background worker pool. ScheduleTimes are the
// "HH:MM" times at which expired sessions are purged.
type SchedulerConfig struct {
	WorkerCount   int
	QueueSize     int
	ScheduleTimes []string
}

func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	workerCount, err := strconv.Atoi(getEnv("WORKER_COUNT", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %w", err)
	}

	queueSize, err := strconv.Atoi(getEnv("JOB_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_QUEUE_SIZE: %w", err)
	}

	scheduleTimes := getListEnv("SCHEDULER_TIMES")
	if len(scheduleTimes) == 0 {
		scheduleTimes = []string{"03:00"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "0.0.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			AllowedOrigins: getListEnv("ALLOWED_ORIGINS"),
			AllowedHosts:   getListEnv("ALLOWED_HOSTS"),
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "horizon"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "horizon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Identity: IdentityConfig{
			Backend:          strings.ToLower(getEnv("IDENTITY_BACKEND", IdentityBackendAppwrite)),
			Endpoint:         strings.TrimRight(getEnv("APPWRITE_ENDPOINT", "https://cloud.appwrite.io/v1"), "/"),
			ProjectID:        getEnv("APPWRITE_PROJECT", ""),
			APIKey:           getEnv("APPWRITE_KEY", ""),
			DatabaseID:       getEnv("APPWRITE_DATABASE_ID", ""),
			UserCollectionID: getEnv("APPWRITE_USER_COLLECTION_ID", ""),
			BankCollectionID: getEnv("APPWRITE_BANK_COLLECTION_ID", ""),
		},
		Plaid: PlaidConfig{
			ClientID:    getEnv("PLAID_CLIENT_ID", ""),
			Secret:      getEnv("PLAID_SECRET", ""),
			Environment: getEnv("PLAID_ENV", "sandbox"),
		},
		Dwolla: DwollaConfig{
			Key:         getEnv("DWOLLA_KEY", ""),
			Secret:      getEnv("DWOLLA_SECRET", ""),
			Environment: getEnv("DWOLLA_ENV", "sandbox"),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Firebase: FirebaseConfig{
			Enabled:         getBoolEnv("FIREBASE_ENABLED", false),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "horizon-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Messages: MessagesConfig{
			Path: getEnv("MESSAGES_PATH", "config/messages.yaml"),
		},
		Scheduler: SchedulerConfig{
			WorkerCount:   workerCount,
			QueueSize:     queueSize,
			ScheduleTimes: scheduleTimes,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Encryption.Key == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(c.Encryption.Key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	switch c.Identity.Backend {
	case IdentityBackendAppwrite:
		if c.Identity.ProjectID == "" || c.Identity.APIKey == "" {
			return fmt.Errorf("APPWRITE_PROJECT and APPWRITE_KEY are required for the appwrite identity backend")
		}
		if c.Identity.DatabaseID == "" || c.Identity.UserCollectionID == "" || c.Identity.BankCollectionID == "" {
			return fmt.Errorf("APPWRITE_DATABASE_ID, APPWRITE_USER_COLLECTION_ID and APPWRITE_BANK_COLLECTION_ID are required")
		}
	case IdentityBackendPostgres:
	default:
		return fmt.Errorf("invalid IDENTITY_BACKEND %q (want %q or %q)", c.Identity.Backend, IdentityBackendAppwrite, IdentityBackendPostgres)
	}

	if c.Plaid.ClientID == "" || c.Plaid.Secret == "" {
		return fmt.Errorf("PLAID_CLIENT_ID and PLAID_SECRET are required")
	}
	if c.Dwolla.Key == "" || c.Dwolla.Secret == "" {
		return fmt.Errorf("DWOLLA_KEY and DWOLLA_SECRET are required")
	}

	if c.Scheduler.WorkerCount < 1 || c.Scheduler.QueueSize < 1 {
		return fmt.Errorf("WORKER_COUNT and JOB_QUEUE_SIZE must be positive")
	}

	if c.Firebase.Enabled && c.Firebase.CredentialsFile == "" {
		return fmt.Errorf("FIREBASE_CREDENTIALS_FILE is required when FIREBASE_ENABLED=true")
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return nil
}

// IsProduction reports whether the server runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// loadEnvFile loads variables from a dotenv file without overriding
// variables already present in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getListEnv splits a comma separated variable, dropping empty entries.
func getListEnv(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreBackendWorkbook = "workbook"
	StoreBackendPostgres = "postgres"
)

// Config holds everything the intake service reads from the environment.
type Config struct {
	HTTP     HTTPConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	FHIR     FHIRConfig
}

type HTTPConfig struct {
	Addr string
}

// StoreConfig selects where accepted intakes are appended.
type StoreConfig struct {
	Backend       string // workbook | postgres
	WorkbookPath  string
	WorkbookSheet string
}

// DatabaseConfig is used when Store.Backend is postgres.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// RedisConfig enables the review queue when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

type FHIRConfig struct {
	Version string // STU3 | DSTU2
}

// GetDSN returns the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Load reads a .env file if present, then the environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnvOrDefault("HTTP_ADDR", ":8080")

	cfg.Store.Backend = getEnvOrDefault("STORE_BACKEND", StoreBackendWorkbook)
	cfg.Store.WorkbookPath = getEnvOrDefault("WORKBOOK_PATH", "data/copd_intake.xlsx")
	cfg.Store.WorkbookSheet = getEnvOrDefault("WORKBOOK_SHEET", "Intake")

	cfg.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(os.Getenv("DB_PORT"), 5432)
	cfg.Database.User = getEnvOrDefault("DB_USER", "postgres")
	cfg.Database.Password = getEnvOrDefault("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnvOrDefault("DB_NAME", "copd_intake")
	cfg.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(os.Getenv("DB_MAX_CONNS"), 10)
	cfg.Database.MaxIdle = parseInt(os.Getenv("DB_MAX_IDLE"), 5)

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = parseInt(os.Getenv("REDIS_DB"), 0)

	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvOrDefault("LOG_FORMAT", "json")

	cfg.FHIR.Version = getEnvOrDefault("FHIR_VERSION", "STU3")

	return cfg
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendWorkbook:
		if c.Store.WorkbookPath == "" {
			return fmt.Errorf("WORKBOOK_PATH is required for the %s store", StoreBackendWorkbook)
		}
	case StoreBackendPostgres:
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the %s store", StoreBackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", c.Store.Backend, StoreBackendWorkbook, StoreBackendPostgres)
	}
	if c.FHIR.Version != "STU3" && c.FHIR.Version != "DSTU2" {
		return fmt.Errorf("FHIR_VERSION must be STU3 or DSTU2, got %q", c.FHIR.Version)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

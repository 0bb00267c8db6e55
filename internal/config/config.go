package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"

	devJWTSecret = "workforce-dev-secret-change-me"
)

// PostgresConfig holds the connection settings for the relational backend.
type PostgresConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	ApplySchema bool
}

// DSN renders a lib/pq key/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Name, p.SSLMode)
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a report cache should be connected.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// Config centralises all environment and runtime configuration.
type Config struct {
	Port           string
	GinMode        string
	StoreDriver    string
	Mongo          MongoConfig
	Postgres       PostgresConfig
	Redis          RedisConfig
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool
	CivilTZOffset  string
}

// Load reads an optional .env file and builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file loaded, using process environment", map[string]interface{}{"reason": err.Error()})
	}
	return FromEnv()
}

// FromEnv builds the Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        utils.Getenv("PORT", "8080"),
		GinMode:     utils.Getenv("GIN_MODE", gin.DebugMode),
		StoreDriver: strings.ToLower(utils.Getenv("STORE_DRIVER", DriverMongo)),
		Mongo: MongoConfig{
			URI:      utils.Getenv("MONGO_URI", "mongodb://localhost:27017"),
			Database: utils.Getenv("MONGO_DB", "workforce"),
		},
		Postgres: PostgresConfig{
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "workforce_user"),
			Password:    utils.Getenv("DB_PASSWORD", "workforce_password"),
			Name:        utils.Getenv("DB_NAME", "workforce_db"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			ApplySchema: utils.GetenvBool("DB_APPLY_SCHEMA", false),
		},
		Redis: RedisConfig{
			Addr:     utils.Getenv("REDIS_ADDR", ""),
			Username: utils.Getenv("REDIS_USER", ""),
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			DB:       utils.GetenvInt("REDIS_DB", 0),
			TTL:      utils.GetenvDuration("REPORT_CACHE_TTL", 6*time.Hour),
		},
		JWTSecret:     utils.Getenv("JWT_SECRET", ""),
		JWTTTL:        utils.GetenvDuration("JWT_TTL", utils.DefaultAccessTokenTTL),
		LogLevel:      utils.Getenv("LOG_LEVEL", "info"),
		LogPretty:     utils.GetenvBool("LOG_PRETTY", false),
		CivilTZOffset: utils.Getenv("CIVIL_TZ_OFFSET", "+05:30"),
	}

	cfg.AllowedOrigins = splitOrigins(utils.Getenv("CORS_ALLOWED_ORIGINS", ""))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverPostgres)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.GinMode == gin.ReleaseMode {
			return errors.New("JWT_SECRET is required in release mode")
		}
		c.JWTSecret = devJWTSecret
	}
	return nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

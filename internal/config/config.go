package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. It is only fit for local runs.
const DefaultSessionSecret = "change-me"

// Store drivers understood by cmd/server.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
)

// Delete key scopes.
const (
	// DeleteKeyBound requires the supplied key to belong to the room being deleted.
	DeleteKeyBound = "bound"
	// DeleteKeyAny accepts any existing room key when deleting a room by id.
	DeleteKeyAny = "any"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Host string
	Port string

	StoreDriver string
	MongoURI    string
	MongoDBName string
	MySQLDSN    string
	SQLitePath  string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionSecret  string
	SessionTTL     time.Duration
	CookieSecure   bool
	CSRFEnabled    bool
	DeleteKeyScope string

	LogLevel    string
	LogFormat   string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		Host:           os.Getenv("IP"),
		Port:           getEnv("PORT", "8080"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DBNAME", "rehearsal_room"),
		MySQLDSN:       getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/rehearsal_room?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath:     getEnv("SQLITE_PATH", "bandroom.db"),
		ResetDB:        getEnvBool("RESET_DB", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		SessionSecret:  getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		CSRFEnabled:    getEnvBool("CSRF_ENABLED", true),
		DeleteKeyScope: strings.ToLower(getEnv("DELETE_KEY_SCOPE", DeleteKeyBound)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

// Addr is the listen address built from Host and Port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// InsecureSecret reports whether the session secret is still the built-in default.
func (c *Config) InsecureSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

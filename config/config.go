package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	AppEnv      string
	LogLevel    string
	StoreDriver string

	MongoURI    string
	MongoDB     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	FrontendOrigin string
	AdminEmail     string
	AdminPassword  string
	LoginRateLimit int
}

func LoadEnv() error {
	// A missing .env is fine; in production the variables are set directly.
	_ = godotenv.Load()
	return nil
}

// Load reads the configuration from the environment, loading .env first when
// one exists.
func Load() Config {
	_ = LoadEnv()

	return Config{
		Port:        GetEnv("PORT", "8000"),
		AppEnv:      GetEnv("APP_ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		StoreDriver: strings.ToLower(GetEnv("STORE_DRIVER", DriverMongo)),

		MongoURI:    FirstEnv("MONGO_URI", "MONGOURI", "MONGODB_URI"),
		MongoDB:     orDefault(FirstEnv("MONGO_DB", "MONGODB", "MONGODB_NAME"), "1023b"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		FrontendOrigin: os.Getenv("FRONTEND_ORIGIN"),
		AdminEmail:     GetEnv("ADMIN_EMAIL", "admin@loja.com"),
		AdminPassword:  GetEnv("ADMIN_PASSWORD", "admin123"),
		LoginRateLimit: GetEnvInt("LOGIN_RATE_LIMIT", 10),
	}
}

// ValidateEnv checks that critical settings are present for the selected
// store driver. Optional settings that are missing are only logged.
func ValidateEnv(cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	var missing []string
	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if cfg.StoreDriver == DriverMemory {
		logger.Warn("STORE_DRIVER=memory - data is lost on restart")
	}
	if cfg.FrontendOrigin == "" {
		logger.Warn("FRONTEND_ORIGIN not set - CORS allows every origin")
	}
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set - cart cache disabled")
	}
	if os.Getenv("ADMIN_PASSWORD") == "" {
		logger.Warn("ADMIN_PASSWORD not set - default admin uses the built-in password")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns defaultValue when key is unset or not a positive integer.
func GetEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// FirstEnv returns the first non-empty value among keys.
func FirstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	StorageBackend   string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	StorageKeyPrefix string
	MongoURI         string
	MongoDBName      string

	CatalogDBPath string

	KafkaBrokers  []string
	CheckoutTopic string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment. Outside production a
// .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", BackendRedis)),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		StorageKeyPrefix: getEnv("STORAGE_KEY_PREFIX", ""),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "food_cart"),
		CatalogDBPath:    getEnv("CATALOG_DB_PATH", ""),
		KafkaBrokers:     getEnvList("KAFKA_BROKERS"),
		CheckoutTopic:    getEnv("CHECKOUT_TOPIC", "checkout-outbox"),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch cfg.StorageBackend {
	case BackendRedis, BackendMongo, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

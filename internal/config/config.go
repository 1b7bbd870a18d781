package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Provide(Load)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// StoreLockTTLSeconds bounds how long a crashed order worker can
	// keep a store locked.
	StoreLockTTLSeconds int

	ProximityCacheTTLSeconds    int
	AvailabilityCacheTTLSeconds int

	// Delivery fee is waived once the subtotal reaches the threshold.
	FreeDeliveryThreshold int64
	DeliveryFlatFee       int64

	DispatchEnabled bool
	DispatchBrokers string
	DispatchTopic   string

	SeedDemoData bool

	MetricsEnabled  bool
	MetricsEndpoint string
	MetricsProtocol string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "fulfillment"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "fulfillment"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		StoreLockTTLSeconds: getenvInt("STORE_LOCK_TTL_SECONDS", 15),

		ProximityCacheTTLSeconds:    getenvInt("PROXIMITY_CACHE_TTL_SECONDS", 60),
		AvailabilityCacheTTLSeconds: getenvInt("AVAILABILITY_CACHE_TTL_SECONDS", 30),

		FreeDeliveryThreshold: getenvInt64("FREE_DELIVERY_THRESHOLD", 200),
		DeliveryFlatFee:       getenvInt64("DELIVERY_FLAT_FEE", 40),

		DispatchEnabled: getenvBool("DISPATCH_ENABLED", false),
		DispatchBrokers: getenv("DISPATCH_BROKERS", "localhost:9092"),
		DispatchTopic:   getenv("DISPATCH_TOPIC", "order.created"),

		SeedDemoData: getenvBool("SEED_DEMO_DATA", false),

		MetricsEnabled:  getenvBool("METRICS_ENABLED", false),
		MetricsEndpoint: getenv("METRICS_ENDPOINT", "localhost:4317"),
		MetricsProtocol: strings.ToLower(getenv("METRICS_PROTOCOL", "grpc")),
	}
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

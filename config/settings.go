package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Settings struct {
	Port        string
	Environment string
	LogLevel    string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string

	JWTSecret      string
	JWTExpiryHours int

	ListingsCacheTTL time.Duration
	GeocodeCacheTTL  time.Duration
	GeocodeURL       string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3BaseURL   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	PaymentKeyID     string
	PaymentKeySecret string
}

// Load reads the .env file when present and falls back to process
// environment variables.
func Load() Settings {
	_ = godotenv.Load()

	return Settings{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "estatehub"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		ListingsCacheTTL: getEnvDuration("LISTINGS_CACHE_TTL", 5*time.Minute),
		GeocodeCacheTTL:  getEnvDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		GeocodeURL:       getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org/search"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    getEnv("S3_REGION", "ap-south-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "estatehub-reviews"),
		S3BaseURL:   os.Getenv("S3_BASE_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),
	}
}

// CollectionName resolves MONGODB_COLLECTION_<KIND>, defaulting to fallback.
func CollectionName(kind, fallback string) string {
	return getEnv("MONGODB_COLLECTION_"+kind, fallback)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// ClientSettings configures the client core used by the shell.
type ClientSettings struct {
	APIURL             string
	Environment        string
	LogLevel           string
	DeviceID           string
	SessionRedisAddr   string
	SessionTTL         time.Duration
	InactivityInterval time.Duration
	RequestTimeout     time.Duration
}

func LoadClient() ClientSettings {
	_ = godotenv.Load()

	return ClientSettings{
		APIURL:             getEnv("ESTATEHUB_API_URL", "http://localhost:8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "warn"),
		DeviceID:           getEnv("ESTATEHUB_DEVICE_ID", "default"),
		SessionRedisAddr:   os.Getenv("SESSION_REDIS_ADDR"),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*24*time.Hour),
		InactivityInterval: getEnvDuration("INACTIVITY_CHECK_INTERVAL", time.Minute),
		RequestTimeout:     getEnvDuration("API_TIMEOUT", 15*time.Second),
	}
}

package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs from the environment.
type Config struct {
	// APIBaseURL is the root of the remote admin API.
	APIBaseURL string
	// CredentialsFile is where the access/refresh token pair persists.
	CredentialsFile string
	// HTTPTimeout applies to every request through the transport.
	HTTPTimeout time.Duration
	// RateLimit caps outgoing requests per second; 0 disables the limiter.
	RateLimit float64
	// Debug switches zap to development output.
	Debug bool

	// Demo-mode settings for the local sandbox backend.
	DemoPort    string
	MetricsAddr string
}

// Load reads .env files (local development) and the environment.
func Load() *Config {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			log.Println("⚠️  No .env file found - using environment variables")
		}
	}

	return &Config{
		APIBaseURL:      getEnv("SMSBRIDGE_API_URL", "http://localhost:8080"),
		CredentialsFile: getEnv("SMSBRIDGE_CREDENTIALS_FILE", defaultCredentialsFile()),
		HTTPTimeout:     getEnvDuration("SMSBRIDGE_HTTP_TIMEOUT", 30*time.Second),
		RateLimit:       getEnvFloat("SMSBRIDGE_RATE_LIMIT", 0),
		Debug:           os.Getenv("SMSBRIDGE_DEBUG") == "true",
		DemoPort:        getEnv("PORT", "8080"),
		MetricsAddr:     getEnv("SMSBRIDGE_METRICS_ADDR", ""),
	}
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smsbridge-credentials.json"
	}
	return filepath.Join(home, ".smsbridge", "credentials.json")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

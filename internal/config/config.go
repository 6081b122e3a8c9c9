// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverLocal  = "local"
	DriverRemote = "remote"
)

// DefaultMaxUploadBytes is the upload size ceiling (100 MiB).
const DefaultMaxUploadBytes int64 = 100 * 1024 * 1024

// Config holds all runtime configuration for the service.
// It is built once at startup and never mutated afterwards.
type Config struct {
	Port   string
	AppEnv string

	StorageDriver string

	// Local-disk deployment
	UploadDir       string
	UploadURLPrefix string // path the upload directory is served under, e.g. "/uploads"

	// Acceptance policy
	MaxUploadBytes int64
	StrictMIME     bool

	// Remote asset provider (S3-compatible)
	StorageEndpoint   string
	StorageRegion     string
	StorageAccount    string // account identifier; used as the bucket name
	StorageAccessKey  string
	StorageSecretKey  string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "https://cdn.example.com/uploads"
	StorageFolder     string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverLocal)),

		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		UploadURLPrefix: "/" + strings.Trim(getEnv("UPLOAD_URL_PREFIX", "/uploads"), "/"),

		MaxUploadBytes: getEnvInt64("UPLOAD_MAX_BYTES", DefaultMaxUploadBytes),
		StrictMIME:     getEnv("UPLOAD_STRICT_MIME", "false") == "true",

		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageRegion:     getEnv("STORAGE_REGION", "us-east-1"),
		StorageAccount:    getEnv("STORAGE_ACCOUNT", "uploads"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", "http://localhost:9000/uploads"),
		StorageFolder:     strings.Trim(getEnv("STORAGE_FOLDER", "uploads"), "/"),
	}
}

// UsesRemoteStorage reports whether uploads go to the remote asset provider.
func (c *Config) UsesRemoteStorage() bool {
	return c.StorageDriver == DriverRemote
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("config: ignoring invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

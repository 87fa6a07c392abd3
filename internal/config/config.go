package config

import (
	"os"
	"strconv"
	"strings"
)

// Server configuration
type ServerConfig struct {
	Port string
	Host string
}

// MongoDB configuration
type MongoConfig struct {
	URI      string
	Database string
}

// MinIO configuration
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Backend API configuration (opaque admin/user provisioning service)
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Minio     MinioConfig
	Backend   BackendConfig
	SentryDSN string
}

// Default configuration values
const (
	DefaultServerPort     = "8080"
	DefaultServerHost     = ""
	DefaultMongoURI       = "mongodb://localhost:27017/ridemap"
	DefaultMongoDB        = "ridemap"
	DefaultMinioEndpoint  = "localhost:9000"
	DefaultMinioAccessKey = "minioadmin"
	DefaultMinioSecretKey = "minioadmin"
	DefaultMinioBucket    = "ridemap"
	DefaultBackendBaseURL = "http://localhost:9090"
	DefaultBackendTimeout = 30
)

// New returns a new Config with values from the environment, falling back
// to defaults.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", DefaultServerPort),
			Host: getEnv("SERVER_HOST", DefaultServerHost),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", DefaultMongoURI),
			Database: getEnv("MONGO_DB", DefaultMongoDB),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", DefaultMinioEndpoint),
			AccessKey: getEnv("MINIO_ACCESS_KEY", DefaultMinioAccessKey),
			SecretKey: getEnv("MINIO_SECRET_KEY", DefaultMinioSecretKey),
			Bucket:    getEnv("MINIO_BUCKET", DefaultMinioBucket),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_API_URL", DefaultBackendBaseURL),
			TimeoutSeconds: getEnvInt("BACKEND_API_TIMEOUT", DefaultBackendTimeout),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

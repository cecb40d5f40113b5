// Package config provides configuration management for the application
package config

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

// RedisConfig holds Redis/Valkey configuration
type RedisConfig struct {
	Enabled bool
	// URI is prioritized if provided, otherwise individual connection parameters are used
	URI       string
	Host      string
	Port      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	// TTL for rooms (0 means rooms are kept forever)
	RoomTTL time.Duration
}

// DirectoryConfig holds configuration for the member directory.
// When BaseURL is set, identities are resolved against an external user
// service; otherwise the in-memory directory seeded from Users is used.
type DirectoryConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Users seeds the in-memory directory: "username:email" pairs
	// separated by commas
	Users string
}

// GetServerConfig loads server configuration from environment variables
func GetServerConfig() ServerConfig {
	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT_SECONDS", "15"))
	idleTimeout, _ := strconv.Atoi(getEnv("SERVER_IDLE_TIMEOUT_SECONDS", "60"))

	return ServerConfig{
		Port:        getEnv("PORT", "8080"),
		ReadTimeout: time.Duration(readTimeout) * time.Second,
		IdleTimeout: time.Duration(idleTimeout) * time.Second,
	}
}

// GetRedisConfig loads Redis/Valkey configuration from environment variables
func GetRedisConfig() RedisConfig {
	// Parse TTL from environment variable (in hours, 0 keeps rooms forever)
	ttlHours, _ := strconv.Atoi(getEnv("REDIS_ROOM_TTL_HOURS", "0"))
	ttl := time.Duration(ttlHours) * time.Hour

	// Parse DB index
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return RedisConfig{
		Enabled:   getEnvBool("REDIS_ENABLED", false),
		URI:       getEnv("REDIS_URI_WROOMS", ""),
		Host:      getEnv("REDIS_HOST_WROOMS", getEnv("REDIS_ADDRESS", "localhost")),
		Port:      getEnv("REDIS_PORT_WROOMS", "6379"),
		Username:  getEnv("REDIS_USERNAME_WROOMS", ""),
		Password:  getEnv("REDIS_PASSWORD_WROOMS", getEnv("REDIS_PASSWORD", "")),
		DB:        db,
		KeyPrefix: getEnv("REDIS_KEY_PREFIX", "wrooms:"),
		RoomTTL:   ttl,
	}
}

// GetDirectoryConfig loads member directory configuration from environment variables
func GetDirectoryConfig() DirectoryConfig {
	timeoutSeconds, _ := strconv.Atoi(getEnv("DIRECTORY_TIMEOUT_SECONDS", "10"))

	return DirectoryConfig{
		BaseURL: getEnv("DIRECTORY_BASE_URL", ""),
		Token:   getEnv("DIRECTORY_TOKEN", ""),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
		Users:   getEnv("DIRECTORY_USERS", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves a boolean environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

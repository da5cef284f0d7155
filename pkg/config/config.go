package config

import (
	"os"
	"strconv"
	"strings"
)

type GlobalConfig struct {
	ServerPort string
	LogLevel   string
}

func LoadGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ServerPort: GetEnvOrDefault("SERVER_PORT", "8080"),
		LogLevel:   GetEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// GetEnv retrieves the value of the environment variable named by the key.
func GetEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	} else {
		panic("critical config missing: " + key)
	}
}

// GetEnvOrDefault retrieves the value or returns default if not set.
func GetEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses an integer variable, falling back to the default when unset or malformed.
func GetEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetEnvBool parses a boolean variable, falling back to the default when unset or malformed.
func GetEnvBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return b
}

package config

import (
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	DebugMode      bool
	ServerConfig   *ServerConfig
	RedisConfig    *RedisConfig
	RabbitMQConfig *RabbitMQConfig
	PostgresConfig *PostgresConfig
	ExecutorConfig *ExecutorConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:      os.Getenv("DEBUG_MODE") == "true",
		ServerConfig:   NewServerConfig(),
		RedisConfig:    NewRedisConfig(),
		RabbitMQConfig: NewRabbitMQConfig(),
		PostgresConfig: NewPostgresConfig(),
		ExecutorConfig: NewExecutorConfig(),
	}
}

// getEnv gets an environment variable with a fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getIntEnv gets an environment variable as an integer with a fallback.
func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// splitList splits a comma-separated value, trimming and dropping empty
// elements.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

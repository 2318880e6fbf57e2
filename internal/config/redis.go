package config

import "time"

type RedisConfig struct {
	DB       int
	Addr     string
	Password string
	// ResultTTL bounds how long job records stay readable after they are
	// written. Callers poll with a bounded attempt count, so stale
	// entries are evicted rather than kept forever.
	ResultTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		DB:        getIntEnv("REDIS_DB", 0),
		Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
		Password:  getEnv("REDIS_PASSWORD", ""),
		ResultTTL: time.Duration(getIntEnv("RESULT_TTL_SEC", 3600)) * time.Second,
	}
}

package config

import "os"

type Config struct {
	Port          string
	Env           string
	PostgresUrl   string
	MongoURI      string
	RedisAddr     string
	RedisPassword string
	MetricsPort   string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PostgresUrl:   getEnv("POSTGRES_URL", "http://localhost:5432"),
		MongoURI:      getEnv("MONGO_URI", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

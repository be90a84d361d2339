package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type Config struct {
	ServerPort string

	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	RedisURL string

	LoginAttemptLimit  int
	LoginAttemptWindow int // seconds
}

func Load() *Config {
	return &Config{
		ServerPort:         getEnv("PORT", "8080"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPass:             getEnv("DB_PASS", ""),
		DBHost:             getEnv("DB_HOST", "127.0.0.1"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBName:             getEnv("DB_NAME", "laundry_pos"),
		RedisURL:           getEnv("REDIS_URL", ""),
		LoginAttemptLimit:  getEnvAsInt("LOGIN_ATTEMPT_LIMIT", 5),
		LoginAttemptWindow: getEnvAsInt("LOGIN_ATTEMPT_WINDOW", 300),
	}
}

// InitDB opens the MySQL connection described by cfg.
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

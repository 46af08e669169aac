package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	JWTSecret         string
	SMSAPIURL         string
	SMSAPIKey         string
	SMSSourceAddress  string
	SMSTimeoutSeconds int
}

func Load() Config {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	dbURL := getEnv("DATABASE_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "dev-secret-change-me")

	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	return Config{
		Port:              port,
		DatabaseURL:       dbURL,
		JWTSecret:         jwtSecret,
		SMSAPIURL:         getEnv("SMS_API_URL", ""),
		SMSAPIKey:         getEnv("SMS_API_KEY", ""),
		SMSSourceAddress:  getEnv("SMS_SOURCE_ADDRESS", "MyAppleCare"),
		SMSTimeoutSeconds: getEnvInt("SMS_TIMEOUT_SECONDS", 10),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

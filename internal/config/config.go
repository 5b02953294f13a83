package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Secret for email confirmation tokens.
	ConfirmEmailSecret string

	// Base URL embedded in verification links.
	APIURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	RateLimit       int
	RateLimitWindow time.Duration

	OtelEndpoint string
	OtelEnabled  bool

	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 3000),

		DBURL: buildDBURL(),

		ConfirmEmailSecret: getEnv("CONFIRM_EMAIL_JWT", "dev-confirm-secret"),
		APIURL:             getEnv("API_URL", "http://127.0.0.1:3000"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SMTPHost:     getEnv("EMAIL_HOST", "127.0.0.1"),
		SMTPPort:     getEnvInt("EMAIL_PORT", 587),
		SMTPUser:     getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASSWORD", ""),
		SMTPFrom:     getEnv("EMAIL_FROM", getEnv("EMAIL_USER", "no-reply@localhost")),

		RateLimit:       getEnvInt("RATE_LIMIT", 10),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelEnabled:  getEnv("OTEL_ENABLED", "") == "1",

		AdminEmail:     getEnv("ADMIN_EMAIL", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		AdminFirstName: getEnv("ADMIN_FIRST_NAME", "Admin"),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "authservice")
	pass := getEnv("DB_PASSWORD", "authservice")
	name := getEnv("DB_NAME", "authservice")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

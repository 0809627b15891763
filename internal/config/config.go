package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Env is the resolved application configuration. Values come from
// config/config.yaml when present, environment variables otherwise.
type Env struct {
	AppAddr       string
	GinMode       string
	DBDSN         string
	RedisAddr     string
	JWTSecret     string
	PaymentWindow time.Duration
	NightlyRate   int64
	TaxPercent    int64
}

// LoadEnv reads config/config.yaml (optional) and applies env overrides.
func LoadEnv() Env {
	v := viper.New()
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.gin_mode", "")
	v.SetDefault("db.dsn", "root:@tcp(127.0.0.1:3306)/villabook?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("auth.jwt_secret", "super-secret-key-change-me")
	v.SetDefault("booking.payment_window_hours", 24)
	v.SetDefault("booking.nightly_rate", 280)
	v.SetDefault("booking.tax_percent", 7)

	// Missing file is fine; defaults plus env keep the server bootable.
	_ = v.ReadInConfig()

	env := Env{
		AppAddr:       GetEnv("APP_ADDR", v.GetString("server.addr")),
		GinMode:       GetEnv("GIN_MODE", v.GetString("server.gin_mode")),
		DBDSN:         GetEnv("DB_DSN", v.GetString("db.dsn")),
		RedisAddr:     GetEnv("REDIS_ADDR", v.GetString("redis.addr")),
		JWTSecret:     GetEnv("JWT_SECRET", v.GetString("auth.jwt_secret")),
		PaymentWindow: time.Duration(v.GetInt("booking.payment_window_hours")) * time.Hour,
		NightlyRate:   v.GetInt64("booking.nightly_rate"),
		TaxPercent:    v.GetInt64("booking.tax_percent"),
	}
	return env
}

// GetEnv returns the env value for key, or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

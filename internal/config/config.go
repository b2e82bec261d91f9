package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	SessionSecret string
	ClientURL     string
	AdminPassword string

	UploadDir      string
	UploadBaseURL  string
	UploadMaxBytes int64
	ImgurClientID  string

	RateLimitRPS    float64
	RateLimitBurst  int
	RenderCacheSize int
}

const defaultDSN = "host=localhost user=postgres password=postgres dbname=threadline port=5432 sslmode=disable TimeZone=UTC"

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", defaultDSN)
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_BASE_URL", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("IMGUR_CLIENT_ID", "")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RENDER_CACHE_SIZE", 500)
	v.AutomaticEnv()

	return &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		ClientURL:       v.GetString("CLIENT_URL"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadBaseURL:   v.GetString("UPLOAD_BASE_URL"),
		UploadMaxBytes:  v.GetInt64("UPLOAD_MAX_BYTES"),
		ImgurClientID:   v.GetString("IMGUR_CLIENT_ID"),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		RenderCacheSize: v.GetInt("RENDER_CACHE_SIZE"),
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

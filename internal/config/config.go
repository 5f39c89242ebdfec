package config

import (
	"os"
	"strconv"
	"strings"

	"study_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminUserIDs []int64

	// Referral rewards (credits)
	ReferrerBonus int64
	WelcomeBonus  int64

	// HTTP rate limits
	APIRateLimit      int
	APIRateWindowSecs int

	// Per-user limit on mutating engine calls (purchase, vote, claim)
	ActionRateLimit      int
	ActionRateWindowSecs int

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, .env included.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	// admin user ids, comma separated
	var adminIDs []int64
	if s := os.Getenv("ADMIN_USER_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}

	return &Config{
		AppPort:              port,
		DatabaseURL:          dbURL,
		JWTSecret:            jwtSecret,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              redisDB,
		AdminUserIDs:         adminIDs,
		ReferrerBonus:        envInt64("REFERRER_BONUS", 50),
		WelcomeBonus:         envInt64("WELCOME_BONUS", 20),
		APIRateLimit:         envInt("API_RATE_LIMIT", 60),
		APIRateWindowSecs:    envInt("API_RATE_WINDOW_SECONDS", 60),
		ActionRateLimit:      envInt("ACTION_RATE_LIMIT", 30),
		ActionRateWindowSecs: envInt("ACTION_RATE_WINDOW_SECONDS", 60),
		LogLevel:             envDefault("LOG_LEVEL", "info"),
		LogJSON:              os.Getenv("LOG_JSON") == "true",
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

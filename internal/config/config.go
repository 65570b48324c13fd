package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBDSN      string
	ServerPort string

	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	JWTExpireMinutes int

	UploadDir string

	AdminUsername string
	AdminPassword string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		DBDSN:            os.Getenv("DB_DSN"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTIssuer:        getEnv("JWT_ISSUER", "FleetCarAPI"),
		JWTAudience:      getEnv("JWT_AUDIENCE", "FleetCarClient"),
		JWTExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 60),
		UploadDir:        getEnv("UPLOAD_DIR", "web/uploads"),
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	if cfg.DBDSN == "" {
		if cfg.DBDriver == "sqlite" {
			cfg.DBDSN = "fleetcar.db"
		} else {
			log.Fatal("DB_DSN is not set")
		}
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if cfg.JWTExpireMinutes <= 0 {
		cfg.JWTExpireMinutes = 60
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	JWTSecret         string
	AccessTokenMaxAge int // seconds

	UploadDir string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	RedisURL        string
	AuthRateLimit   int // requests per window on auth endpoints
	AuthRateWindowS int // window length in seconds
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 86400 // 24 hours
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	authRateLimit, err := strconv.Atoi(os.Getenv("AUTH_RATE_LIMIT"))
	if err != nil || authRateLimit <= 0 {
		authRateLimit = 20
	}

	authRateWindow, err := strconv.Atoi(os.Getenv("AUTH_RATE_WINDOW_SECONDS"))
	if err != nil || authRateWindow <= 0 {
		authRateWindow = 60
	}

	return &Config{
		ServerPort: serverPort,

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,

		UploadDir: uploadDir,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		RedisURL:        os.Getenv("REDIS_URL"),
		AuthRateLimit:   authRateLimit,
		AuthRateWindowS: authRateWindow,
	}, nil
}

// UsePostgres reports whether a SQL backend is configured. When false the
// repositories fall back to the in-memory implementation.
func (c *Config) UsePostgres() bool {
	return c.DBHost != ""
}

// UseR2 reports whether object storage is configured. When false media is
// written to the local upload directory.
func (c *Config) UseR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port     string
	MongoURI string
	DBName   string

	JWTSecret    string
	JWTExpiresIn time.Duration

	AWSRegion     string
	AWSBucketName string

	GeminiAPIKey        string
	GeminiModel         string
	ImageTaggingEnabled bool
	AssistantEnabled    bool

	SendGridAPIKey string
	MailFrom       string

	LogLevel  string
	LogFormat string

	CORSOrigins   []string
	AuthRateLimit int
}

// LoadConfig loads environment variables from .env file
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		DBName:   getEnv("DB_NAME", "fragrances"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getDuration("JWT_EXPIRES_IN", 90*24*time.Hour),

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		AWSBucketName: os.Getenv("AWS_S3_BUCKET_NAME"),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ImageTaggingEnabled: getBool("IMAGE_TAGGING_ENABLED", false),
		AssistantEnabled:    getBool("ASSISTANT_ENABLED", false),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@fragrance-collection.app"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRateLimit: getInt("AUTH_RATE_LIMIT", 20),
	}
	return cfg
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if c.JWTExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWTExpiresIn)
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %d", c.AuthRateLimit)
	}
	return nil
}

// TaggingEnabled reports whether uploaded images are sent to Gemini for tags.
func (c *Config) TaggingEnabled() bool {
	return c.ImageTaggingEnabled && c.GeminiAPIKey != ""
}

// ChatEnabled reports whether the assistant routes are mounted.
func (c *Config) ChatEnabled() bool {
	return c.AssistantEnabled && c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	DBName   string
	Port     string
	GinMode  string

	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Assistant configuration
	OpenAIAPIKey   string
	AssistantModel string
	SearchK        int // candidates pulled from the vector index
	SearchTopK     int // candidates kept after the stock join
	SessionTimeout int // idle seconds before a chat is exported by email

	// Embeddings configuration
	EmbeddingsProvider    string // "google" (default), "openai"
	GeminiAPIKey          string
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"
	OpenAIEmbeddingsModel string

	// MongoDB Vector Search
	VectorSearchEnabled bool
	VectorIndexName     string
	VectorDimensions    int

	// Google Sheets stock source
	SheetsID          string
	SheetsRange       string
	SheetsCredentials string
	StockCSVPath      string
	StockInterval     int // seconds between stock refreshes
	StockMaxRetries   int
	StockRetryDelay   int // seconds between push retries
	PriceMultiplier   float64

	// Corpus paths
	WorkbookDir string
	CorpusDir   string

	// SMTP Configuration
	SMTPHost    string
	SMTPPort    string `default:"587"`
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	AdminEmails []string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/dermo_chatbot"),
		DBName:   getEnv("DB_NAME", "dermo_chatbot"),
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),

		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		// Assistant
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		AssistantModel: getEnv("ASSISTANT_MODEL", "gpt-4o"),
		SearchK:        getEnvInt("SEARCH_K", 30),
		SearchTopK:     getEnvInt("SEARCH_TOP_K", 5),
		// Ten minutes of inactivity before a session is considered idle
		// and its transcript is queued for export.
		SessionTimeout: getEnvInt("SESSION_TIMEOUT", 600),

		// Embeddings
		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),

		// MongoDB Vector Search
		VectorSearchEnabled: getEnvBool("MONGODB_VECTOR_ENABLED", false),
		VectorIndexName:     getEnv("MONGODB_VECTOR_INDEX", "products_vector"),
		VectorDimensions:    getEnvInt("VECTOR_DIM", 768),

		// Stock source
		SheetsID:          getEnv("SHEETS_ID", ""),
		SheetsRange:       getEnv("SHEETS_RANGE", "bot_20!A:F"),
		SheetsCredentials: getEnv("SHEETS_CREDENTIALS", "./json/credentials.json"),
		StockCSVPath:      getEnv("STOCK_CSV_PATH", "./database/stock.csv"),
		StockInterval:     getEnvInt("STOCK_UPDATE_INTERVAL", 3600),
		StockMaxRetries:   getEnvInt("STOCK_MAX_RETRIES", 3),
		StockRetryDelay:   getEnvInt("STOCK_RETRY_DELAY", 5),
		PriceMultiplier:   getEnvFloat64("PRICE_MULTIPLIER", 0.9),

		// Corpus paths
		WorkbookDir: getEnv("WORKBOOK_DIR", "./database/xlsx"),
		CorpusDir:   getEnv("CORPUS_DIR", "./database/corpus"),

		// SMTP Configuration
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		SMTPFrom:    getEnv("SMTP_FROM", ""),
		AdminEmails: strings.Split(getEnv("ADMIN_EMAILS", ""), ","),
	}

	// Validate required fields
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required - set it in .env file")
	}

	if cfg.EmbeddingsProvider == "google" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

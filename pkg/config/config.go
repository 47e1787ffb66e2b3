package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Extractor ExtractorConfig
	GigaChat  GigaChatConfig
	Retrieval RetrievalConfig
	Corpus    CorpusConfig
	Booking   BookingConfig
	Session   SessionConfig
	Operator  OperatorConfig
	Worker    WorkerConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
	// InteractionDir holds the per-mode JSONL interaction logs.
	InteractionDir string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelegramConfig struct {
	Token         string
	WebhookSecret string
	// AllowUnsignedWebhook accepts webhook calls when WebhookSecret is empty.
	// Meant for local development only.
	AllowUnsignedWebhook bool
	OperatorChatID       int64
}

type ExtractorConfig struct {
	Provider string // http | gigachat
	URL      string
	Timeout  time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type RetrievalConfig struct {
	Threshold float64
}

// CorpusConfig points at the structured documents used when a domain table
// is unavailable or empty.
type CorpusConfig struct {
	DocumentDir   string
	PriceDocument string
}

type BookingConfig struct {
	DailyCapacity int
	HorizonDays   int
}

type SessionConfig struct {
	Backend string // memory | redis
	TTL     time.Duration
}

type OperatorConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type WorkerConfig struct {
	Concurrency int
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way.
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	maxConns, _ := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	operatorChatID, _ := strconv.ParseInt(getEnv("OPERATOR_CHAT_ID", "0"), 10, 64)
	extractorTimeout, _ := strconv.Atoi(getEnv("EXTRACTION_TIMEOUT_SECONDS", "10"))
	threshold, err := strconv.ParseFloat(getEnv("RETRIEVAL_THRESHOLD", "0.3"), 64)
	if err != nil {
		threshold = 0.3
	}
	capacity, _ := strconv.Atoi(getEnv("BOOKING_DAILY_CAPACITY", "5"))
	horizon, _ := strconv.Atoi(getEnv("BOOKING_HORIZON_DAYS", "365"))
	sessionTTL, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	tokenTTL, _ := strconv.Atoi(getEnv("OPERATOR_TOKEN_TTL_HOURS", "12"))
	workers, _ := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "8"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"
	allowUnsignedWebhook := getEnv("TELEGRAM_WEBHOOK_ALLOW_UNSIGNED", "false") == "true"

	documentDir := getEnv("CORPUS_DOCUMENT_DIR", "data")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "bengkel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Telegram: TelegramConfig{
			Token:                getEnv("TELEGRAM_TOKEN", ""),
			WebhookSecret:        getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
			AllowUnsignedWebhook: allowUnsignedWebhook,
			OperatorChatID:       operatorChatID,
		},
		Extractor: ExtractorConfig{
			Provider: getEnv("EXTRACTOR_PROVIDER", "http"),
			URL:      getEnv("EXTRACTOR_URL", "http://localhost:8000/extract"),
			Timeout:  time.Duration(extractorTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Retrieval: RetrievalConfig{
			Threshold: threshold,
		},
		Corpus: CorpusConfig{
			DocumentDir:   documentDir,
			PriceDocument: getEnv("PRICE_DOCUMENT", filepath.Join(documentDir, "harga_data.json")),
		},
		Booking: BookingConfig{
			DailyCapacity: capacity,
			HorizonDays:   horizon,
		},
		Session: SessionConfig{
			Backend: getEnv("SESSION_BACKEND", "memory"),
			TTL:     time.Duration(sessionTTL) * time.Hour,
		},
		Operator: OperatorConfig{
			Username:     getEnv("OPERATOR_USERNAME", "admin"),
			PasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("OPERATOR_JWT_SECRET", "change-me"),
			TokenTTL:     time.Duration(tokenTTL) * time.Hour,
		},
		Worker: WorkerConfig{
			Concurrency: workers,
		},
		Logger: LoggerConfig{
			Level:          getEnv("LOG_LEVEL", "info"),
			InteractionDir: getEnv("INTERACTION_LOG_DIR", "logs"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

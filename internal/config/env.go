package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	DatabaseURL  string
	SslCertPath  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	LLMProvider   string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GenModel      string
	EmbedModel    string
	EmbedDim      int

	ChunkSizeWords     int
	ChunkOverlapWords  int
	ChunkIncludeTables bool
	PageTextMaxChars   int
	ChunkPageMaxChars  int
	ClassifyMaxChars   int
	OCRMinChars        int
	OCRDPI             int

	PageWorkers    int
	DocWorkers     int
	LLMMaxAttempts int
	LLMBaseBackoff time.Duration
	LLMMaxBackoff  time.Duration

	EmbedBatchSize      int
	VectorCollection    string
	QueryCacheSize      int
	QueryCacheTTL       time.Duration
	CompensateOnFailure bool

	DocumentsDir string
	Port         string
	LogMode      string
	LogLevel     string
}

// LoadConfig loads the environment variables (and .env if present) and returns config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GenModel:      getEnv("GEN_MODEL", "gemini-1.5-flash"),
		EmbedModel:    getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:      getEnvInt("EMBED_DIM", 768),

		ChunkSizeWords:     getEnvInt("CHUNK_SIZE_WORDS", 400),
		ChunkOverlapWords:  getEnvInt("CHUNK_OVERLAP_WORDS", 50),
		ChunkIncludeTables: getEnvBool("CHUNK_INCLUDE_TABLES", true),
		PageTextMaxChars:   getEnvInt("PAGE_TEXT_MAX_CHARS", 6000),
		ChunkPageMaxChars:  getEnvInt("CHUNK_PAGE_MAX_CHARS", 8000),
		ClassifyMaxChars:   getEnvInt("CLASSIFY_MAX_CHARS", 25000),
		OCRMinChars:        getEnvInt("OCR_MIN_CHARS", 100),
		OCRDPI:             getEnvInt("OCR_DPI", 200),

		PageWorkers:    getEnvInt("PAGE_WORKERS", 4),
		DocWorkers:     getEnvInt("DOC_WORKERS", 4),
		LLMMaxAttempts: getEnvInt("LLM_MAX_ATTEMPTS", 6),
		LLMBaseBackoff: getEnvDuration("LLM_BASE_BACKOFF", time.Second),
		LLMMaxBackoff:  getEnvDuration("LLM_MAX_BACKOFF", 15*time.Second),

		EmbedBatchSize:      getEnvInt("EMBED_BATCH_SIZE", 64),
		VectorCollection:    getEnv("VECTOR_COLLECTION", "pdf_chunks"),
		QueryCacheSize:      getEnvInt("QUERY_CACHE_SIZE", 256),
		QueryCacheTTL:       getEnvDuration("QUERY_CACHE_TTL", 10*time.Minute),
		CompensateOnFailure: getEnvBool("COMPENSATE_ON_FAILURE", true),

		DocumentsDir: getEnv("DOCUMENTS_DIR", "documents"),
		Port:         getEnv("PORT", "8080"),
		LogMode:      getEnv("LOG_MODE", "dev"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports every setting that would stop the service from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY not set"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY or OPENAI_BASE_URL must be set"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not one of %s, %s", c.LLMProvider, ProviderGemini, ProviderOpenAI))
	}
	if c.ChunkSizeWords <= 0 || c.ChunkOverlapWords < 0 || c.ChunkOverlapWords >= c.ChunkSizeWords {
		errs = append(errs, fmt.Errorf("chunk window %d/%d invalid: overlap must be in [0, size)", c.ChunkSizeWords, c.ChunkOverlapWords))
	}
	if c.PageWorkers < 1 || c.DocWorkers < 1 {
		errs = append(errs, errors.New("PAGE_WORKERS and DOC_WORKERS must be at least 1"))
	}
	if c.LLMMaxAttempts < 1 {
		errs = append(errs, errors.New("LLM_MAX_ATTEMPTS must be at least 1"))
	}
	if c.EmbedBatchSize < 1 {
		errs = append(errs, errors.New("EMBED_BATCH_SIZE must be at least 1"))
	}
	return errors.Join(errs...)
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.AwsAccessKey != "" && c.AwsSecretKey != "" && c.BucketName != ""
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

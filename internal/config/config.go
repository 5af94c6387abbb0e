// Package config loads slidedeck settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"slidedeck/internal/pkg/logger"
)

// Storage provider names accepted in STORAGE_PROVIDER.
const (
	ProviderLocalFS  = "localfs"
	ProviderGDrive   = "gdrive"
	ProviderRedis    = "redis"
	ProviderPostgres = "postgres"
)

type Config struct {
	HTTPPort string

	Log     logger.Config
	LogFile string

	// TemplatesDir holds one subdirectory per presentation template.
	TemplatesDir string
	// SchemasDir is the artifact root used by the localfs provider.
	SchemasDir string
	// LayoutPattern selects layout files inside a template directory.
	LayoutPattern string

	Storage StorageConfig
	Queue   QueueConfig

	CORSAllowedOrigins []string
}

// QueueConfig locates the Redis list carrying regeneration jobs. An empty
// RedisAddr disables the queue.
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Name          string
}

type StorageConfig struct {
	Provider string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	DatabaseURL string

	GDriveClientID     string
	GDriveClientSecret string
	GDriveRefreshToken string
	GDriveFolderID     string
}

// Load reads an optional .env file (existing variables win) and then the
// environment.
func Load(serviceName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(serviceName), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv(serviceName string) *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		Log: logger.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			AddSource:   getBool("LOG_SOURCE", false),
			ServiceName: serviceName,
		},
		LogFile:       getEnv("LOG_FILE", ""),
		TemplatesDir:  getEnv("TEMPLATES_DIR", "presentation-templates"),
		SchemasDir:    getEnv("SCHEMAS_DIR", "generated/schemas"),
		LayoutPattern: getEnv("LAYOUT_PATTERN", "*.tsx"),
		Storage: StorageConfig{
			Provider:           strings.ToLower(getEnv("STORAGE_PROVIDER", ProviderLocalFS)),
			RedisAddr:          getEnv("REDIS_ADDR", ""),
			RedisPassword:      getEnv("REDIS_PASSWORD", ""),
			RedisDB:            getInt("REDIS_DB", 0),
			RedisPrefix:        getEnv("REDIS_PREFIX", "slidedeck:schemas:"),
			DatabaseURL:        getEnv("DATABASE_URL", ""),
			GDriveClientID:     getEnv("GDRIVE_CLIENT_ID", ""),
			GDriveClientSecret: getEnv("GDRIVE_CLIENT_SECRET", ""),
			GDriveRefreshToken: getEnv("GDRIVE_REFRESH_TOKEN", ""),
			GDriveFolderID:     getEnv("GDRIVE_FOLDER_ID", ""),
		},
		Queue: QueueConfig{
			RedisAddr:     getEnv("QUEUE_REDIS_ADDR", getEnv("REDIS_ADDR", "")),
			RedisPassword: getEnv("QUEUE_REDIS_PASSWORD", getEnv("REDIS_PASSWORD", "")),
			RedisDB:       getInt("QUEUE_REDIS_DB", getInt("REDIS_DB", 0)),
			Name:          getEnv("JOB_QUEUE_NAME", "slidedeck:regenerate"),
		},
		CORSAllowedOrigins: getCSV("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),
	}
}

// Validate reports settings the selected storage provider cannot do without.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}

	s := c.Storage
	switch s.Provider {
	case ProviderLocalFS:
		require("SCHEMAS_DIR", c.SchemasDir)
	case ProviderGDrive:
		require("GDRIVE_CLIENT_ID", s.GDriveClientID)
		require("GDRIVE_CLIENT_SECRET", s.GDriveClientSecret)
		require("GDRIVE_REFRESH_TOKEN", s.GDriveRefreshToken)
	case ProviderRedis:
		require("REDIS_ADDR", s.RedisAddr)
	case ProviderPostgres:
		require("DATABASE_URL", s.DatabaseURL)
	default:
		return fmt.Errorf("unknown storage provider: %s", s.Provider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables for %s: %s", s.Provider, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

// getBool accepts whatever strconv.ParseBool does; anything else yields def.
func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return n
}

func getCSV(key string, def []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

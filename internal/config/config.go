package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all externally supplied configuration. It is built once at
// process start and passed by reference to each component; nothing reads
// the environment after this point.
type Config struct {
	Server ServerConfig
	Logger LoggerConfig
	Auth   AuthConfig
	Memory MemoryConfig
	Chroma ChromaConfig
	OpenAI OpenAIConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// AuthConfig controls the shared-secret gate. SecretRequired makes the
// fail-open posture explicit instead of inferring it from an empty string.
type AuthConfig struct {
	SharedSecret   string
	SecretRequired bool
}

// MemoryConfig points at the mem0-style long-term memory service.
type MemoryConfig struct {
	BaseURL string
	APIKey  string
}

// ChromaConfig points at the Chroma vector store. Tenant, database and
// collection names scope every collection-level call.
type ChromaConfig struct {
	BaseURL    string
	Tenant     string
	Database   string
	Collection string
}

// OpenAIConfig points at an OpenAI-compatible chat completion service.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LoadConfig reads an optional config.yaml and overlays environment
// variables. Missing credentials are not an error here: each client
// reports them at call time so a partially configured process can still
// serve /health.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
	v.SetDefault("chroma.tenant", "default_tenant")
	v.SetDefault("chroma.database", "default_database")
	v.SetDefault("chroma.collection", "quizzes")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")

	bindings := map[string]string{
		"server.port":          "SERVER_PORT",
		"logger.level":         "LOG_LEVEL",
		"logger.env":           "ENV",
		"auth.shared_secret":   "QUIZ_SECRET",
		"auth.secret_required": "QUIZ_SECRET_REQUIRED",
		"memory.base_url":      "MEM0_BASE_URL",
		"memory.api_key":       "MEM0_API_KEY",
		"chroma.base_url":      "CHROMA_BASE_URL",
		"chroma.tenant":        "CHROMA_TENANT",
		"chroma.database":      "CHROMA_DATABASE",
		"chroma.collection":    "CHROMA_COLLECTION",
		"openai.base_url":      "OPENAI_BASE_URL",
		"openai.api_key":       "OPENAI_API_KEY",
		"openai.model":         "OPENAI_MODEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; everything can come from the environment.
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
		Auth: AuthConfig{
			SharedSecret:   v.GetString("auth.shared_secret"),
			SecretRequired: v.GetBool("auth.secret_required"),
		},
		Memory: MemoryConfig{
			BaseURL: v.GetString("memory.base_url"),
			APIKey:  v.GetString("memory.api_key"),
		},
		Chroma: ChromaConfig{
			BaseURL:    v.GetString("chroma.base_url"),
			Tenant:     v.GetString("chroma.tenant"),
			Database:   v.GetString("chroma.database"),
			Collection: v.GetString("chroma.collection"),
		},
		OpenAI: OpenAIConfig{
			BaseURL: v.GetString("openai.base_url"),
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
		},
	}

	return cfg, nil
}

// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names
const (
	EnvDevelopment = "dev"
	EnvStaging     = "staging"
	EnvProduction  = "prod"
	EnvTest        = "test"
)

// Supported model providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	Provider        string        // Model provider: openai or gemini
	Model           string        // Model identifier, operator-configurable
	APIKey          string        // Provider credential, required
	MaxOutputTokens int           // Token budget per model response
	Temperature     float64       // Sampling temperature, low for data output
	RequestTimeout  time.Duration // Per-attempt timeout for the model call
	MaxAttempts     int           // Total attempts per analysis
	BackoffBase     time.Duration // First retry delay, doubled per attempt

	CacheTTL  time.Duration // Expiry for memoized analysis results
	CacheSize int           // Maximum memoized entries
}

// Load loads and validates configuration from environment variables.
// The provider API key is the one required secret: a missing key is a
// startup failure, the service refuses to run without credentials.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               strings.ToLower(getEnvWithDefault("ENV", EnvDevelopment)),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576), // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),  // 1MB default

		Provider:        strings.ToLower(getEnvWithDefault("MODEL_PROVIDER", ProviderOpenAI)),
		Model:           os.Getenv("MODEL_NAME"),
		MaxOutputTokens: getIntEnvWithDefault("MAX_OUTPUT_TOKENS", 1200),
		Temperature:     getFloatEnvWithDefault("MODEL_TEMPERATURE", 0.2),
		RequestTimeout:  getDurationEnvWithDefault("REQUEST_TIMEOUT", 35*time.Second),
		MaxAttempts:     getIntEnvWithDefault("MAX_ATTEMPTS", 3),
		BackoffBase:     getDurationEnvWithDefault("BACKOFF_BASE", 500*time.Millisecond),

		CacheTTL:  getDurationEnvWithDefault("CACHE_TTL", 10*time.Minute),
		CacheSize: getIntEnvWithDefault("CACHE_SIZE", 512),
	}

	cfg.APIKey = resolveAPIKey(cfg.Provider)
	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveAPIKey looks up the provider credential. LLM_API_KEY wins,
// otherwise the provider-specific variable is used.
func resolveAPIKey(provider string) string {
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		return key
	}
	switch provider {
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return "gemini-2.0-flash"
	default:
		return "gpt-4o-mini"
	}
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return err
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return err
	}

	if cfg.LogRetentionWeeks <= 0 || cfg.LogRetentionWeeks > 52 {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: must be between 1 and 52, got: %d", cfg.LogRetentionWeeks)
	}

	if err := validateProvider(cfg.Provider); err != nil {
		return fmt.Errorf("invalid MODEL_PROVIDER: %w", err)
	}

	if cfg.APIKey == "" {
		return fmt.Errorf("missing API key for provider %q: set LLM_API_KEY or %s", cfg.Provider, apiKeyVar(cfg.Provider))
	}

	if cfg.MaxOutputTokens < 1 || cfg.MaxOutputTokens > 32768 {
		return fmt.Errorf("invalid MAX_OUTPUT_TOKENS: must be between 1 and 32768, got: %d", cfg.MaxOutputTokens)
	}

	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return fmt.Errorf("invalid MODEL_TEMPERATURE: must be between 0 and 2, got: %g", cfg.Temperature)
	}

	if cfg.RequestTimeout < time.Second || cfg.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: must be between 1s and 5m, got: %s", cfg.RequestTimeout)
	}

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 10 {
		return fmt.Errorf("invalid MAX_ATTEMPTS: must be between 1 and 10, got: %d", cfg.MaxAttempts)
	}

	if cfg.BackoffBase <= 0 || cfg.BackoffBase > 30*time.Second {
		return fmt.Errorf("invalid BACKOFF_BASE: must be between 0 and 30s, got: %s", cfg.BackoffBase)
	}

	if cfg.CacheTTL <= 0 || cfg.CacheTTL > 24*time.Hour {
		return fmt.Errorf("invalid CACHE_TTL: must be between 0 and 24h, got: %s", cfg.CacheTTL)
	}

	if cfg.CacheSize < 1 || cfg.CacheSize > 100000 {
		return fmt.Errorf("invalid CACHE_SIZE: must be between 1 and 100000, got: %d", cfg.CacheSize)
	}

	return nil
}

func apiKeyVar(provider string) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	}
	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	switch logLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL must be one of: [debug info warn error], got: %s", logLevel)
}

// validateProvider validates the MODEL_PROVIDER environment variable
func validateProvider(provider string) error {
	switch provider {
	case ProviderOpenAI, ProviderGemini:
		return nil
	}
	return fmt.Errorf("MODEL_PROVIDER must be one of: [openai gemini], got: %s", provider)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("invalid %s: must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("invalid %s: too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnvWithDefault gets an environment variable as float64 with a default value
func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDurationEnvWithDefault gets an environment variable as time.Duration with a default value
func getDurationEnvWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

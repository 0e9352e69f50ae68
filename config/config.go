package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every configuration parameter of the sync service. Missing
// credentials are a setup-fatal condition: Load fails before any work starts.
type Config struct {
	DatabaseURL   string
	VISAPIBaseURL string
	VISAPIKey     string
	ServerPort    int

	// Optional object-storage archive for pass results. Either the whole
	// group is set or archiving stays disabled.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables, optionally pre-loading
// a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	apiBaseURL := os.Getenv("VIS_API_BASE_URL")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("VIS_API_BASE_URL environment variable is not set")
	}

	apiKey := os.Getenv("VIS_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("VIS_API_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		VISAPIBaseURL:     apiBaseURL,
		VISAPIKey:         apiKey,
		ServerPort:        port,
		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if err := cfg.validateArchiveGroup(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ArchiveEnabled reports whether the optional R2 archive group is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

func (c *Config) validateArchiveGroup() error {
	anySet := c.R2AccountID != "" || c.R2AccessKeyID != "" || c.R2SecretAccessKey != "" ||
		c.R2BucketName != "" || c.R2PublicBaseURL != ""
	if anySet && !c.ArchiveEnabled() {
		return fmt.Errorf("R2 archive configuration is incomplete: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return nil
}

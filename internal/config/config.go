// Package config loads runtime settings for the math tools server and worker.
//
// Values come from environment variables, optionally seeded from a .env file
// in the working directory. Every setting has a default so the MCP server
// runs with no configuration at all; the Redis URL is only required by the
// background worker.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server and worker configuration
type Config struct {
	// Image normalization
	MaxDimension     int
	GlyphContrast    float64
	OCRContrast      float64
	MinComponentArea int

	// Solver
	Variable string

	// Pipeline
	PipelineTimeout time.Duration

	// OCR
	OCREnabled     bool
	OCRLanguage    string
	TessdataPrefix string

	// Learned detector (requires the gocv build tag)
	DetectorModel    string
	DetectorConfig   string
	DetectorLabels   []string
	DetectorMinScore float64

	// Worker
	RedisURL          string
	QueueName         string
	WorkerConcurrency int

	LogLevel string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		MaxDimension:      getEnvAsIntOrDefault("MATH_MCP_MAX_DIMENSION", 1400),
		GlyphContrast:     getEnvAsFloatOrDefault("MATH_MCP_GLYPH_CONTRAST", 1.08),
		OCRContrast:       getEnvAsFloatOrDefault("MATH_MCP_OCR_CONTRAST", 1.5),
		MinComponentArea:  getEnvAsIntOrDefault("MATH_MCP_MIN_COMPONENT_AREA", 30),
		Variable:          getEnvOrDefault("MATH_MCP_VARIABLE", "x"),
		PipelineTimeout:   getEnvAsDurationOrDefault("MATH_MCP_PIPELINE_TIMEOUT", 10*time.Second),
		OCREnabled:        getEnvAsBoolOrDefault("MATH_MCP_OCR_ENABLED", true),
		OCRLanguage:       getEnvOrDefault("MATH_MCP_OCR_LANGUAGE", "eng"),
		TessdataPrefix:    getEnvOrDefault("MATH_MCP_TESSDATA_PREFIX", ""),
		DetectorModel:     getEnvOrDefault("MATH_MCP_DETECTOR_MODEL", ""),
		DetectorConfig:    getEnvOrDefault("MATH_MCP_DETECTOR_CONFIG", ""),
		DetectorLabels:    getEnvAsListOrDefault("MATH_MCP_DETECTOR_LABELS", DefaultDetectorLabels),
		DetectorMinScore:  getEnvAsFloatOrDefault("MATH_MCP_DETECTOR_MIN_SCORE", 0.5),
		RedisURL:          getEnvOrDefault("MATH_MCP_REDIS_URL", ""),
		QueueName:         getEnvOrDefault("MATH_MCP_QUEUE", "math"),
		WorkerConcurrency: getEnvAsIntOrDefault("MATH_MCP_WORKER_CONCURRENCY", 4),
		LogLevel:          getEnvOrDefault("MATH_MCP_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// DefaultDetectorLabels is the class order of the bundled detector model.
var DefaultDetectorLabels = []string{"+", "-", "×", "÷", "=", "circle", "triangle", "square", "line", "arrow"}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.MaxDimension < 64 || c.MaxDimension > 8192 {
		return fmt.Errorf("MATH_MCP_MAX_DIMENSION must be between 64 and 8192, got %d", c.MaxDimension)
	}

	if c.GlyphContrast < 1 || c.GlyphContrast > 3 {
		return fmt.Errorf("MATH_MCP_GLYPH_CONTRAST must be between 1 and 3, got %g", c.GlyphContrast)
	}

	if c.OCRContrast < 1 || c.OCRContrast > 3 {
		return fmt.Errorf("MATH_MCP_OCR_CONTRAST must be between 1 and 3, got %g", c.OCRContrast)
	}

	if c.MinComponentArea < 1 {
		return fmt.Errorf("MATH_MCP_MIN_COMPONENT_AREA must be positive, got %d", c.MinComponentArea)
	}

	if c.Variable == "" || strings.ContainsAny(c.Variable, " \t=+-*/()0123456789") {
		return fmt.Errorf("MATH_MCP_VARIABLE must be a bare identifier, got %q", c.Variable)
	}

	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("MATH_MCP_PIPELINE_TIMEOUT must be positive, got %v", c.PipelineTimeout)
	}

	if c.DetectorMinScore < 0 || c.DetectorMinScore > 1 {
		return fmt.Errorf("MATH_MCP_DETECTOR_MIN_SCORE must be between 0 and 1, got %g", c.DetectorMinScore)
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("MATH_MCP_WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}

	return nil
}

// ValidateWorker checks the settings only the background worker needs.
func (c *Config) ValidateWorker() error {
	if c.RedisURL == "" {
		return fmt.Errorf("MATH_MCP_REDIS_URL is required")
	}
	if c.QueueName == "" {
		return fmt.Errorf("MATH_MCP_QUEUE is required")
	}
	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDurationOrDefault accepts Go durations ("750ms") or plain milliseconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

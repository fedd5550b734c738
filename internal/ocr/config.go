package ocr

import (
	"fmt"
	"time"
)

// DefaultWhitelist restricts recognition to the characters that occur in
// financial documents; stray glyphs from scan noise are suppressed at the
// engine level instead of being filtered afterwards.
const DefaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,()-/$%: "

// Config holds worker settings. The timeouts bound cgo calls into
// Tesseract, which can hang on pathological images.
type Config struct {
	Language          string        `mapstructure:"language"            yaml:"language"            json:"language"`
	Whitelist         string        `mapstructure:"whitelist"           yaml:"whitelist"           json:"whitelist"`
	MaxInitAttempts   int           `mapstructure:"max_init_attempts"   yaml:"max_init_attempts"   json:"max_init_attempts"`
	InitRetryDelay    time.Duration `mapstructure:"init_retry_delay"    yaml:"init_retry_delay"    json:"init_retry_delay"`
	RecognizeTimeout  time.Duration `mapstructure:"recognize_timeout"   yaml:"recognize_timeout"   json:"recognize_timeout"`
	RetryTimeout      time.Duration `mapstructure:"retry_timeout"       yaml:"retry_timeout"       json:"retry_timeout"`
	MaxPageRetries    int           `mapstructure:"max_page_retries"    yaml:"max_page_retries"    json:"max_page_retries"`
	PageRetryDelay    time.Duration `mapstructure:"page_retry_delay"    yaml:"page_retry_delay"    json:"page_retry_delay"`
	TerminateTimeout  time.Duration `mapstructure:"terminate_timeout"   yaml:"terminate_timeout"   json:"terminate_timeout"`
	MinWordConfidence float64       `mapstructure:"min_word_confidence" yaml:"min_word_confidence" json:"min_word_confidence"`
}

// DefaultConfig returns the worker defaults.
func DefaultConfig() Config {
	return Config{
		Language:          "eng",
		Whitelist:         DefaultWhitelist,
		MaxInitAttempts:   3,
		InitRetryDelay:    time.Second,
		RecognizeTimeout:  30 * time.Second,
		RetryTimeout:      15 * time.Second,
		MaxPageRetries:    2,
		PageRetryDelay:    500 * time.Millisecond,
		TerminateTimeout:  5 * time.Second,
		MinWordConfidence: 60,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language must not be empty")
	}
	if c.MaxInitAttempts < 1 {
		return fmt.Errorf("max_init_attempts must be at least 1, got %d", c.MaxInitAttempts)
	}
	if c.RecognizeTimeout <= 0 {
		return fmt.Errorf("recognize_timeout must be positive, got %v", c.RecognizeTimeout)
	}
	if c.RetryTimeout <= 0 {
		return fmt.Errorf("retry_timeout must be positive, got %v", c.RetryTimeout)
	}
	if c.MaxPageRetries < 0 {
		return fmt.Errorf("max_page_retries must not be negative, got %d", c.MaxPageRetries)
	}
	if c.MinWordConfidence < 0 || c.MinWordConfidence > 100 {
		return fmt.Errorf("min_word_confidence must be in [0,100], got %v", c.MinWordConfidence)
	}
	return nil
}

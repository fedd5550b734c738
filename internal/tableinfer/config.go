package tableinfer

import "fmt"

// Config holds the tolerances and thresholds driving table inference.
// The defaults are empirical values tuned on financial documents; text-layer
// coordinates are precise so they use a tighter band than OCR output.
type Config struct {
	TextTolerance   float64 `mapstructure:"text_tolerance"   yaml:"text_tolerance"   json:"text_tolerance"`
	OCRTolerance    float64 `mapstructure:"ocr_tolerance"    yaml:"ocr_tolerance"    json:"ocr_tolerance"`
	ColumnTolerance float64 `mapstructure:"column_tolerance" yaml:"column_tolerance" json:"column_tolerance"`
	MaxLengthDrift  int     `mapstructure:"max_length_drift" yaml:"max_length_drift" json:"max_length_drift"`
	MinMatchRatio   float64 `mapstructure:"min_match_ratio"  yaml:"min_match_ratio"  json:"min_match_ratio"`
	LastColumnWidth float64 `mapstructure:"last_column_width" yaml:"last_column_width" json:"last_column_width"`
}

// DefaultConfig returns the inference defaults.
func DefaultConfig() Config {
	return Config{
		TextTolerance:   5,
		OCRTolerance:    10,
		ColumnTolerance: 5,
		MaxLengthDrift:  2,
		MinMatchRatio:   0.6,
		LastColumnWidth: 100,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.TextTolerance <= 0 {
		return fmt.Errorf("text_tolerance must be positive, got %v", c.TextTolerance)
	}
	if c.OCRTolerance <= 0 {
		return fmt.Errorf("ocr_tolerance must be positive, got %v", c.OCRTolerance)
	}
	if c.ColumnTolerance <= 0 {
		return fmt.Errorf("column_tolerance must be positive, got %v", c.ColumnTolerance)
	}
	if c.MaxLengthDrift < 0 {
		return fmt.Errorf("max_length_drift must not be negative, got %d", c.MaxLengthDrift)
	}
	if c.MinMatchRatio <= 0 || c.MinMatchRatio > 1 {
		return fmt.Errorf("min_match_ratio must be in (0,1], got %v", c.MinMatchRatio)
	}
	return nil
}

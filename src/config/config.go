package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
)

//bounds of the values the user can choose
const (
	MinDimension = 10
	MinInterval  = 50 * time.Millisecond
	MaxInterval  = 3000 * time.Millisecond
	IntervalStep = 50 * time.Millisecond
)

// Config holds the configuration for the board
type Config struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	IntervalMs int     `json:"interval_ms"`
	Density    float64 `json:"density"`
	MaxSteps   int     `json:"max_steps"`
	Seed       uint64  `json:"seed"`
	StorePath  string  `json:"store_path"`
	LogFile    string  `json:"log_file"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Rows:       50,
		Cols:       30,
		IntervalMs: 300,
		Density:    0.3,
		MaxSteps:   100,
		StorePath:  "simlife.session.json",
		LogFile:    "simlife.log",
	}
}

// LoadConfig loads configuration from JSON file
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
	}

	if err = json.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	return config, nil
}

// Interval returns the tick interval as duration
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Validate checks the values against the bounds of the controls
func (c Config) Validate() error {
	if c.Rows < MinDimension || c.Cols < MinDimension {
		return errors.Errorf("[Validate] grid %dx%d is smaller than %dx%d", c.Rows, c.Cols, MinDimension, MinDimension)
	}
	if d := c.Interval(); d < MinInterval || d > MaxInterval || d%IntervalStep != 0 {
		return errors.Errorf("[Validate] interval %v must be within %v..%v in steps of %v", d, MinInterval, MaxInterval, IntervalStep)
	}
	if c.Density < 0 || c.Density > 1 {
		return errors.Errorf("[Validate] density %v is outside [0,1]", c.Density)
	}
	if c.MaxSteps < 0 {
		return errors.Errorf("[Validate] negative max steps %d", c.MaxSteps)
	}
	return nil
}

// ClampInterval snaps the interval to the closest step within the bounds
func ClampInterval(d time.Duration) time.Duration {
	d = (d + IntervalStep/2) / IntervalStep * IntervalStep
	return min(max(d, MinInterval), MaxInterval)
}

// ClampDimension keeps the grid dimension at the minimum or above
func ClampDimension(n int) int {
	return max(n, MinDimension)
}

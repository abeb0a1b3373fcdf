// Package config loads workflow configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"healthsim/internal/errors"
)

// Config represents the complete workflow configuration
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Simulation SimulationConfig `yaml:"simulation"`
	Interval   IntervalConfig   `yaml:"interval"`
	Hypothesis HypothesisConfig `yaml:"hypothesis"`
}

// DataConfig describes the input file and its indicator columns
type DataConfig struct {
	File          string `yaml:"file"`
	DiseaseColumn string `yaml:"diseaseColumn"`
	GroupColumn   string `yaml:"groupColumn"` // empty disables group breakdowns
}

// SimulationConfig holds prevalence-simulation knobs
type SimulationConfig struct {
	Seed       int64 `yaml:"seed"`
	SampleSize int   `yaml:"sampleSize"`
}

// IntervalConfig holds confidence-interval knobs for one measurement column
type IntervalConfig struct {
	Column     string  `yaml:"column"`
	Unit       string  `yaml:"unit"`
	Seed       int64   `yaml:"seed"`
	Replicates int     `yaml:"replicates"`
	Confidence float64 `yaml:"confidence"`
}

// HypothesisConfig describes the two-sample comparison
type HypothesisConfig struct {
	ValueColumn string  `yaml:"valueColumn"`
	GroupColumn string  `yaml:"groupColumn"`
	Group1      string  `yaml:"group1"` // label of group 1; first sorted label if empty
	Group2      string  `yaml:"group2"` // label of group 2; second sorted label if empty
	Unit        string  `yaml:"unit"`
	Alpha       float64 `yaml:"alpha"` // 0 keeps the component default
}

// Load reads the YAML file at path (if non-empty), applies environment
// overrides, and validates the result
func Load(path string) (*Config, error) {
	config := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(raw, config); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	applyEnv(config)

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func applyEnv(c *Config) {
	c.Data.File = getEnvOrDefault("HEALTHSIM_DATA_FILE", c.Data.File)
	c.Data.DiseaseColumn = getEnvOrDefault("HEALTHSIM_DISEASE_COLUMN", c.Data.DiseaseColumn)
	c.Data.GroupColumn = getEnvOrDefault("HEALTHSIM_GROUP_COLUMN", c.Data.GroupColumn)

	c.Simulation.Seed = getEnvInt64OrDefault("HEALTHSIM_SEED", c.Simulation.Seed)
	c.Simulation.SampleSize = getEnvIntOrDefault("HEALTHSIM_SAMPLE_SIZE", c.Simulation.SampleSize)

	c.Interval.Column = getEnvOrDefault("HEALTHSIM_INTERVAL_COLUMN", c.Interval.Column)
	c.Interval.Unit = getEnvOrDefault("HEALTHSIM_INTERVAL_UNIT", c.Interval.Unit)
	c.Interval.Seed = getEnvInt64OrDefault("HEALTHSIM_INTERVAL_SEED", c.Interval.Seed)
	c.Interval.Replicates = getEnvIntOrDefault("HEALTHSIM_BOOTSTRAP_REPLICATES", c.Interval.Replicates)
	c.Interval.Confidence = getEnvFloatOrDefault("HEALTHSIM_CONFIDENCE", c.Interval.Confidence)

	c.Hypothesis.ValueColumn = getEnvOrDefault("HEALTHSIM_TEST_VALUE_COLUMN", c.Hypothesis.ValueColumn)
	c.Hypothesis.GroupColumn = getEnvOrDefault("HEALTHSIM_TEST_GROUP_COLUMN", c.Hypothesis.GroupColumn)
	c.Hypothesis.Alpha = getEnvFloatOrDefault("HEALTHSIM_ALPHA", c.Hypothesis.Alpha)
}

func validate(c *Config) error {
	if c.Data.File == "" {
		return errors.ConfigInvalid("data.file is required")
	}
	if c.Data.DiseaseColumn == "" {
		return errors.ConfigInvalid("data.diseaseColumn is required")
	}
	if c.Interval.Column == "" {
		return errors.ConfigInvalid("interval.column is required")
	}
	if c.Hypothesis.ValueColumn == "" {
		return errors.ConfigInvalid("hypothesis.valueColumn is required")
	}
	if c.Hypothesis.GroupColumn == "" {
		return errors.ConfigInvalid("hypothesis.groupColumn is required")
	}
	if c.Simulation.SampleSize < 0 {
		return errors.ConfigInvalid("simulation.sampleSize must not be negative")
	}
	if c.Hypothesis.Alpha < 0 || c.Hypothesis.Alpha >= 1 {
		return errors.ConfigInvalid("hypothesis.alpha must be in [0,1)")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvInt64OrDefault(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

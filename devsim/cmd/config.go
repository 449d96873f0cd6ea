package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config describes one run of devsim.
type Config struct {
	Model      string  `yaml:"model"`
	Logger     string  `yaml:"logger"`
	Output     string  `yaml:"output"`
	Separator  string  `yaml:"separator"`
	Duration   float64 `yaml:"duration"`
	Iterations int     `yaml:"iterations"`
	LogLevel   string  `yaml:"log_level"`

	RealTime RealTimeConfig `yaml:"realtime"`
	Monitor  MonitorConfig  `yaml:"monitor"`

	GPT      GPTConfig      `yaml:"gpt"`
	Blinky   BlinkyConfig   `yaml:"blinky"`
	IEStream IEStreamConfig `yaml:"iestream"`
}

// RealTimeConfig configures the real-time clock.
type RealTimeConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Tolerance time.Duration `yaml:"tolerance"`
	MaxJitter time.Duration `yaml:"max_jitter"`
}

// MonitorConfig configures the monitoring server.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

// GPTConfig parameterizes the gpt and efp models.
type GPTConfig struct {
	Period          float64 `yaml:"period"`
	ProcessingTime  float64 `yaml:"processing_time"`
	ObservationTime float64 `yaml:"observation_time"`
}

// BlinkyConfig parameterizes the blinky model.
type BlinkyConfig struct {
	SlowToggleTime float64 `yaml:"slow_toggle_time"`
	FastToggleTime float64 `yaml:"fast_toggle_time"`
}

// IEStreamConfig parameterizes the iestream model.
type IEStreamConfig struct {
	File string `yaml:"file"`
	Type string `yaml:"type"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Model:     "gpt",
		Logger:    "csv",
		Separator: ",",
		Duration:  1000,
		LogLevel:  "info",
		RealTime: RealTimeConfig{
			Tolerance: 500 * time.Microsecond,
		},
		GPT: GPTConfig{
			Period:          3,
			ProcessingTime:  1,
			ObservationTime: 100,
		},
		Blinky: BlinkyConfig{
			SlowToggleTime: 3,
			FastToggleTime: 0.75,
		},
		IEStream: IEStreamConfig{
			Type: "string",
		},
	}
}

// LoadConfig reads a YAML file over the default settings. Unknown fields
// are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// applyEnv overrides the settings with the DEVSIM_* environment variables.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DEVSIM_LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	if v, ok := os.LookupEnv("DEVSIM_LOGGER"); ok {
		c.Logger = v
	}

	if v, ok := os.LookupEnv("DEVSIM_OUTPUT"); ok {
		c.Output = v
	}

	if v, ok := os.LookupEnv("DEVSIM_MONITOR_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEVSIM_MONITOR_PORT %q: %w", v, err)
		}

		c.Monitor.Port = port
	}

	return nil
}

var knownLoggers = map[string]bool{
	"csv":    true,
	"stdout": true,
	"sqlite": true,
	"logrus": true,
	"none":   true,
}

var knownStreamTypes = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
}

// Validate checks the settings before anything is built.
func (c Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if !knownLoggers[c.Logger] {
		errs = append(errs, fmt.Errorf("unknown logger %q", c.Logger))
	}

	if len([]rune(c.Separator)) != 1 {
		errs = append(errs,
			fmt.Errorf("separator must be one character, got %q", c.Separator))
	}

	if c.Duration <= 0 && c.Iterations <= 0 {
		errs = append(errs,
			errors.New("either duration or iterations must be positive"))
	}

	if c.Model == "iestream" {
		if c.IEStream.File == "" {
			errs = append(errs, errors.New("iestream needs an input file"))
		}

		if !knownStreamTypes[c.IEStream.Type] {
			errs = append(errs,
				fmt.Errorf("unknown iestream type %q", c.IEStream.Type))
		}
	}

	return errors.Join(errs...)
}

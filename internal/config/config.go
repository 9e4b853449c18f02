package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultTargetExtension = ".mp3"
	defaultSampleRate      = 44100
	defaultBitRateKbps     = 200
	defaultChannels        = 2
	defaultMaxConcurrency  = 16
	defaultEncoderPath     = "ffmpeg"
	defaultLogLevel        = "info"
)

// Environment variables applied on top of the YAML file.
const (
	EnvEncoder        = "AUDIOMIRROR_ENCODER"
	EnvMaxConcurrency = "AUDIOMIRROR_MAX_CONCURRENCY"
	EnvLogLevel       = "AUDIOMIRROR_LOG_LEVEL"
)

// Config describes how a mirror run classifies and processes files.
type Config struct {
	ConvertFrom     []string `yaml:"convert_from"`
	TargetExtension string   `yaml:"target_extension"`
	SampleRate      int      `yaml:"sample_rate"`
	BitRateKbps     int      `yaml:"bit_rate_kbps"`
	Channels        int      `yaml:"channels"`
	MaxConcurrency  int      `yaml:"max_concurrency"`
	EncoderPath     string   `yaml:"encoder_path"`
	FailFast        bool     `yaml:"fail_fast"`
	ReportDir       string   `yaml:"report_dir"`
	LogLevel        string   `yaml:"log_level"`
}

func defaultConvertFrom() []string { return []string{".m4a", ".flac", ".wav"} }

// Default returns the settings used when no config file is present.
func Default() Config {
	return Config{
		ConvertFrom:     defaultConvertFrom(),
		TargetExtension: defaultTargetExtension,
		SampleRate:      defaultSampleRate,
		BitRateKbps:     defaultBitRateKbps,
		Channels:        defaultChannels,
		MaxConcurrency:  defaultMaxConcurrency,
		EncoderPath:     defaultEncoderPath,
		LogLevel:        defaultLogLevel,
	}
}

// Load reads YAML config from the provided path. If the file does not exist
// or is empty, defaults are returned with no error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	fileData, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(fileData, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEncoder); ok && strings.TrimSpace(v) != "" {
		c.EncoderPath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMaxConcurrency); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvMaxConcurrency, err)
		}
		c.MaxConcurrency = n
	}
	return c.normalize()
}

// SequentialBatches reports whether the budget is too small to run the copy
// and convert batches side by side without exceeding it.
func (c Config) SequentialBatches() bool {
	return c.MaxConcurrency < 2
}

// BatchWorkers splits the global concurrency budget between the copy and
// convert batches, which run side by side. A budget of 1 gives one worker
// and the batches run one after the other.
func (c Config) BatchWorkers() int {
	n := c.MaxConcurrency / 2
	if n < 1 {
		return 1
	}
	return n
}

func (c *Config) normalize() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("invalid max_concurrency: %d (must be >= 1)", c.MaxConcurrency)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate: %d", c.SampleRate)
	}
	if c.BitRateKbps <= 0 {
		return fmt.Errorf("invalid bit_rate_kbps: %d", c.BitRateKbps)
	}
	if c.Channels <= 0 {
		c.Channels = defaultChannels
	}
	if c.EncoderPath == "" {
		c.EncoderPath = defaultEncoderPath
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.TargetExtension = normalizeExtension(c.TargetExtension)
	if c.TargetExtension == "" {
		return errors.New("target_extension must not be empty")
	}
	c.ConvertFrom = normalizeExtensions(c.ConvertFrom)
	return nil
}

func normalizeExtension(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e == "" {
		return ""
	}
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

func normalizeExtensions(in []string) []string {
	if len(in) == 0 {
		return defaultConvertFrom()
	}
	seen := make(map[string]struct{}, len(in))
	normalized := make([]string, 0, len(in))
	for _, ext := range in {
		e := normalizeExtension(ext)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		normalized = append(normalized, e)
	}
	return normalized
}

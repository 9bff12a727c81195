// Package config holds the heightmap configuration.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/twpayne/go-heightmap"
)

const envPrefix = "HEIGHTMAP_"

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all run settings.
type Config struct {
	Latitude        float64       `yaml:"-"`
	Longitude       float64       `yaml:"-"`
	Size            float64       `yaml:"size"`
	Resolution      float64       `yaml:"resolution"`
	Output          string        `yaml:"output"`
	Image           string        `yaml:"image"`
	Endpoint        string        `yaml:"endpoint"`
	BatchSize       int           `yaml:"batch_size"`
	MetersPerDegree float64       `yaml:"meters_per_degree"`
	Workers         int           `yaml:"workers"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheSize       int           `yaml:"cache_size"`
	MetricsTextfile string        `yaml:"metrics_textfile"`
	Verbose         bool          `yaml:"verbose"`
	NoProgress      bool          `yaml:"no_progress"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Size:            1000,
		Resolution:      50,
		Output:          "heights.dat",
		Endpoint:        heightmap.DefaultIGNEndpoint,
		BatchSize:       heightmap.DefaultBatchSize,
		MetersPerDegree: heightmap.DefaultMetersPerDegree,
		Workers:         1,
	}
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// ApplyEnv overlays HEIGHTMAP_* environment variables onto c, after loading
// any .env file in the current directory.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if value, ok := lookupEnv("ENDPOINT"); ok {
		c.Endpoint = value
	}
	if value, ok := lookupEnv("OUTPUT"); ok {
		c.Output = value
	}
	if value, ok := lookupEnv("METRICS_TEXTFILE"); ok {
		c.MetricsTextfile = value
	}
	for key, target := range map[string]*int{
		"BATCH_SIZE": &c.BatchSize,
		"WORKERS":    &c.Workers,
		"CACHE_SIZE": &c.CacheSize,
	} {
		if value, ok := lookupEnv(key); ok {
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, key, err)
			}
			*target = parsed
		}
	}
	if value, ok := lookupEnv("METERS_PER_DEGREE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %sMETERS_PER_DEGREE: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.MetersPerDegree = parsed
	}
	if value, ok := lookupEnv("TIMEOUT"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %sTIMEOUT: %v", ErrInvalidConfig, envPrefix, err)
		}
		c.Timeout = parsed
	}
	return nil
}

// Validate checks that c describes a runnable configuration.
func (c *Config) Validate() error {
	switch {
	case !isFinite(c.Latitude) || c.Latitude <= -90 || c.Latitude >= 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidConfig, c.Latitude)
	case !isFinite(c.Longitude) || c.Longitude < -180 || c.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidConfig, c.Longitude)
	case !isFinite(c.Size) || c.Size <= 0:
		return fmt.Errorf("%w: size must be positive", ErrInvalidConfig)
	case !isFinite(c.Resolution) || c.Resolution <= 0:
		return fmt.Errorf("%w: resolution must be positive", ErrInvalidConfig)
	case !isFinite(c.MetersPerDegree) || c.MetersPerDegree <= 0:
		return fmt.Errorf("%w: meters per degree must be positive", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache size must not be negative", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	case c.Output == "":
		return fmt.Errorf("%w: output path is empty", ErrInvalidConfig)
	case c.Endpoint == "":
		return fmt.Errorf("%w: endpoint is empty", ErrInvalidConfig)
	}
	if c.Image != "" {
		if err := heightmap.CheckImageFormat(c.Image); err != nil {
			return fmt.Errorf("%w: image %s: %w", ErrInvalidConfig, c.Image, err)
		}
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(envPrefix + key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

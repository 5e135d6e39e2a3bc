package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/isodata"
	"github.com/hupe1980/isodata/blobstore/minio"
	"github.com/hupe1980/isodata/dataset"
	"github.com/hupe1980/isodata/report"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk run configuration.
//
// Example:
//
//	params:
//	  target_clusters: 4
//	  initial_clusters: 90
//	input:
//	  path: s3://datasets/points.csv.zst
//	output:
//	  path: clusters.txt
//	  format: clusters
//	log:
//	  format: json
//	  level: debug
type Config struct {
	Params isodata.Params `yaml:"params"`

	// Seed fixes the random seed. Zero means wall-clock seeding.
	Seed int64 `yaml:"seed"`

	// SplitCoefficient is the split offset factor (alpha).
	SplitCoefficient float64 `yaml:"split_coefficient"`

	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	S3      S3Config      `yaml:"s3"`
	MinIO   minio.Config  `yaml:"minio"`
}

// InputConfig locates and describes the dataset.
type InputConfig struct {
	// Path is a local path, s3://bucket/key or minio://bucket/key.
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	Comment   string `yaml:"comment"`
	Header    bool   `yaml:"header"`
}

// OutputConfig locates the report destination. An empty path disables it.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string `yaml:"format"` // text or json
	Level  string `yaml:"level"`
}

// MetricsConfig enables the Prometheus textfile.
type MetricsConfig struct {
	File string `yaml:"file"`
}

// S3Config tunes the AWS client used for s3:// locations.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// DefaultConfig mirrors the reference run: data.txt in, clusters.txt out.
func DefaultConfig() *Config {
	return &Config{
		Params:           isodata.DefaultParams(),
		SplitCoefficient: isodata.DefaultSplitCoefficient,
		Input: InputConfig{
			Path:      "data.txt",
			Delimiter: ",",
		},
		Output: OutputConfig{
			Path:   "clusters.txt",
			Format: string(report.FormatClusters),
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv fills MinIO credentials from the environment when the file
// leaves them empty.
func (c *Config) applyEnv() {
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" && c.MinIO.Endpoint == "" {
		c.MinIO.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" && c.MinIO.AccessKey == "" {
		c.MinIO.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" && c.MinIO.SecretKey == "" {
		c.MinIO.SecretKey = v
	}
	if v := os.Getenv("MINIO_SECURE"); v != "" {
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			c.MinIO.Secure = true
		case "false", "0", "no", "off":
			c.MinIO.Secure = false
		}
	}
}

// Validate checks everything that can be checked without touching the data.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input path is required")
	}
	if _, err := c.delimiter(); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

func (c *Config) delimiter() (rune, error) {
	switch d := []rune(c.Input.Delimiter); {
	case len(d) == 0:
		return ',', nil
	case len(d) == 1:
		return d[0], nil
	case c.Input.Delimiter == `\t`:
		return '\t', nil
	default:
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Input.Delimiter)
	}
}

func (c *Config) parseOptions() []dataset.Option {
	var opts []dataset.Option
	if d, err := c.delimiter(); err == nil {
		opts = append(opts, dataset.WithDelimiter(d))
	}
	if r := []rune(c.Input.Comment); len(r) == 1 {
		opts = append(opts, dataset.WithComment(r[0]))
	}
	if c.Input.Header {
		opts = append(opts, dataset.WithHeader())
	}
	return opts
}

func (c *Config) engineOptions() []isodata.Option {
	var opts []isodata.Option
	if c.Seed != 0 {
		opts = append(opts, isodata.WithSeed(c.Seed))
	}
	if c.SplitCoefficient > 0 {
		opts = append(opts, isodata.WithSplitCoefficient(c.SplitCoefficient))
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}
type Services struct {
	Extraction Service `yaml:"extraction"`
}
type Root struct {
	Pipeline struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		LogLvl    string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"pipeline"`
	Services Services `yaml:"services"`
	Paths    struct {
		Input   string `yaml:"input"`
		Outputs string `yaml:"outputs"`
	} `yaml:"paths"`
}

// Default returns the configuration used when no file is found.
func Default() *Root {
	var r Root
	r.Pipeline.Name = "stress-features"
	r.Pipeline.Version = "0.1.0"
	r.Pipeline.LogLvl = "info"
	r.Pipeline.LogFormat = "text"
	r.Services.Extraction.TimeoutSeconds = 60
	r.Paths.Outputs = "output"
	return &r
}

// Load decodes path over the defaults. With an empty path it tries
// config/<CONFIG_ENV>/config.yaml and then ./config.yaml, falling back to
// Default when neither exists. The second return value is the file used.
func Load(path string) (*Root, string, error) {
	guess := []string{path}
	if path == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		guess = []string{
			filepath.Join("config", env, "config.yaml"),
			"config.yaml",
		}
	}
	for _, p := range guess {
		f, err := os.Open(p)
		if err != nil {
			if path == "" && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", err
		}
		defer f.Close()

		cfg := Default()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, "", fmt.Errorf("parse %s: %w", p, err)
		}
		return cfg, p, nil
	}
	return Default(), "", nil
}

// Keys read by Overlay. Flags bound to a viper instance use the same names.
const (
	KeyInput        = "input"
	KeyOutput       = "output"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyExtractorURL = "extractor-url"
)

// NewViper returns a viper instance reading STRESSFEAT_* environment
// variables, e.g. STRESSFEAT_LOG_LEVEL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("stressfeat")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay copies every key explicitly set in v (changed flag or environment
// variable) onto r.
func Overlay(r *Root, v *viper.Viper) {
	set := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	set(KeyInput, &r.Paths.Input)
	set(KeyOutput, &r.Paths.Outputs)
	set(KeyLogLevel, &r.Pipeline.LogLvl)
	set(KeyLogFormat, &r.Pipeline.LogFormat)
	set(KeyExtractorURL, &r.Services.Extraction.URL)
}

func (r *Root) Validate() error {
	var problems []string
	if strings.TrimSpace(r.Paths.Input) == "" {
		problems = append(problems, "paths.input is required")
	}
	if strings.TrimSpace(r.Paths.Outputs) == "" {
		problems = append(problems, "paths.outputs is required")
	}
	if _, err := logrus.ParseLevel(r.Pipeline.LogLvl); err != nil {
		problems = append(problems, fmt.Sprintf("pipeline.log_level: %v", err))
	}
	switch r.Pipeline.LogFormat {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("pipeline.log_format must be text or json, got %q", r.Pipeline.LogFormat))
	}
	if r.Services.Extraction.TimeoutSeconds < 0 {
		problems = append(problems, "services.extraction.timeout_seconds must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

const sampleHeader = `# stress-features configuration.
# paths.input is the root of the labeled recordings: one directory per
# stress level, any nesting depth. Leave services.extraction.url empty to
# compute features in process.
`

// CreateSample writes the default configuration to path.
func CreateSample(path string) error {
	sample := Default()
	sample.Paths.Input = "recordings"
	b, err := yaml.Marshal(sample)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append([]byte(sampleHeader), b...), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }

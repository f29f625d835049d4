package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/maastricht-university/speech-feedback/analysis"
)

// EnvPrefix prefixes every environment override, e.g.
// SPEECHFB_SERVICES_GRAMMAR_URL.
const EnvPrefix = "SPEECHFB"

var ErrNotFound = errors.New("config file not found")

type Service struct {
	URL        string `yaml:"url" validate:"required,url"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"gte=0"`
}
type ASR struct {
	Provider   string `yaml:"provider" validate:"oneof=http assemblyai"`
	URL        string `yaml:"url" validate:"omitempty,url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"gte=0"`
}
type Grammar struct {
	URL        string `yaml:"url" validate:"required,url"`
	Language   string `yaml:"language" validate:"required"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"gte=0"`
	// Serialize funnels all checks through one at a time, for checker
	// deployments that cannot take concurrent requests.
	Serialize bool `yaml:"serialize"`
}
type Services struct {
	ASR       ASR     `yaml:"asr"`
	Grammar   Grammar `yaml:"grammar"`
	Sentiment Service `yaml:"sentiment"`
}
type Audio struct {
	SampleRate int    `yaml:"sample_rate" validate:"gt=0"`
	Channels   int    `yaml:"channels" validate:"gt=0"`
	Format     string `yaml:"format"`
	FFmpeg     string `yaml:"ffmpeg" validate:"required"`
	FFprobe    string `yaml:"ffprobe" validate:"required"`
}
type Analysis struct {
	FillerWords        []string `yaml:"filler_words" validate:"min=1"`
	SuppressedKeywords []string `yaml:"suppressed_keywords"`
	ContextRadius      int      `yaml:"context_radius" validate:"gt=0"`
}
type Retry struct {
	InitialIntervalMs int `yaml:"initial_interval_ms" validate:"gt=0"`
	MaxElapsedSec     int `yaml:"max_elapsed_sec" validate:"gte=0"`
}
type Server struct {
	Addr        string `yaml:"addr" validate:"required"`
	MaxUploadMB int    `yaml:"max_upload_mb" validate:"gt=0"`
}
type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" validate:"required"`
}
type Root struct {
	Pipeline struct {
		Name      string `yaml:"name"`
		Version   string `yaml:"version"`
		LogLvl    string `yaml:"log_level" validate:"oneof=trace debug info warn warning error"`
		LogFormat string `yaml:"log_format" validate:"oneof=text json"`
		Jobs      int    `yaml:"jobs" validate:"gt=0"`
	} `yaml:"pipeline"`
	Audio    Audio    `yaml:"audio"`
	Services Services `yaml:"services"`
	Analysis Analysis `yaml:"analysis"`
	Retry    Retry    `yaml:"retry"`
	Server   Server   `yaml:"server"`
	Kafka    Kafka    `yaml:"kafka"`
	Paths    struct {
		Uploads string `yaml:"uploads" validate:"required"`
		Outputs string `yaml:"outputs" validate:"required"`
	} `yaml:"paths"`
}

// Default returns the built-in configuration.
func Default() *Root {
	var c Root
	c.Pipeline.Name = "speech-feedback"
	c.Pipeline.Version = "dev"
	c.Pipeline.LogLvl = "info"
	c.Pipeline.LogFormat = "text"
	c.Pipeline.Jobs = 2
	c.Audio = Audio{SampleRate: 16000, Channels: 1, Format: "wav", FFmpeg: "ffmpeg", FFprobe: "ffprobe"}
	c.Services = Services{
		ASR:       ASR{Provider: "http", URL: "http://localhost:8000", TimeoutSec: 300},
		Grammar:   Grammar{URL: "http://localhost:8081", Language: "en-US", TimeoutSec: 60},
		Sentiment: Service{URL: "http://localhost:8082", TimeoutSec: 30},
	}
	c.Analysis = Analysis{
		FillerWords:        append([]string(nil), analysis.DefaultFillerWords...),
		SuppressedKeywords: append([]string(nil), analysis.DefaultSuppressedKeywords...),
		ContextRadius:      30,
	}
	c.Retry = Retry{InitialIntervalMs: 500, MaxElapsedSec: 30}
	c.Server = Server{Addr: ":8080", MaxUploadMB: 512}
	c.Kafka = Kafka{Topic: "speech.feedback"}
	c.Paths.Uploads = "uploads"
	c.Paths.Outputs = "outputs"
	return &c
}

// Load layers, lowest first: built-in defaults, the yaml file at path (or
// the first one found on the search list when path is empty) and
// SPEECHFB_* environment variables. The result is validated.
func Load(path string) (*Root, error) {
	base, err := yaml.Marshal(Default())
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, err
	}

	if path == "" {
		path = find()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := v.MergeConfig(f); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Root
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode reads a yaml document over the defaults, without env overrides.
func Decode(r io.Reader) (*Root, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func find() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

var validate = validator.New()

func (c *Root) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Services.ASR.Provider == "http" && c.Services.ASR.URL == "" {
		return errors.New("invalid config: services.asr.url is required for the http provider")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("invalid config: kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// LoadLexicon reads filler expressions from a yaml file holding either a
// plain list or a `filler_words:` key.
func LoadLexicon(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []string
	if err := yaml.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var doc struct {
		FillerWords []string `yaml:"filler_words"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return doc.FillerWords, nil
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }

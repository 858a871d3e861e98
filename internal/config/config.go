// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ewilliams-labs/emotunes/internal/audio"
)

// Config is the full runtime configuration.
type Config struct {
	HTTPAddr string
	DBPath   string

	Spotify Spotify

	SampleRate     int
	HopLength      int
	MaxAudioSizeMB int
	AudioFormats   []string

	CacheTTL     time.Duration
	MaxCacheSize int
	// ConfidenceThreshold is reserved for a probabilistic classifier. The
	// rule-based classifier does not read it.
	ConfidenceThreshold float64

	LogLevel string
	LogFile  string

	AnalysisWorkers int
	AnalysisQueue   int
	DownloadTimeout time.Duration
}

// Spotify holds catalog API settings.
type Spotify struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Enabled reports whether client credentials are present.
func (s Spotify) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// MaxAudioBytes is the size cap in bytes.
func (c Config) MaxAudioBytes() int64 {
	return int64(c.MaxAudioSizeMB) << 20
}

// Load reads .env from the working directory if present, then the
// process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		HTTPAddr: p.str("EMOTUNES_HTTP_ADDR", ":8080"),
		DBPath:   p.str("EMOTUNES_DB_PATH", "emotunes.db"),
		Spotify: Spotify{
			ClientID:     p.str("SPOTIFY_CLIENT_ID", ""),
			ClientSecret: p.str("SPOTIFY_CLIENT_SECRET", ""),
			BaseURL:      p.str("SPOTIFY_API_BASE_URL", "https://api.spotify.com/v1"),
			TokenURL:     p.str("SPOTIFY_TOKEN_URL", "https://accounts.spotify.com/api/token"),
			MaxRetries:   p.int("SPOTIFY_MAX_RETRIES", 3),
			RetryBackoff: time.Duration(p.int("SPOTIFY_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
		},
		SampleRate:          p.int("SAMPLE_RATE", 22050),
		HopLength:           p.int("HOP_LENGTH", 512),
		MaxAudioSizeMB:      p.int("MAX_AUDIO_SIZE_MB", 10),
		AudioFormats:        p.list("SUPPORTED_AUDIO_FORMATS", []string{"mp3", "wav"}),
		CacheTTL:            time.Duration(p.int("CACHE_TTL", 3600)) * time.Second,
		MaxCacheSize:        p.int("MAX_CACHE_SIZE", 1000),
		ConfidenceThreshold: p.float("CONFIDENCE_THRESHOLD", 0.7),
		LogLevel:            p.str("LOG_LEVEL", "info"),
		LogFile:             p.str("LOG_FILE", ""),
		AnalysisWorkers:     p.int("ANALYSIS_WORKERS", 2),
		AnalysisQueue:       p.int("ANALYSIS_QUEUE", 100),
		DownloadTimeout:     p.duration("DOWNLOAD_TIMEOUT", 30*time.Second),
	}
	if p.err != nil {
		return Config{}, p.err
	}
	return cfg, nil
}

// Validate rejects settings the analysis pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate))
	}
	if c.HopLength <= 0 {
		errs = append(errs, fmt.Errorf("HOP_LENGTH must be positive, got %d", c.HopLength))
	}
	if c.MaxAudioSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_AUDIO_SIZE_MB must be positive, got %d", c.MaxAudioSizeMB))
	}
	if len(c.AudioFormats) == 0 {
		errs = append(errs, errors.New("SUPPORTED_AUDIO_FORMATS must list at least one format"))
	}
	for _, f := range c.AudioFormats {
		if !audio.CanDecode(f) {
			errs = append(errs, fmt.Errorf("SUPPORTED_AUDIO_FORMATS: no decoder for %q (supported: %s)", f, strings.Join(audio.Decodable, ",")))
		}
	}
	if c.MaxCacheSize < 0 {
		errs = append(errs, fmt.Errorf("MAX_CACHE_SIZE must not be negative, got %d", c.MaxCacheSize))
	}
	if c.AnalysisWorkers < 1 {
		errs = append(errs, fmt.Errorf("ANALYSIS_WORKERS must be at least 1, got %d", c.AnalysisWorkers))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// parser keeps the first conversion error so FromEnv can read every key
// before reporting.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *parser) fail(key, raw string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: %s: invalid value %q: %w", key, raw, err)
	}
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds process-level knobs loaded once at startup from YAML.
// Per-request tuning lives in UserConfig; nothing here is mutable after
// load.
type Settings struct {
	Data struct {
		CacheTTL        time.Duration `yaml:"cache_ttl"`
		CacheSize       int           `yaml:"cache_size"`
		MaxRetries      int           `yaml:"max_retries"`
		RetryBaseDelay  time.Duration `yaml:"retry_base_delay"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		RequestsPerSec  float64       `yaml:"requests_per_sec"`
		RequestBurst    int           `yaml:"request_burst"`
	} `yaml:"data"`

	Ranker struct {
		Endpoint       string        `yaml:"endpoint"`
		APIKey         string        `yaml:"api_key"`
		Model          string        `yaml:"model"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxConcurrent  int           `yaml:"max_concurrent"`
		MinCallDelay   time.Duration `yaml:"min_call_delay"`
	} `yaml:"ranker"`

	Scan struct {
		Workers          int           `yaml:"workers"`
		PerSymbolTimeout time.Duration `yaml:"per_symbol_timeout"`
	} `yaml:"scan"`

	Analysis struct {
		CacheTTL  time.Duration `yaml:"cache_ttl"`
		CacheSize int           `yaml:"cache_size"`
	} `yaml:"analysis"`

	Persistence struct {
		RedisAddr   string        `yaml:"redis_addr"`
		RedisDB     int           `yaml:"redis_db"`
		DocumentTTL time.Duration `yaml:"document_ttl"`
		PostgresDSN string        `yaml:"postgres_dsn"`
	} `yaml:"persistence"`

	Server struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
}

// DefaultSettings returns production defaults; a settings file overlays
// only the fields it names.
func DefaultSettings() Settings {
	var s Settings
	s.Data.CacheTTL = 300 * time.Second
	s.Data.CacheSize = 100
	s.Data.MaxRetries = 3
	s.Data.RetryBaseDelay = 500 * time.Millisecond
	s.Data.RequestTimeout = 15 * time.Second
	s.Data.RequestsPerSec = 5
	s.Data.RequestBurst = 10
	s.Ranker.Timeout = 20 * time.Second
	s.Ranker.MaxConcurrent = 2
	s.Ranker.MinCallDelay = 500 * time.Millisecond
	s.Scan.Workers = 10
	s.Scan.PerSymbolTimeout = 30 * time.Second
	s.Analysis.CacheTTL = 5 * time.Minute
	s.Analysis.CacheSize = 100
	s.Persistence.DocumentTTL = 24 * time.Hour
	s.Server.Addr = ":8090"
	s.Server.RequestTimeout = 60 * time.Second
	return s
}

// LoadSettings reads a YAML settings file over the defaults. A missing
// path returns pure defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

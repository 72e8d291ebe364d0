package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultAPIURL                  = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"
	defaultSitesFile               = "./site.txt"
	defaultRequestTimeoutInSeconds = 60
	defaultAttempts                = 10
	defaultDelayInMilliseconds     = 1000
	defaultNumWorkers              = 10
	defaultReportTimeoutInSeconds  = 10
	defaultMaxStoredRuns           = 100
	defaultSource                  = "pagespeed-monitor"
)

// ReportConfig defines where the run results are written
type ReportConfig struct {
	ExcelFile        string `toml:"ExcelFile"`
	SQLitePath       string `toml:"SQLitePath"`
	MaxStoredRuns    int    `toml:"MaxStoredRuns"`
	Endpoint         string `toml:"Endpoint"`
	Source           string `toml:"Source"`
	TimeoutInSeconds uint32 `toml:"TimeoutInSeconds"`
}

// Timeout returns the HTTP timeout used when pushing a report
func (cfg ReportConfig) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutInSeconds) * time.Second
}

// APIConfig defines the results web server settings
type APIConfig struct {
	ListenAddress string `toml:"ListenAddress"`
}

// Config maps to the config.toml file for the pagespeed sampling service
type Config struct {
	SitesFile                          string       `toml:"SitesFile"`
	APIURL                             string       `toml:"APIURL"`
	RequestTimeoutInSeconds            uint32       `toml:"RequestTimeoutInSeconds"`
	Attempts                           int          `toml:"Attempts"`
	DelayBetweenAttemptsInMilliseconds uint32       `toml:"DelayBetweenAttemptsInMilliseconds"`
	NumWorkers                         int          `toml:"NumWorkers"`
	MaxRequestsPerSecond               float64      `toml:"MaxRequestsPerSecond"`
	RunIntervalInMinutes               uint32       `toml:"RunIntervalInMinutes"`
	Report                             ReportConfig `toml:"Report"`
	API                                APIConfig    `toml:"API"`
}

// ApplyDefaults fills in the zero values with the default settings
func (cfg *Config) ApplyDefaults() {
	if len(cfg.SitesFile) == 0 {
		cfg.SitesFile = defaultSitesFile
	}
	if len(cfg.APIURL) == 0 {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.RequestTimeoutInSeconds == 0 {
		cfg.RequestTimeoutInSeconds = defaultRequestTimeoutInSeconds
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.DelayBetweenAttemptsInMilliseconds == 0 {
		cfg.DelayBetweenAttemptsInMilliseconds = defaultDelayInMilliseconds
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaultNumWorkers
	}
	if cfg.Report.MaxStoredRuns <= 0 {
		cfg.Report.MaxStoredRuns = defaultMaxStoredRuns
	}
	if cfg.Report.TimeoutInSeconds == 0 {
		cfg.Report.TimeoutInSeconds = defaultReportTimeoutInSeconds
	}
	if len(cfg.Report.Source) == 0 {
		cfg.Report.Source = defaultSource
	}
}

// RequestTimeout returns the HTTP timeout of a single measurement request
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutInSeconds) * time.Second
}

// DelayBetweenAttempts returns the pause taken after every attempt of the same work item
func (cfg *Config) DelayBetweenAttempts() time.Duration {
	return time.Duration(cfg.DelayBetweenAttemptsInMilliseconds) * time.Millisecond
}

// RunInterval returns the time between two consecutive runs. Zero means a single run.
func (cfg *Config) RunInterval() time.Duration {
	return time.Duration(cfg.RunIntervalInMinutes) * time.Minute
}

// LoadConfig parses a TOML file into the Config struct and applies the defaults
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

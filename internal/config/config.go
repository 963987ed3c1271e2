package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Source struct {
		ListingURL            string  `yaml:"listing_url"`
		MaxPages              int     `yaml:"max_pages"`
		RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
		HostReqPerSec         float64 `yaml:"host_req_per_sec"`
		HostBurst             int     `yaml:"host_burst"`
	} `yaml:"source"`

	Classify struct {
		BaseURL             string   `yaml:"base_url"`
		RelevanceAgent      string   `yaml:"relevance_agent"`
		QualifyAgent        string   `yaml:"qualify_agent"`
		Keywords            []string `yaml:"keywords"`
		PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
		MaxAttempts         int      `yaml:"max_attempts"`
		APIKeyEnv           string   `yaml:"api_key_env"`
	} `yaml:"classify"`

	Dates struct {
		ClosingFormat string `yaml:"closing_format"`
	} `yaml:"dates"`

	Sink struct {
		Workbook string            `yaml:"workbook"`
		Sheets   map[string]string `yaml:"sheets"` // category -> worksheet name
	} `yaml:"sink"`

	Schedule struct {
		RunSeconds int `yaml:"run_seconds"`
	} `yaml:"schedule"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38472
	}
	if cfg.Source.MaxPages == 0 {
		cfg.Source.MaxPages = 50
	}
	if cfg.Source.RequestTimeoutSeconds == 0 {
		cfg.Source.RequestTimeoutSeconds = 20
	}
	if cfg.Source.HostReqPerSec == 0 {
		cfg.Source.HostReqPerSec = 1.0
	}
	if cfg.Source.HostBurst == 0 {
		cfg.Source.HostBurst = 2
	}
	if cfg.Classify.PollIntervalSeconds == 0 {
		cfg.Classify.PollIntervalSeconds = 2
	}
	if cfg.Classify.MaxAttempts == 0 {
		cfg.Classify.MaxAttempts = 30
	}
	if cfg.Classify.APIKeyEnv == "" {
		cfg.Classify.APIKeyEnv = "BIDWATCH_API_KEY"
	}
	if cfg.Dates.ClosingFormat == "" {
		cfg.Dates.ClosingFormat = "2006/01/02"
	}
	if cfg.Sink.Workbook == "" {
		cfg.Sink.Workbook = "bids.xlsx"
	}
	if len(cfg.Sink.Sheets) == 0 {
		cfg.Sink.Sheets = map[string]string{
			"low":    "Low",
			"medium": "Medium",
			"high":   "High",
		}
	}
	if cfg.Schedule.RunSeconds == 0 {
		cfg.Schedule.RunSeconds = 3600
	}
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Classify.PollIntervalSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Source.RequestTimeoutSeconds) * time.Second
}

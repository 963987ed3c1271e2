package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if strings.TrimSpace(cfg.Source.ListingURL) == "" {
		errs = append(errs, "source.listing_url is required")
	}
	if cfg.Source.MaxPages <= 0 {
		errs = append(errs, "source.max_pages must be > 0")
	}
	if strings.TrimSpace(cfg.Classify.BaseURL) == "" {
		errs = append(errs, "classify.base_url is required")
	}
	if strings.TrimSpace(cfg.Classify.RelevanceAgent) == "" {
		errs = append(errs, "classify.relevance_agent is required")
	}
	if strings.TrimSpace(cfg.Classify.QualifyAgent) == "" {
		errs = append(errs, "classify.qualify_agent is required")
	}
	if len(cfg.Classify.Keywords) == 0 {
		errs = append(errs, "classify.keywords must have at least 1 term")
	}
	for i, k := range cfg.Classify.Keywords {
		if strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Sprintf("classify.keywords[%d] cannot be empty", i))
		}
	}
	if cfg.Classify.PollIntervalSeconds <= 0 {
		errs = append(errs, "classify.poll_interval_seconds must be > 0")
	}
	if cfg.Classify.MaxAttempts <= 0 {
		errs = append(errs, "classify.max_attempts must be > 0")
	}
	if len(cfg.Sink.Sheets) == 0 {
		errs = append(errs, "sink.sheets must map at least 1 category")
	}
	for cat, sheet := range cfg.Sink.Sheets {
		if strings.TrimSpace(sheet) == "" {
			errs = append(errs, fmt.Sprintf("sink.sheets[%q] worksheet name cannot be empty", cat))
		}
		if cat != strings.ToLower(cat) {
			errs = append(errs, fmt.Sprintf("sink.sheets category %q must be lowercase", cat))
		}
	}
	if cfg.Schedule.RunSeconds <= 0 {
		errs = append(errs, "schedule.run_seconds must be > 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}

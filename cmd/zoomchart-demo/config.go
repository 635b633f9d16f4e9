package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.sr.ht/~whereswaldon/zoomchart/series"
	"git.sr.ht/~whereswaldon/zoomchart/viewport"
)

// Config holds the demo's tunables. All fields are optional; zero
// values fall back to library defaults.
type Config struct {
	// File is a CSV of x, y[, size] rows to load at startup.
	File string `yaml:"file"`
	// Mode selects the downsampling algorithm: lttb, average, max, min.
	Mode string `yaml:"mode"`
	// BaseThreshold is the render point budget at full zoom-out.
	BaseThreshold int `yaml:"base_threshold"`
	// MinSpan is the narrowest viewport span in percent.
	MinSpan float64 `yaml:"min_span"`
}

func defaultConfig() Config {
	return Config{
		Mode:          series.LTTB.String(),
		BaseThreshold: 0,
		MinSpan:       viewport.DefaultMinSpan,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) downsampleMode() (series.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "", "lttb":
		return series.LTTB, nil
	case "average", "avg", "mean":
		return series.Average, nil
	case "max":
		return series.Max, nil
	case "min":
		return series.Min, nil
	default:
		return series.LTTB, fmt.Errorf("unknown downsample mode %q", c.Mode)
	}
}

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. Defaults()
//  2. file (YAML) if TALENTGATE_CONFIG is set
//  3. env (prefix TALENTGATE_)
func Load() (*Config, error) {
	base := Defaults()

	k := koanf.New(".")

	if path := os.Getenv("TALENTGATE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: TALENTGATE_ADDR, TALENTGATE_POSTGRES_DSN, ...
	// Keys keep their underscores to match the koanf tags on Config.
	envProvider := env.Provider("TALENTGATE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "talentgate_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.AssessmentScale <= 0 {
		return nil, errors.New("assessment_scale must be positive")
	}
	if cfg.AssessmentThreshold < 0 || cfg.AssessmentThreshold > cfg.AssessmentScale {
		return nil, errors.New("assessment_threshold must be within the scale")
	}
	return &cfg, nil
}

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HOOPSIGHT_CONFIG is set
//  3. env (prefix HOOPSIGHT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HOOPSIGHT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HOOPSIGHT_ADDR, HOOPSIGHT_MOMENTUM_DECAY, ...
	// map to the flat koanf keys on the struct.
	envProvider := env.Provider("HOOPSIGHT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "hoopsight_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the core cannot honor.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FilterWeight+c.AuxWeight <= 0:
		return fmt.Errorf("%w: blend weights must have a positive sum", ErrInvalidConfig)
	case c.MomentumDecay <= 0 || c.MomentumDecay >= 1:
		return fmt.Errorf("%w: momentum_decay must be in (0,1)", ErrInvalidConfig)
	case c.RegressorTimeoutMS <= 0:
		return fmt.Errorf("%w: regressor_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

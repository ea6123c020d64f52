package config

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type ConfigGetter interface {
	Get(ctx context.Context, key string) (string, error)
	GetInt(ctx context.Context, key string) (int, error)
	GetBool(ctx context.Context, key string) (bool, error)
	GetDuration(ctx context.Context, key string) (time.Duration, error)
	GetConfig(ctx context.Context, key string) (*Config, error)
}

var _ ConfigGetter = (*Config)(nil)

func (c *Config) GetInt(ctx context.Context, key string) (int, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	num, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ErrFieldNotInt{key: key}
	}
	return num, nil
}

func (c *Config) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return resolveStringBool(key, raw)
}

func resolveStringBool(key string, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "1", "true", "on":
		return true, nil
	case "no", "n", "0", "false", "off":
		return false, nil
	default:
		return false, &ErrFieldNotBool{key: key}
	}
}

// GetDuration parses Go duration strings. Plain integers are read as milliseconds.
func (c *Config) GetDuration(ctx context.Context, key string) (time.Duration, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	raw = strings.TrimSpace(raw)
	if millis, err := strconv.Atoi(raw); err == nil {
		return time.Duration(millis) * time.Millisecond, nil
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ErrFieldNotDuration{key: key}
	}
	return duration, nil
}

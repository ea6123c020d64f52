package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const (
	CONFIG_TREE_SEPARATOR = "/"
	KEY_ALLOWED_CHARS     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
)

// Config is a tree of string values addressed by keys joined with CONFIG_TREE_SEPARATOR.
// Keys are case insensitive and stored upper case.
type Config struct {
	store ConfigStore
}

func New(ctx context.Context) (*Config, error) {
	store, err := DefaultConfigStore(ctx)
	if err != nil {
		return nil, err
	}
	return &Config{store: store}, nil
}

// WithInitialValues creates a config from a (possibly nested) map.
// Nested maps and keys containing the separator end up in the same tree.
func WithInitialValues(ctx context.Context, initialValues map[string]interface{}) (*Config, error) {
	config, err := New(ctx)
	if err != nil {
		return nil, err
	}
	for key, val := range flattenMap(initialValues) {
		if err := config.Set(ctx, key, val, true); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// WithInitialValuesAndOptions creates a config from defaults and overwrites them with options.
// options may be nil.
func WithInitialValuesAndOptions(ctx context.Context, defaults map[string]interface{}, options *Config) (*Config, error) {
	config, err := WithInitialValues(ctx, defaults)
	if err != nil {
		return nil, err
	}
	if options == nil {
		return config, nil
	}
	if err := config.Merge(ctx, options, true); err != nil {
		return nil, err
	}
	return config, nil
}

func flattenMap(m map[string]interface{}) map[string]interface{} {
	flatMap := make(map[string]interface{})
	for key, value := range m {
		switch entry := value.(type) {
		case map[string]interface{}:
			for k, v := range flattenMap(entry) {
				flatMap[key+CONFIG_TREE_SEPARATOR+k] = v
			}
		default:
			flatMap[key] = value
		}
	}
	return flatMap
}

func IsValidKey(rawKey string) error {
	if rawKey == "" {
		return &ErrKeyInvalid{key: rawKey}
	}
	for _, part := range strings.Split(rawKey, CONFIG_TREE_SEPARATOR) {
		if err := checkSegment(part); err != nil {
			return &ErrKeyInvalid{key: rawKey, nested: err}
		}
	}
	return nil
}

func checkSegment(segment string) error {
	if segment == "" {
		return &ErrKeyInvalid{key: ""}
	}
	for _, char := range segment {
		if !strings.ContainsRune(KEY_ALLOWED_CHARS, char) {
			return &KeyCharInvalid{char: char, key: segment}
		}
	}
	return nil
}

func (c *Config) Has(ctx context.Context, key string) bool {
	return c.store.Has(ctx, key)
}

func (c *Config) Get(ctx context.Context, key string) (string, error) {
	return c.store.Get(ctx, key)
}

// Set stores value under key. Maps and configs are stored as subtrees,
// everything else by its fmt representation.
func (c *Config) Set(ctx context.Context, key string, value interface{}, force bool) error {
	switch entry := value.(type) {
	case *Config:
		for subKey, subValue := range entry.store.GetAll(ctx, "") {
			if err := c.store.Set(ctx, key+CONFIG_TREE_SEPARATOR+subKey, subValue, force); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		for subKey, subValue := range flattenMap(entry) {
			if err := c.Set(ctx, key+CONFIG_TREE_SEPARATOR+subKey, subValue, force); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return c.store.Set(ctx, key, "", force)
	default:
		return c.store.Set(ctx, key, fmt.Sprint(entry), force)
	}
}

// GetConfig returns a copy of the subtree below key.
func (c *Config) GetConfig(ctx context.Context, key string) (*Config, error) {
	values := c.store.GetAll(ctx, key)
	if values == nil {
		return nil, &ErrKeyNotFound{key: normalizeKey(key)}
	}
	sub, err := New(ctx)
	if err != nil {
		return nil, err
	}
	for subKey, value := range values {
		if subKey == "" {
			continue
		}
		if err := sub.store.Set(ctx, subKey, value, true); err != nil {
			return nil, err
		}
	}
	if len(sub.Keys(ctx)) == 0 {
		return nil, &ErrFieldNotConfig{key: normalizeKey(key)}
	}
	return sub, nil
}

// Merge copies all keys of merger into c. Existing keys are only replaced when overwrite is set.
func (c *Config) Merge(ctx context.Context, merger *Config, overwrite bool) error {
	if merger == nil {
		return nil
	}
	for _, key := range merger.Keys(ctx) {
		value, err := merger.Get(ctx, key)
		if err != nil {
			return ErrMergeConfigReason{err: err}
		}
		if !overwrite && c.Has(ctx, key) {
			continue
		}
		if err := c.store.Set(ctx, key, value, true); err != nil {
			return ErrMergeConfigReason{err: err}
		}
	}
	return nil
}

func (c *Config) Copy(ctx context.Context) (*Config, error) {
	duplicate, err := New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyConfig, err)
	}
	if err := duplicate.Merge(ctx, c, true); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCopyConfig, err)
	}
	return duplicate, nil
}

func (c *Config) Keys(ctx context.Context) []string {
	keys := c.store.Keys(ctx)
	slices.Sort(keys)
	return keys
}

func (c *Config) Sprint() string {
	ctx := context.Background()
	builder := strings.Builder{}
	for _, key := range c.Keys(ctx) {
		value, _ := c.Get(ctx, key)
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(value)
		builder.WriteString("\n")
	}
	return builder.String()
}
